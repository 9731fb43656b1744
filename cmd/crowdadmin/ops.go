package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"crowdfund/internal/adapter/repo"
	"crowdfund/internal/infra"
	"crowdfund/internal/infra/credentials"
	"crowdfund/internal/realtime"
	"crowdfund/internal/reconcile"
)

var (
	providerFlag string
	secretFlag   string
)

var setSecretCmd = &cobra.Command{
	Use:   "set-secret",
	Short: "Store or rotate a third-party credential",
	Long: `Store or rotate a third-party credential in the database. The API falls
back to stored credentials when the matching environment variable is empty.
When --value is omitted the CROWDFUND_SECRET environment variable is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := strings.ToLower(strings.TrimSpace(providerFlag))
		if !slices.Contains(credentials.Known, provider) {
			return fmt.Errorf("unsupported provider %q (known: %s)", providerFlag, strings.Join(credentials.Known, ", "))
		}
		secret := strings.TrimSpace(secretFlag)
		if secret == "" {
			secret = strings.TrimSpace(os.Getenv("CROWDFUND_SECRET"))
		}
		if secret == "" {
			return fmt.Errorf("%s secret is required via --value or CROWDFUND_SECRET", provider)
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		return withRunner(ctx, "set-secret", func(runner *infra.SQLRunner, logger infra.Logger) error {
			if err := credentials.NewStore(runner).Set(ctx, provider, secret); err != nil {
				return err
			}
			logger.Info().Str("provider", provider).Msg("credential stored")
			fmt.Printf("%s credential stored\n", provider)
			return nil
		})
	},
}

var batchFlag int

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run a single ledger reconciliation pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()
		return withRunner(ctx, "reconcile", func(runner *infra.SQLRunner, logger infra.Logger) error {
			rec := reconcile.New(
				repo.NewReconcileRepository(runner),
				realtime.NewPGPublisher(runner, logger),
				batchFlag,
				logger,
			)
			rep, err := rec.RunOnce(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("drifted=%d repaired=%d completed=%d closed=%d failed=%d\n",
				rep.Drifted, rep.Repaired, rep.Completed, rep.Closed, rep.Failed)
			return nil
		})
	},
}

func init() {
	setSecretCmd.Flags().StringVar(&providerFlag, "provider", credentials.ProviderSupabaseStorage, "credential provider")
	setSecretCmd.Flags().StringVar(&secretFlag, "value", "", "secret value")
	reconcileCmd.Flags().IntVar(&batchFlag, "batch", reconcile.DefaultBatch, "maximum drifted campaigns repaired per pass")
	rootCmd.AddCommand(setSecretCmd, reconcileCmd)
}
