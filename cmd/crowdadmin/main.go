// Command crowdadmin performs operator tasks against the crowdfund database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"crowdfund/internal/infra"
)

var rootCmd = &cobra.Command{
	Use:           "crowdadmin",
	Short:         "Operator tasks for the crowdfund platform",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// withRunner opens a pool from DATABASE_URL for the duration of fn.
func withRunner(ctx context.Context, name string, fn func(*infra.SQLRunner, infra.Logger) error) error {
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	defer pool.Close()

	logger := infra.NewLogger(os.Getenv("APP_ENV"), "crowdadmin").With().Str("cmd", name).Logger()
	return fn(infra.NewSQLRunner(pool, logger), logger)
}
