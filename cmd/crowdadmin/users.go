package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"crowdfund/internal/adapter/repo"
	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
)

var (
	userIDFlag    string
	userEmailFlag string
	rejectFlag    bool
	noteFlag      string
)

var verifyUserCmd = &cobra.Command{
	Use:   "verify-user",
	Short: "Approve or reject a pending account",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		return withRunner(ctx, "verify-user", func(runner *infra.SQLRunner, logger infra.Logger) error {
			users := repo.NewUserRepository(runner)
			u, err := findUser(ctx, users)
			if err != nil {
				return err
			}
			to := domain.VerificationApproved
			if rejectFlag {
				to = domain.VerificationRejected
				if strings.TrimSpace(noteFlag) == "" {
					return errors.New("--note is required when rejecting")
				}
			}
			updated, err := users.UpdateVerification(ctx, u.ID, domain.VerificationPending, to, strings.TrimSpace(noteFlag))
			if err != nil {
				if errors.Is(err, domain.ErrInvalidTransition) {
					return fmt.Errorf("user %s is %s, not pending", u.Email, u.Verification)
				}
				return err
			}
			logger.Info().Str("user_id", updated.ID).Str("verification", string(updated.Verification)).Msg("verification updated")
			fmt.Printf("%s is now %s\n", updated.Email, updated.Verification)
			return nil
		})
	},
}

var roleFlag string

var setRoleCmd = &cobra.Command{
	Use:   "set-role",
	Short: "Change the role of an account",
	Long:  `Change the role of an account. This is the way to bootstrap the first admin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role := domain.UserRole(strings.ToLower(strings.TrimSpace(roleFlag)))
		if !role.Valid() {
			return fmt.Errorf("unsupported role %q", roleFlag)
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		return withRunner(ctx, "set-role", func(runner *infra.SQLRunner, logger infra.Logger) error {
			users := repo.NewUserRepository(runner)
			u, err := findUser(ctx, users)
			if err != nil {
				return err
			}
			updated, err := users.UpdateRole(ctx, u.ID, role)
			if err != nil {
				return err
			}
			logger.Info().Str("user_id", updated.ID).Str("role", string(updated.Role)).Msg("role updated")
			fmt.Printf("%s is now %s\n", updated.Email, updated.Role)
			return nil
		})
	},
}

func findUser(ctx context.Context, users domain.UserRepository) (*domain.User, error) {
	id := strings.TrimSpace(userIDFlag)
	email := strings.ToLower(strings.TrimSpace(userEmailFlag))
	var (
		u   *domain.User
		err error
	)
	switch {
	case id != "":
		u, err = users.GetByID(ctx, id)
	case email != "":
		u, err = users.GetByEmail(ctx, email)
	default:
		return nil, errors.New("either --id or --email must be provided")
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errors.New("user not found")
	}
	return u, err
}

func init() {
	for _, c := range []*cobra.Command{verifyUserCmd, setRoleCmd} {
		c.Flags().StringVar(&userIDFlag, "id", "", "user ID (UUID)")
		c.Flags().StringVar(&userEmailFlag, "email", "", "user email")
		rootCmd.AddCommand(c)
	}
	verifyUserCmd.Flags().BoolVar(&rejectFlag, "reject", false, "reject instead of approve")
	verifyUserCmd.Flags().StringVar(&noteFlag, "note", "", "review note shown to the user")
	setRoleCmd.Flags().StringVar(&roleFlag, "role", "", "donor, ngo, individual or admin")
	_ = setRoleCmd.MarkFlagRequired("role")
}
