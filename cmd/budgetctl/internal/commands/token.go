package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/budgetflow/internal/auth"
)

func newTokenCommand() *cobra.Command {
	var (
		userID int64
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed bearer token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if cfg.JWT.Secret == "" {
				return errors.New("JWT_SECRET is not set")
			}

			if ttl <= 0 {
				ttl = cfg.JWT.TTL
			}

			token, err := auth.NewTokens(cfg.JWT.Secret, cfg.JWT.Issuer, ttl).Issue(userID)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)

			return err
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "user id to put in the token subject (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_TTL)")

	return cmd
}
