package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chrispoponi/contractflowai-web-sub001/middleware"
)

// tokenCmd mints a bearer token for local testing against a server that has
// auth enabled.
func tokenCmd() *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwt_secret (or JWT_SECRET) is not set")
			}
			token, expiresAt, err := middleware.GenerateToken(userID, ttl, &cfg.Auth)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id to put in the sub claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.MarkFlagRequired("user")

	return cmd
}
