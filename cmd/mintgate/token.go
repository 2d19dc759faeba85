package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mintgate/internal/app"
	jwttoken "mintgate/internal/jwt_token"
	"mintgate/pkg/domain"
)

// tokenCommand signs a bearer token for a caller address with the configured
// signing key. Intended for local development.
func tokenCommand() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <caller-address>",
		Short: "Issue a development bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := domain.ParseAddress(args[0])
			if err != nil {
				return err
			}
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, app.TokenIssuer, app.TokenAudience)
			token, err := tokens.GenerateCallerToken(caller, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
