package cli

import (
	"github.com/spf13/cobra"

	"github.com/ecoquest/ecoquest-engine/internal/config"
	"github.com/ecoquest/ecoquest-engine/internal/core/services"
)

// NewTokenCommand signs a development token with the configured secret. It
// needs no storage.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "token <user-id>",
		Short:         "Sign a bearer token for local testing",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			if cfg.Auth.JWTSecret == "" {
				return NewExitError(ExitCommandError, "JWT_SECRET must be set")
			}

			tokens := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
			token, err := tokens.GenerateToken(args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "failed to sign token", err)
			}

			return printResult(cmd.OutOrStdout(), rootOpts.Format, map[string]string{"token": token}, token)
		},
	}
}
