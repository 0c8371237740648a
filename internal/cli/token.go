package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"framecheck/internal/config"
	"framecheck/internal/middleware"
	"framecheck/internal/services"
)

type tokenOptions struct {
	name   string
	expiry time.Duration
}

// NewTokenCommand issues API tokens. There is no HTTP endpoint for this.
func NewTokenCommand() *cobra.Command {
	o := &tokenOptions{}
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate an API token for a client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !middleware.NewInputValidator().ValidateClientName(o.name) {
				return fmt.Errorf("invalid client name %q: use letters, digits, '-', '_' or '.'", o.name)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			expiry := cfg.TokenExpiry
			if o.expiry > 0 {
				expiry = o.expiry
			}

			auth := services.NewAuthService(cfg.AuthSecret, expiry)
			token, expiresAt, err := auth.GenerateToken(o.name)
			if err != nil {
				return err
			}
			middleware.NewSecurityLogger().LogTokenGenerated("cli", o.name)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# client %s, expires %s\n", o.name, expiresAt.Format(time.RFC3339))
			fmt.Fprintln(out, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&o.name, "name", "", "client name embedded in the token")
	cmd.Flags().DurationVar(&o.expiry, "expiry", 0, "token lifetime (defaults to API_TOKEN_EXPIRY)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
