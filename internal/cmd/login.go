package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	setto "github.com/settopay/setto-server-sdk-go"
	"github.com/settopay/setto-server-sdk-go/internal/credentials"
)

func newLoginCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store a partner API key for the selected environment",
		Long: `Store a partner API key for the selected environment.

The key is kept in the OS keyring. Hosts without a keyring fall back to an
encrypted file in the app data directory, protected by a passphrase
(SETTO_CREDENTIALS_PASSPHRASE or an interactive prompt).

Example:
  setto login --env development
  echo "$KEY" | setto login`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey := c.apiKey
			if apiKey == "" {
				var err error
				apiKey, err = readSecret(cmd.InOrStdin(), fmt.Sprintf("API key for %s: ", c.env))
				if err != nil {
					return err
				}
			}

			// Reject malformed keys before storing them
			if _, err := setto.Resolve(setto.Config{APIKey: apiKey, Environment: c.env}, setto.WithBaseURL(c.platformURL())); err != nil {
				return err
			}

			if err := c.store.Set(c.env.String(), apiKey); err != nil {
				return fmt.Errorf("failed to store API key: %w", err)
			}

			fingerprint := setto.Fingerprint(apiKey)
			c.logger.Info(fmt.Sprintf("Stored API key %s for %s", fingerprint, c.env), logCategory)
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Stored API key %s for %s\n", fingerprint, c.env)
			return nil
		},
	}
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API key for the selected environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.store.Delete(c.env.String())
			if errors.Is(err, credentials.ErrNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "No stored API key for %s\n", c.env)
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to remove API key: %w", err)
			}

			c.logger.Info(fmt.Sprintf("Removed API key for %s", c.env), logCategory)
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed API key for %s\n", c.env)
			return nil
		},
	}
}
