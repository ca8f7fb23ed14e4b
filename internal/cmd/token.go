package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	setto "github.com/settopay/setto-server-sdk-go"
	"github.com/settopay/setto-server-sdk-go/idtoken"
)

func newTokenCmd(c *cli) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Wallet ID tokens",
	}

	var requireEmail bool
	verifyCmd := &cobra.Command{
		Use:   "verify <id_token>",
		Short: "Verify a Wallet ID token and print its claims",
		Long: `Verify a Wallet ID token against the platform's published keys and print
its claims. No API key is needed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := strings.TrimRight(c.platformURL(), "/")
			verifier := idtoken.NewVerifier(base+idtoken.JWKSPath, base, idtoken.WithLogger(c.logger))
			defer verifier.Close()

			var claims *setto.Claims
			err := c.track(cmd.Context(), "verify_id_token", "", func(ctx context.Context) error {
				var err error
				if requireEmail {
					claims, err = verifier.VerifyIDTokenRequireEmail(ctx, args[0])
				} else {
					claims, err = verifier.VerifyIDToken(ctx, args[0])
				}
				return err
			})
			if err != nil {
				return err
			}
			return c.printResult(cmd, claims)
		},
	}
	verifyCmd.Flags().BoolVar(&requireEmail, "require-email", false, "also require email_verified")

	tokenCmd.AddCommand(verifyCmd)
	return tokenCmd
}
