package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	setto "github.com/settopay/setto-server-sdk-go"
)

// verificationView adds a readable timestamp to the wire status
type verificationView struct {
	*setto.VerificationStatus
	VerifiedAtTime string `json:"verified_at_time,omitempty"`
}

func newUserCmd(c *cli) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Look up partner users",
	}

	userCmd.AddCommand(&cobra.Command{
		Use:   "verification <user_id>",
		Short: "Show whether a user completed phone verification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}

			var status *setto.VerificationStatus
			err = c.track(cmd.Context(), "get_verification_status", args[0], func(ctx context.Context) error {
				status, err = client.GetVerificationStatus(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}

			view := verificationView{VerificationStatus: status}
			if t := status.VerifiedTime(); !t.IsZero() {
				view.VerifiedAtTime = t.UTC().Format(time.RFC3339)
			}
			return c.printResult(cmd, view)
		},
	})

	return userCmd
}

func newLinkCmd(c *cli) *cobra.Command {
	linkCmd := &cobra.Command{
		Use:   "link",
		Short: "Account linking",
	}

	linkCmd.AddCommand(&cobra.Command{
		Use:   "exchange <link_token>",
		Short: "Exchange a one-time account link token for the user's identity",
		Long: `Exchange a one-time account link token for the user's identity.

The platform consumes the token; exchanging it a second time fails with
PAYMENT_OTT_ALREADY_USED.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}

			var info *setto.AccountLinkInfo
			// The token itself is a credential and stays out of the journal
			err = c.track(cmd.Context(), "exchange_account_link_token", "", func(ctx context.Context) error {
				info, err = client.ExchangeAccountLinkToken(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			return c.printResult(cmd, info)
		},
	})

	return linkCmd
}
