package cmd

import (
	"context"

	"github.com/spf13/cobra"

	setto "github.com/settopay/setto-server-sdk-go"
)

func newMerchantCmd(c *cli) *cobra.Command {
	merchantCmd := &cobra.Command{
		Use:   "merchant",
		Short: "Create, inspect and update merchants",
	}

	merchantCmd.AddCommand(
		newMerchantCreateCmd(c),
		newMerchantGetCmd(c),
		newMerchantUpdateCmd(c),
		newMerchantUpdateProfileCmd(c),
	)
	return merchantCmd
}

func newMerchantCreateCmd(c *cli) *cobra.Command {
	req := &setto.CreateMerchantRequest{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a merchant",
		Long: `Create a merchant.

The owning user is identified either by --email (platform partners) or by a
one-time token issued to the user (--ott).

Example:
  setto merchant create --name "Coffee Shop" --evm 0x5290...9EE7 --ott ott_123`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}

			var resp *setto.CreateMerchantResponse
			err = c.track(cmd.Context(), "create_merchant", req.Name, func(ctx context.Context) error {
				resp, err = client.CreateMerchant(ctx, req)
				return err
			})
			if err != nil {
				return err
			}
			return c.printResult(cmd, resp)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Name, "name", "", "merchant display name (required)")
	flags.StringVar(&req.PayoutEVMAddress, "evm", "", "EVM payout address (required)")
	flags.StringVar(&req.PayoutSVMAddress, "svm", "", "Solana payout address")
	flags.StringVar(&req.Email, "email", "", "owner email (platform partners)")
	flags.StringVar(&req.PhotoURL, "photo-url", "", "merchant photo URL")
	flags.StringVar(&req.FeeRate, "fee-rate", "", "fee rate as a decimal string")
	flags.StringVar(&req.OneTimeToken, "ott", "", "one-time token issued to the owning user")

	return cmd
}

func newMerchantGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <merchant_id>",
		Short: "Show a merchant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}

			var merchant *setto.Merchant
			err = c.track(cmd.Context(), "get_merchant", args[0], func(ctx context.Context) error {
				merchant, err = client.GetMerchant(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			return c.printResult(cmd, merchant)
		},
	}
}

func newMerchantUpdateCmd(c *cli) *cobra.Command {
	var ott, name, photoURL, evm, svm string

	cmd := &cobra.Command{
		Use:   "update <merchant_id>",
		Short: "Update payout addresses and details (needs a one-time token)",
		Long: `Update payout addresses and other merchant details.

This is a sensitive change: the merchant owner must issue a fresh one-time token
with the UPDATE_MERCHANT scope. Only the flags given are changed.

Example:
  setto merchant update m_123 --ott ott_456 --evm 0x5290...9EE7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			req := &setto.UpdateMerchantRequest{MerchantID: args[0], OneTimeToken: ott}
			if flags.Changed("name") {
				req.Name = setto.String(name)
			}
			if flags.Changed("photo-url") {
				req.PhotoURL = setto.String(photoURL)
			}
			if flags.Changed("evm") {
				req.PayoutEVMAddress = setto.String(evm)
			}
			if flags.Changed("svm") {
				req.PayoutSVMAddress = setto.String(svm)
			}

			var merchant *setto.Merchant
			err = c.track(cmd.Context(), "update_merchant", args[0], func(ctx context.Context) error {
				merchant, err = client.UpdateMerchant(ctx, req)
				return err
			})
			if err != nil {
				return err
			}
			return c.printResult(cmd, merchant)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&ott, "ott", "", "one-time token with UPDATE_MERCHANT scope (required)")
	flags.StringVar(&name, "name", "", "new display name")
	flags.StringVar(&photoURL, "photo-url", "", "new photo URL")
	flags.StringVar(&evm, "evm", "", "new EVM payout address")
	flags.StringVar(&svm, "svm", "", "new Solana payout address")

	return cmd
}

func newMerchantUpdateProfileCmd(c *cli) *cobra.Command {
	var name, photoURL string

	cmd := &cobra.Command{
		Use:   "update-profile <merchant_id>",
		Short: "Update the merchant's name or photo (no token needed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			req := &setto.UpdateMerchantProfileRequest{MerchantID: args[0]}
			if flags.Changed("name") {
				req.Name = setto.String(name)
			}
			if flags.Changed("photo-url") {
				req.PhotoURL = setto.String(photoURL)
			}

			var profile *setto.MerchantProfile
			err = c.track(cmd.Context(), "update_merchant_profile", args[0], func(ctx context.Context) error {
				profile, err = client.UpdateMerchantProfile(ctx, req)
				return err
			})
			if err != nil {
				return err
			}
			return c.printResult(cmd, profile)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&photoURL, "photo-url", "", "new photo URL")

	return cmd
}
