package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	setto "github.com/settopay/setto-server-sdk-go"
)

// maxConcurrentLookups bounds parallel requests of `payment status`
const maxConcurrentLookups = 4

func newPaymentCmd(c *cli) *cobra.Command {
	paymentCmd := &cobra.Command{
		Use:   "payment",
		Short: "Check payment status",
	}

	paymentCmd.AddCommand(newPaymentStatusCmd(c), newPaymentWatchCmd(c))
	return paymentCmd
}

func newPaymentStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status <payment_id>...",
		Short: "Show the status of one or more payments",
		Long: `Show the status of one or more payments.

Several IDs are looked up concurrently; the first failure cancels the rest.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}

			results := make([]*setto.PaymentInfo, len(args))

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(maxConcurrentLookups)
			for i, paymentID := range args {
				g.Go(func() error {
					return c.track(ctx, "get_payment_status", paymentID, func(ctx context.Context) error {
						info, err := client.GetPaymentStatus(ctx, paymentID)
						if err != nil {
							return fmt.Errorf("payment %s: %w", paymentID, err)
						}
						results[i] = info
						return nil
					})
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if len(results) == 1 {
				return c.printResult(cmd, results[0])
			}
			return c.printResult(cmd, results)
		},
	}
}

func newPaymentWatchCmd(c *cli) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch <payment_id>",
		Short: "Wait until a payment is included, failed or cancelled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("interval") {
				interval = c.config.GetConfigDuration("watch_interval", 2*time.Second)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "Watching payment %s every %s (Ctrl-C to stop)\n", args[0], interval)

			var info *setto.PaymentInfo
			err = c.track(ctx, "poll_payment", args[0], func(ctx context.Context) error {
				info, err = client.PollPayment(ctx, args[0], interval)
				return err
			})
			if err != nil {
				return err
			}

			if err := c.printResult(cmd, info); err != nil {
				return err
			}
			if info.IsFailed() {
				return fmt.Errorf("payment %s %s", info.PaymentID, info.Status)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "time between status checks")
	return cmd
}
