package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/settopay/setto-server-sdk-go/internal/database"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var (
		limit     int
		operation string
	)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent platform calls made by this CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			journal := c.openJournal()
			if journal == nil {
				return errors.New("call journal unavailable, see the log file")
			}

			if !cmd.Flags().Changed("limit") {
				limit = c.config.GetConfigInt("history_limit", 20, 1, 10000)
			}

			calls, err := journal.ListCalls(limit, operation)
			if err != nil {
				return fmt.Errorf("failed to read call journal: %w", err)
			}
			if calls == nil {
				calls = []*database.CallRecord{}
			}
			return c.printResult(cmd, calls)
		},
	}
	historyCmd.Flags().IntVar(&limit, "limit", 20, "number of calls to show")
	historyCmd.Flags().StringVar(&operation, "operation", "", "only show this operation (e.g. get_payment_status)")

	var olderThan time.Duration
	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete journal entries older than --older-than",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}

			journal := c.openJournal()
			if journal == nil {
				return errors.New("call journal unavailable, see the log file")
			}

			removed, err := journal.PruneCalls(time.Now().Add(-olderThan))
			if err != nil {
				return fmt.Errorf("failed to prune call journal: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d entries\n", removed)
			return nil
		},
	}
	pruneCmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "age of entries to delete")

	historyCmd.AddCommand(pruneCmd)
	return historyCmd
}
