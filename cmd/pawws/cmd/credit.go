package cmd

import (
	"fmt"
	"strconv"

	"github.com/pawws/pawws/internal/app"
	"github.com/spf13/cobra"
)

func CreditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "credit <milestone-id> <amount>",
		Short: "Credit a milestone directly, outside the review workflow",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			return withApp(cmd.Context(), func(a *app.App) error {
				milestone, err := a.LedgerService.Credit(cmd.Context(), args[0], amount)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d (%s)\n",
					milestone.Title, milestone.CurrentAmount, milestone.Cost, milestone.Status)
				return nil
			})
		},
	}
}
