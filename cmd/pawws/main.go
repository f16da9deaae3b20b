package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/pawws/pawws/cmd/pawws/cmd"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := &cobra.Command{
		Use:          "pawws",
		Short:        "Administrative tools for the Pawws shelter backend",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.CreateAdminCmd())
	rootCmd.AddCommand(cmd.ImportAnimalsCmd())
	rootCmd.AddCommand(cmd.CreditCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
