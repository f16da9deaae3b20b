package cmd

import (
	"errors"
	"fmt"

	"github.com/pawws/pawws/internal/app"
	"github.com/spf13/cobra"
)

func CreateAdminCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account, or promote an existing user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			return withApp(cmd.Context(), func(a *app.App) error {
				user, err := a.AuthService.EnsureAdmin(cmd.Context(), email, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s (%s) ready\n", user.Email, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email address")
	cmd.Flags().StringVar(&password, "password", "", "Password, only needed when the account does not exist yet")
	return cmd
}
