package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var userID string
	var account string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a user's draft and submitted certificate counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" && account == "" {
				return errors.New("pass --user or --account")
			}
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			target := userID
			if account != "" {
				user, err := app.UsersService.GetByAccount(cmd.Context(), account)
				if err != nil {
					return err
				}
				target = user.ID
				fmt.Fprintf(out, "user:      %s (%s)\n", user.Name, user.Account)
			}
			status, err := app.CertsService.Status(cmd.Context(), target)
			if err != nil {
				return fmt.Errorf("count certificates: %w", err)
			}
			fmt.Fprintf(out, "drafts:    %d\n", status.DraftCount)
			fmt.Fprintf(out, "submitted: %d\n", status.SubmittedCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User id to inspect")
	cmd.Flags().StringVar(&account, "account", "", "Account to inspect (resolved to the user id)")

	return cmd
}
