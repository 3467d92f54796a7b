package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mona5211005/certificate-system/internal/users"
)

func newUserCommand(ctx *commandContext) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	userCmd.AddCommand(newUserAddCommand(ctx))
	userCmd.AddCommand(newUserShowCommand(ctx))

	return userCmd
}

func newUserAddCommand(ctx *commandContext) *cobra.Command {
	var account, name, role, college string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(account) == "" || strings.TrimSpace(name) == "" {
				return errors.New("pass --account and --name")
			}
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			user, err := app.UsersService.Create(cmd.Context(), account, name, role, college)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (id %s)\n", user.Role, user.Account, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Login account (student number or staff number)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&role, "role", users.RoleStudent, "Role (student, teacher or admin)")
	cmd.Flags().StringVar(&college, "college", "", "College the user belongs to")

	return cmd
}

func newUserShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <account>",
		Short: "Look up a user by account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			user, err := app.UsersService.GetByAccount(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:      %s\n", user.ID)
			fmt.Fprintf(out, "account: %s\n", user.Account)
			fmt.Fprintf(out, "name:    %s\n", user.Name)
			fmt.Fprintf(out, "role:    %s\n", user.Role)
			fmt.Fprintf(out, "college: %s\n", user.College)
			fmt.Fprintf(out, "active:  %s\n", yesNo(user.Active))
			return nil
		},
	}
}
