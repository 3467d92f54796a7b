package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mona5211005/certificate-system/internal/sysconfig"
)

func newDeadlineCommand(ctx *commandContext) *cobra.Command {
	deadlineCmd := &cobra.Command{
		Use:   "deadline",
		Short: "Inspect or change the submission deadline",
	}

	deadlineCmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the current submission deadline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			deadline, err := app.ConfigService.Deadline(cmd.Context())
			if err != nil {
				return fmt.Errorf("read deadline: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "submission deadline: %s\n", deadline.Format(sysconfig.DeadlineLayout))
			return nil
		},
	})

	deadlineCmd.AddCommand(&cobra.Command{
		Use:     "set <timestamp>",
		Short:   "Set the submission deadline",
		Example: `  certadmin deadline set "2026-06-30 23:59:59"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			if err := app.ConfigService.SetDeadline(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "submission deadline set to %s\n", args[0])
			return nil
		},
	})

	return deadlineCmd
}
