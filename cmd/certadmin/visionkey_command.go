package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVisionKeyCommand(ctx *commandContext) *cobra.Command {
	keyCmd := &cobra.Command{
		Use:   "vision-key",
		Short: "Manage the extraction model credential",
	}

	keyCmd.AddCommand(&cobra.Command{
		Use:   "set <key>",
		Short: "Store the extraction model API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			if err := app.ConfigService.SetVisionKey(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "extraction key updated")
			return nil
		},
	})

	keyCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Report whether an extraction key is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			key, err := app.ConfigService.VisionKey(cmd.Context())
			if err != nil {
				return fmt.Errorf("read key: %w", err)
			}
			out := cmd.OutOrStdout()
			if key == "" {
				fmt.Fprintln(out, "no extraction key configured")
				return nil
			}
			fmt.Fprintf(out, "extraction key configured (%s)\n", maskKey(key))
			return nil
		},
	})

	return keyCmd
}

// maskKey keeps the tail so operators can tell keys apart without printing
// the secret.
func maskKey(key string) string {
	const visible = 4
	if len(key) <= visible {
		return "****"
	}
	return "****" + key[len(key)-visible:]
}
