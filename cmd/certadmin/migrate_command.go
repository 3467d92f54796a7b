package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mona5211005/certificate-system/internal/bootstrap"
	"github.com/mona5211005/certificate-system/internal/shared/config"
	"github.com/mona5211005/certificate-system/internal/shared/storage/db"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			target := bootstrap.DatabaseTarget(cfg)
			if target == "" {
				return errors.New("no database configured: set DATABASE_URL or SQLITE_PATH")
			}
			sqlDB, err := db.Connect(cmd.Context(), target, db.OptionsFromEnv(db.DefaultMigrateOptions()))
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer sqlDB.Close()
			if err := db.RunMigrations(cmd.Context(), sqlDB, db.Dialect(target)); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
