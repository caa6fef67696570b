package main

import (
	"fmt"

	"github.com/Veraticus/cashflow/internal/cli"
	"github.com/Veraticus/cashflow/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd(env *appEnv) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Bring the database schema up to date. Every other command migrates on open;
use --status to inspect the schema version without changing anything.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if status {
				store, err := storage.NewSQLiteStorage(env.cfg.Database)
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()

				current, err := store.SchemaVersion(ctx)
				if err != nil {
					return err
				}
				printf(out, "Database:       %s\n", store.Path())
				printf(out, "Schema version: %d (latest %d)\n", current, storage.ExpectedSchemaVersion)
				if current < storage.ExpectedSchemaVersion {
					printLine(out, cli.FormatWarning("Migrations pending; run 'cashflow migrate'"))
				}
				return nil
			}

			store, err := env.initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			printLine(out, cli.FormatSuccess(fmt.Sprintf("Database is at schema version %d", storage.ExpectedSchemaVersion)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "show the schema version without migrating")
	return cmd
}
