package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ashleyalmeida07/SolarizeIt/internal/adapter/postgres"
)

func newMigrateCmd() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the analyses schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				dsn = os.Getenv("DATABASE_URL")
			}
			if dsn == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}

			ctx := cmd.Context()
			db, err := postgres.Open(ctx, dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			if err := postgres.NewStore(db, logger).Migrate(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), goodStyle.Render("✓ schema up to date"))
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "database-url", "", "Postgres connection string (overrides DATABASE_URL)")
	return cmd
}
