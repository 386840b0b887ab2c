package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brandsight/rank-tracker/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("migrate"); err != nil {
			return err
		}

		pool, err := db.Connect(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		return db.Migrate(ctx, pool)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
