package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/cronograma-api/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply or inspect the embedded database migrations",
	ValidArgs: []string{"up", "down", "status"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:      runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db.DB, args[0]); err != nil {
		return err
	}
	logr.Info("migrations finished")
	return nil
}
