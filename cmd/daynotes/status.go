package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amirk1998/daynotes/internal/database"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store, schema and backup details",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *Application) error {
			count, err := app.notes.Count(ctx)
			if err != nil {
				return err
			}
			version, err := database.SchemaVersion(ctx, app.db)
			if err != nil {
				return err
			}
			stats := database.GetStats(app.db)

			fmt.Printf("Database:     %s\n", app.config.DBPath)
			fmt.Printf("Schema:       v%d (latest v%d)\n", version, database.LatestVersion())
			fmt.Printf("Notes:        %d\n", count)
			fmt.Printf("Connections:  %d open, %d in use\n", stats.OpenConnections, stats.InUse)

			if app.backupMgr == nil {
				fmt.Println("Backups:      disabled (BACKUP_PASSPHRASE not set)")
				return nil
			}
			backups, err := app.backupMgr.ListBackups()
			if err != nil {
				return err
			}
			fmt.Printf("Backups:      %d in %s\n", len(backups), app.config.BackupDir)
			if len(backups) > 0 {
				fmt.Printf("Latest:       %s\n", backups[0])
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
