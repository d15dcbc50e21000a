package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/amirk1998/daynotes/internal/audit"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create an encrypted backup of the note store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *Application) error {
			path, err := createBackup(ctx, app)
			if err != nil {
				return err
			}
			fmt.Printf("Backup written to %s\n", path)
			return nil
		})
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *Application) error {
			mgr, err := app.backups()
			if err != nil {
				return err
			}
			paths, err := mgr.ListBackups()
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Println(p)
			}
			return nil
		})
	},
}

var backupVerifyCmd = &cobra.Command{
	Use:   "verify <file>",
	Short: "Check a backup against its checksum",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *Application) error {
			mgr, err := app.backups()
			if err != nil {
				return err
			}
			if err := mgr.VerifyBackup(args[0]); err != nil {
				return err
			}
			fmt.Println("Backup OK")
			return nil
		})
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <file> <dst>",
	Short: "Decrypt a backup into a new database file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dst, err := filepath.Abs(args[1])
		if err != nil {
			return err
		}
		live, err := filepath.Abs(cfg.DBPath)
		if err != nil {
			return err
		}
		if dst == live {
			return fmt.Errorf("refusing to restore over the open database %s; restore elsewhere and point DB_PATH at it", live)
		}

		return withApp(cmd, func(ctx context.Context, app *Application) error {
			mgr, err := app.backups()
			if err != nil {
				return err
			}
			if err := mgr.RestoreBackup(args[0], dst); err != nil {
				return err
			}
			fmt.Printf("Restored %s to %s\n", args[0], dst)
			return nil
		})
	},
}

// createBackup runs one backup and records it in the activity log.
func createBackup(ctx context.Context, app *Application) (string, error) {
	mgr, err := app.backups()
	if err != nil {
		return "", err
	}

	path, err := mgr.CreateBackup(ctx)
	event := &audit.Event{
		Level:    audit.LevelInfo,
		Action:   audit.ActionBackupCreated,
		Resource: "backups",
		Success:  err == nil,
		Metadata: filepath.Base(path),
	}
	if err != nil {
		event.Level = audit.LevelError
		event.ErrorMsg = err.Error()
	}
	if logErr := app.auditLogger.Log(event); logErr != nil {
		app.logger.Warn("failed to record backup", "error", logErr)
	}

	return path, err
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupListCmd, backupVerifyCmd, backupRestoreCmd)
}
