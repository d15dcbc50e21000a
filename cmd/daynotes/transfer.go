package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/amirk1998/daynotes/internal/models"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write every note to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *Application) error {
			notes, err := app.notes.AllNotes(ctx)
			if err != nil {
				return err
			}

			if err := writeExport(args[0], notes, time.Now()); err != nil {
				return err
			}
			fmt.Printf("Exported %d notes to %s\n", len(notes), args[0])
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Add notes from a YAML export, keeping their timestamps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readExport(args[0])
		if err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, app *Application) error {
			n, err := app.service.ImportNotes(ctx, doc.Notes)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d of %d notes\n", n, len(doc.Notes))
			return nil
		})
	},
}

func writeExport(path string, notes []*models.Note, now time.Time) error {
	doc := models.Export{
		ExportedAt: now.UTC().Truncate(time.Second),
		Notes:      notes,
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return os.Chmod(path, 0600)
}

func readExport(path string) (*models.Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}

	var doc models.Export
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode export %s: %w", path, err)
	}
	return &doc, nil
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
}
