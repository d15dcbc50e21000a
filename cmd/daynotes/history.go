package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/amirk1998/daynotes/internal/audit"
)

var (
	historyLimit  int
	historyAction string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent activity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *Application) error {
			events, err := app.auditLogger.QueryLogs(ctx, audit.QueryFilters{
				Action: historyAction,
				Limit:  historyLimit,
			})
			if err != nil {
				return err
			}

			for _, e := range events {
				note := "-"
				if e.NoteID != nil {
					note = "#" + strconv.FormatInt(*e.NoteID, 10)
				}
				status := "ok"
				if !e.Success {
					status = "failed: " + e.ErrorMsg
				}
				fmt.Printf("%s  %-7s %-16s %-6s %s %s\n",
					timeStyle.Render(e.Timestamp.Local().Format(timeLayout)),
					e.Level, e.Action, note, status, e.Metadata)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries")
	historyCmd.Flags().StringVar(&historyAction, "action", "", "Only entries with this action, e.g. NOTE_DELETED")
}
