package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	listPage int
	listDate string
)

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add a note",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *Application) error {
			note, err := app.service.CreateNote(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Printf("Added note #%d\n", note.ID)
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDate(listDate)
		if err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, app *Application) error {
			if err := app.service.LoadNotes(ctx, listPage, date); err != nil {
				return err
			}

			st := app.service.Snapshot()
			printState(os.Stdout, st)
			if st.HasMore {
				fmt.Printf("  next: daynotes list --page %d\n", listPage+1)
			}
			return nil
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search notes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *Application) error {
			if err := app.service.SearchNotes(ctx, strings.Join(args, " ")); err != nil {
				return err
			}
			printState(os.Stdout, app.service.Snapshot())
			return nil
		})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id> <text>",
	Short: "Replace the content of a note",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, app *Application) error {
			if err := app.service.UpdateNote(ctx, id, strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Printf("Updated note #%d\n", id)
			return nil
		})
	},
}

var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List the days that have notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *Application) error {
			dates, err := app.service.DatesWithNotes(ctx)
			if err != nil {
				return err
			}
			for _, d := range dates {
				fmt.Println(d.Format(time.DateOnly))
			}
			return nil
		})
	},
}

// parseDate reads YYYY-MM-DD as a local calendar day. An empty string means
// no date filter.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return &d, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", s)
	}
	return id, nil
}

func init() {
	rootCmd.AddCommand(addCmd, listCmd, searchCmd, editCmd, datesCmd)
	listCmd.Flags().IntVar(&listPage, "page", 0, "Page to show, starting at 0")
	listCmd.Flags().StringVar(&listDate, "date", "", "Only notes from this day (YYYY-MM-DD)")
}
