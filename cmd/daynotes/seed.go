package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amirk1998/daynotes/internal/models"
)

var seedCount int

var loremWords = strings.Fields(`lorem ipsum dolor sit amet consectetur adipiscing elit sed do
eiusmod tempor incididunt ut labore et dolore magna aliqua enim ad minim veniam
quis nostrud exercitation ullamco laboris nisi aliquip ex ea commodo consequat
duis aute irure in reprehenderit voluptate velit esse cillum fugiat nulla
pariatur excepteur sint occaecat cupidatat non proident sunt culpa qui officia
deserunt mollit anim id est laborum`)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the store with generated notes from the last three months",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedCount <= 0 {
			return fmt.Errorf("-n must be positive")
		}

		return withApp(cmd, func(ctx context.Context, app *Application) error {
			rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
			notes := generateNotes(rng, seedCount, time.Now())

			n, err := app.service.ImportNotes(ctx, notes)
			if err != nil {
				return err
			}
			fmt.Printf("Seeded %d notes\n", n)
			return nil
		})
	},
}

// generateNotes returns n lorem ipsum notes created at random instants within
// the three months before now.
func generateNotes(rng *rand.Rand, n int, now time.Time) []*models.Note {
	start := now.AddDate(0, -3, 0)
	span := now.Sub(start)

	notes := make([]*models.Note, 0, n)
	for i := 0; i < n; i++ {
		at := start.Add(time.Duration(rng.Int64N(int64(span)))).Truncate(time.Millisecond)
		notes = append(notes, &models.Note{
			Content:   loremSentence(rng, 5+rng.IntN(25)),
			CreatedAt: at,
			UpdatedAt: at,
		})
	}
	return notes
}

func loremSentence(rng *rand.Rand, words int) string {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = loremWords[rng.IntN(len(loremWords))]
	}
	parts[0] = strings.ToUpper(parts[0][:1]) + parts[0][1:]
	return strings.Join(parts, " ") + "."
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().IntVarP(&seedCount, "count", "n", 100, "Number of notes to generate")
}
