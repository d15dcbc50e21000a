// Package search ranks notes against a free-text query, tolerating typos.
package search

import (
	"context"
	"sort"
	"strings"

	"github.com/amirk1998/daynotes/internal/models"
)

// MaxDistance is the exclusive upper bound on window distance for a
// non-exact match to be kept.
const MaxDistance = 3

// NoteSource supplies the candidate notes for a search.
type NoteSource interface {
	AllNotes(ctx context.Context) ([]*models.Note, error)
}

// Result is a ranked candidate.
type Result struct {
	Note     *models.Note
	Distance int
	Exact    bool
}

type Engine struct {
	source NoteSource
}

func NewEngine(source NoteSource) *Engine {
	return &Engine{source: source}
}

// Search returns the notes matching query, best first. An empty query
// returns every note unfiltered.
func (e *Engine) Search(ctx context.Context, query string) ([]*models.Note, error) {
	notes, err := e.source.AllNotes(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return notes, nil
	}

	results := Rank(query, notes)
	out := make([]*models.Note, len(results))
	for i, r := range results {
		out[i] = r.Note
	}
	return out, nil
}

// Rank scores notes against query, drops the ones too far away and orders
// the rest: exact matches first, then by ascending distance. Equal ranks
// keep their input order.
func Rank(query string, notes []*models.Note) []Result {
	term := strings.ToLower(query)

	results := make([]Result, 0, len(notes))
	for _, note := range notes {
		content := strings.ToLower(note.Content)

		r := Result{Note: note}
		if strings.Contains(content, term) {
			r.Exact = true
		} else {
			r.Distance = WindowDistance(term, content)
		}

		if r.Exact || r.Distance < MaxDistance {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Exact != b.Exact {
			return a.Exact
		}
		return a.Distance < b.Distance
	})

	return results
}
