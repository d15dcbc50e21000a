package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirk1998/daynotes/internal/models"
)

type staticSource struct {
	notes []*models.Note
	err   error
}

func (s staticSource) AllNotes(context.Context) ([]*models.Note, error) {
	return s.notes, s.err
}

func notesOf(contents ...string) []*models.Note {
	notes := make([]*models.Note, len(contents))
	for i, c := range contents {
		notes[i] = &models.Note{ID: int64(i + 1), Content: c}
	}
	return notes
}

func contentsOf(notes []*models.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Content
	}
	return out
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"hello", "hellp", 1},
		{"ab", "ba", 2}, // no transposition
		{"café", "cafe", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "Levenshtein(%q, %q)", tt.a, tt.b)
	}
}

func TestWindowDistance(t *testing.T) {
	tests := []struct {
		name        string
		needle, hay string
		want        int
	}{
		{"one substitution inside longer text", "hello", "hellp world", 1},
		{"exact window", "world", "hello world", 0},
		{"empty needle", "", "abc", 3},
		{"empty haystack", "abc", "", 3},
		{"needle longer than haystack", "groceries", "grocer", 3},
		{"nothing close", "xyz", "hello world", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WindowDistance(tt.needle, tt.hay))
		})
	}
}

func TestRank_ExactMatchesFirst(t *testing.T) {
	notes := notesOf(
		"hellp world",         // distance 1
		"Say HELLO to Bob",    // exact, case-insensitive
		"help wanted",         // distance 2 ("hello" vs "help ")
		"nothing to see here", // excluded
		"hello again",         // exact
	)

	results := Rank("hello", notes)

	got := make([]string, len(results))
	for i, r := range results {
		got[i] = r.Note.Content
	}
	assert.Equal(t, []string{"Say HELLO to Bob", "hello again", "hellp world", "help wanted"}, got)

	assert.True(t, results[0].Exact)
	assert.Zero(t, results[0].Distance)
	assert.False(t, results[2].Exact)
	assert.Equal(t, 1, results[2].Distance)
}

func TestRank_ExcludesDistanceThreeOrMore(t *testing.T) {
	results := Rank("zebra", notesOf("a quiet garden", "zebras run", "zzzzz"))

	require.Len(t, results, 1)
	assert.Equal(t, "zebras run", results[0].Note.Content)
}

func TestRank_StableAmongEqualRanks(t *testing.T) {
	notes := notesOf("milk first", "more milk", "milk again", "mild")

	results := Rank("milk", notes)

	got := make([]int64, len(results))
	for i, r := range results {
		got[i] = r.Note.ID
	}
	assert.Equal(t, []int64{1, 2, 3, 4}, got)
}

func TestEngineSearch_EmptyQueryReturnsEverything(t *testing.T) {
	notes := notesOf("one", "two", "three")
	engine := NewEngine(staticSource{notes: notes})

	got, err := engine.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, contentsOf(notes), contentsOf(got))
}

func TestEngineSearch_ReturnsRankedNotes(t *testing.T) {
	engine := NewEngine(staticSource{notes: notesOf("hellp world", "hello there", "unrelated")})

	got, err := engine.Search(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello there", "hellp world"}, contentsOf(got))
}

func TestEngineSearch_PropagatesReadErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	engine := NewEngine(staticSource{err: boom})

	_, err := engine.Search(context.Background(), "x")
	require.ErrorIs(t, err, boom)
}
