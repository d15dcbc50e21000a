package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirk1998/daynotes/internal/models"
	"github.com/amirk1998/daynotes/internal/testutil"
	"github.com/amirk1998/daynotes/pkg/errors"
)

var base = time.Date(2024, time.May, 10, 9, 30, 0, 0, time.UTC)

func newTestRepo(t *testing.T) *NoteRepository {
	t.Helper()
	return NewNoteRepository(testutil.OpenDB(t), testutil.Logger())
}

// seedNotes inserts one note per offset, created at base+offset.
func seedNotes(t *testing.T, repo *NoteRepository, offsets ...time.Duration) []*models.Note {
	t.Helper()

	notes := make([]*models.Note, 0, len(offsets))
	for i, off := range offsets {
		n := &models.Note{
			Content:   "note " + string(rune('a'+i)),
			CreatedAt: base.Add(off),
			UpdatedAt: base.Add(off),
		}
		require.NoError(t, repo.Create(context.Background(), n))
		notes = append(notes, n)
	}
	return notes
}

func ids(notes []*models.Note) []int64 {
	out := make([]int64, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func TestCreate_DefaultsTimestampsToNow(t *testing.T) {
	repo := newTestRepo(t)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 678_900_000, time.UTC)
	repo.now = func() time.Time { return fixed }

	note := &models.Note{Content: "hello"}
	require.NoError(t, repo.Create(context.Background(), note))

	assert.NotZero(t, note.ID)
	want := fixed.Truncate(time.Millisecond)
	assert.True(t, note.CreatedAt.Equal(want))
	assert.True(t, note.UpdatedAt.Equal(want))

	stored, err := repo.GetByID(context.Background(), note.ID)
	require.NoError(t, err)
	assert.True(t, stored.CreatedAt.Equal(want))
	assert.Equal(t, "hello", stored.Content)
}

func TestCreate_KeepsExplicitTimestamps(t *testing.T) {
	repo := newTestRepo(t)
	created := time.Date(2023, 7, 1, 8, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	note := &models.Note{Content: "restored", CreatedAt: created, UpdatedAt: updated}
	require.NoError(t, repo.Create(context.Background(), note))

	stored, err := repo.GetByID(context.Background(), note.ID)
	require.NoError(t, err)
	assert.True(t, stored.CreatedAt.Equal(created))
	assert.True(t, stored.UpdatedAt.Equal(updated))
}

func TestCreate_NeverReusesIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := seedNotes(t, repo, 0)[0]
	removed, err := repo.Delete(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, removed)

	second := &models.Note{Content: "again"}
	require.NoError(t, repo.Create(ctx, second))
	assert.Greater(t, second.ID, first.ID)
}

func TestGetNotes_NewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	seeded := seedNotes(t, repo, 3*time.Minute, time.Minute, 5*time.Minute, 2*time.Minute)

	got, err := repo.GetNotes(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, got, len(seeded))

	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].CreatedAt.After(got[i].CreatedAt),
			"note %d should be newer than note %d", got[i-1].ID, got[i].ID)
	}
}

func TestGetNotes_PagesPartitionTheCollection(t *testing.T) {
	repo := newTestRepo(t)
	seedNotes(t, repo, 4*time.Second, 1*time.Second, 6*time.Second, 0, 3*time.Second, 5*time.Second, 2*time.Second)

	full, err := repo.GetNotes(context.Background(), 0, 100)
	require.NoError(t, err)
	want := ids(full)

	for limit := 1; limit <= len(want)+1; limit++ {
		var got []int64
		for page := 0; ; page++ {
			window, err := repo.GetNotes(context.Background(), page, limit)
			require.NoError(t, err)
			got = append(got, ids(window)...)
			if len(window) != limit {
				break
			}
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("limit %d: paged ids mismatch (-want +got):\n%s", limit, diff)
		}
	}
}

func TestGetNotes_EmptyPageBeyondEnd(t *testing.T) {
	repo := newTestRepo(t)
	seedNotes(t, repo, 0, time.Second)

	got, err := repo.GetNotes(context.Background(), 5, 20)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetNotesForDate_InclusiveBounds(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	start, end := models.DayBounds(base)
	mk := func(content string, at time.Time) *models.Note {
		n := &models.Note{Content: content, CreatedAt: at, UpdatedAt: at}
		require.NoError(t, repo.Create(ctx, n))
		return n
	}

	mk("day before", start.Add(-time.Millisecond))
	atStart := mk("at start", start)
	midday := mk("midday", start.Add(12*time.Hour))
	atEnd := mk("at end", end)
	mk("day after", end.Add(time.Millisecond))

	got, err := repo.GetNotesForDate(ctx, start, end, 0, 20)
	require.NoError(t, err)

	if diff := cmp.Diff([]int64{atEnd.ID, midday.ID, atStart.ID}, ids(got)); diff != "" {
		t.Errorf("date window mismatch (-want +got):\n%s", diff)
	}

	second, err := repo.GetNotesForDate(ctx, start, end, 1, 2)
	require.NoError(t, err)
	if diff := cmp.Diff([]int64{atStart.ID}, ids(second)); diff != "" {
		t.Errorf("second page mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdate_RefreshesUpdatedAt(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	note := seedNotes(t, repo, 0)[0]

	later := base.Add(48 * time.Hour)
	repo.now = func() time.Time { return later }

	require.NoError(t, repo.Update(ctx, note.ID, "edited"))

	stored, err := repo.GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", stored.Content)
	assert.True(t, stored.CreatedAt.Equal(note.CreatedAt))
	assert.True(t, stored.UpdatedAt.Equal(later))
}

func TestUpdate_MissingNote(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Update(context.Background(), 404, "nothing here")
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestDelete_ReportsRemoval(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	note := seedNotes(t, repo, 0)[0]

	removed, err := repo.Delete(ctx, note.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, note.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = repo.GetByID(ctx, note.ID)
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestGetDatesWithNotes_DistinctDescending(t *testing.T) {
	repo := newTestRepo(t)
	seedNotes(t, repo, 0, time.Hour, 24*time.Hour, 72*time.Hour, 73*time.Hour)

	got, err := repo.GetDatesWithNotes(context.Background())
	require.NoError(t, err)

	want := []time.Time{
		time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.May, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dates mismatch (-want +got):\n%s", diff)
	}
}

func TestScenario_LatestNoteListedFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t1 := base
	repo.now = func() time.Time { return t1 }
	require.NoError(t, repo.Create(ctx, &models.Note{Content: "buy milk"}))

	t2 := base.Add(time.Minute)
	repo.now = func() time.Time { return t2 }
	require.NoError(t, repo.Create(ctx, &models.Note{Content: "call mom"}))

	got, err := repo.GetNotes(ctx, 0, 20)
	require.NoError(t, err)

	var contents []string
	for _, n := range got {
		contents = append(contents, n.Content)
	}
	assert.Equal(t, []string{"call mom", "buy milk"}, contents)
}

func TestCount(t *testing.T) {
	repo := newTestRepo(t)
	seedNotes(t, repo, 0, time.Second, 2*time.Second)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
