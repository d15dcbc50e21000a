package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/amirk1998/daynotes/internal/models"
	"github.com/amirk1998/daynotes/pkg/errors"
)

// timestampLayout is ISO-8601 in UTC with fixed millisecond width, so
// lexical order on the TEXT columns is chronological order.
const timestampLayout = "2006-01-02T15:04:05.000Z"

const noteColumns = `id, content, created_at, updated_at`

type NoteRepository struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *sql.DB, logger *slog.Logger) *NoteRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoteRepository{
		db:     db,
		logger: logger.With("component", "note_repository"),
		now:    time.Now,
	}
}

// FormatTimestamp renders t the way it is persisted.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}

// Create inserts note and assigns its ID. Zero timestamps default to now;
// explicit ones are stored as given, which is how undo and import replay
// original times.
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	query := `
        INSERT INTO notes (content, created_at, updated_at)
        VALUES (?, ?, ?)
    `

	now := r.now().UTC().Truncate(time.Millisecond)
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	if note.UpdatedAt.IsZero() {
		note.UpdatedAt = now
	}
	note.CreatedAt = note.CreatedAt.UTC().Truncate(time.Millisecond)
	note.UpdatedAt = note.UpdatedAt.UTC().Truncate(time.Millisecond)

	result, err := r.db.ExecContext(ctx, query,
		note.Content,
		FormatTimestamp(note.CreatedAt),
		FormatTimestamp(note.UpdatedAt),
	)
	if err != nil {
		return errors.Storage("create note", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.Storage("get note ID", err)
	}

	note.ID = id
	return nil
}

// GetByID retrieves a note by ID
func (r *NoteRepository) GetByID(ctx context.Context, id int64) (*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = ?`

	note, err := scanNote(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Storage("get note", err)
	}

	return note, nil
}

// Update replaces a note's content and refreshes updated_at.
func (r *NoteRepository) Update(ctx context.Context, id int64, content string) error {
	query := `
        UPDATE notes
        SET content = ?, updated_at = ?
        WHERE id = ?
    `

	result, err := r.db.ExecContext(ctx, query,
		content,
		FormatTimestamp(r.now()),
		id,
	)
	if err != nil {
		r.logger.Error("update failed", "note_id", id, "error", err)
		return errors.Storage("update note", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Storage("get affected rows", err)
	}

	if rows == 0 {
		r.logger.Warn("update of missing note", "note_id", id)
		return fmt.Errorf("update note %d: %w", id, errors.ErrNotFound)
	}

	return nil
}

// Delete physically removes a note and reports whether a row was removed.
func (r *NoteRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return false, errors.Storage("delete note", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.Storage("get affected rows", err)
	}

	return rows > 0, nil
}

// GetNotes returns page `page` of notes, newest first.
func (r *NoteRepository) GetNotes(ctx context.Context, page, limit int) ([]*models.Note, error) {
	query := `
        SELECT ` + noteColumns + `
        FROM notes
        ORDER BY created_at DESC, id DESC
        LIMIT ? OFFSET ?
    `

	return r.window(ctx, query, limit, page*limit)
}

// GetNotesForDate is GetNotes restricted to created_at within [start, end].
func (r *NoteRepository) GetNotesForDate(ctx context.Context, start, end time.Time, page, limit int) ([]*models.Note, error) {
	query := `
        SELECT ` + noteColumns + `
        FROM notes
        WHERE created_at BETWEEN ? AND ?
        ORDER BY created_at DESC, id DESC
        LIMIT ? OFFSET ?
    `

	return r.window(ctx, query, FormatTimestamp(start), FormatTimestamp(end), limit, page*limit)
}

func (r *NoteRepository) window(ctx context.Context, query string, args ...any) ([]*models.Note, error) {
	notes, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	// Row order is not guaranteed once writes interleave with the read
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})

	return notes, nil
}

// AllNotes returns every note in insertion (id) order.
func (r *NoteRepository) AllNotes(ctx context.Context) ([]*models.Note, error) {
	return r.list(ctx, `SELECT `+noteColumns+` FROM notes ORDER BY id`)
}

// GetDatesWithNotes returns the distinct UTC calendar days holding at least
// one note, newest first.
func (r *NoteRepository) GetDatesWithNotes(ctx context.Context) ([]time.Time, error) {
	query := `
        SELECT DISTINCT substr(created_at, 1, 10) AS day
        FROM notes
        ORDER BY day DESC
    `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Storage("list note dates", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, errors.Storage("scan note date", err)
		}
		d, err := time.Parse(time.DateOnly, day)
		if err != nil {
			return nil, fmt.Errorf("invalid stored date %q: %w", day, err)
		}
		dates = append(dates, d)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Storage("iterate note dates", err)
	}

	return dates, nil
}

// Count returns total number of notes
func (r *NoteRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&count)
	if err != nil {
		return 0, errors.Storage("count notes", err)
	}

	return count, nil
}

func (r *NoteRepository) list(ctx context.Context, query string, args ...any) ([]*models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Storage("list notes", err)
	}
	defer rows.Close()

	notes := []*models.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, errors.Storage("scan note", err)
		}
		notes = append(notes, note)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Storage("iterate notes", err)
	}

	return notes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*models.Note, error) {
	var (
		note             models.Note
		created, updated string
	)
	if err := row.Scan(&note.ID, &note.Content, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if note.CreatedAt, err = parseTimestamp(created); err != nil {
		return nil, err
	}
	if note.UpdatedAt, err = parseTimestamp(updated); err != nil {
		return nil, err
	}

	return &note, nil
}
