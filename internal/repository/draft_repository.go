package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/amirk1998/daynotes/internal/database"
)

// DraftRepository persists the single compose-box draft. Losing a draft is
// not fatal, so every failure is logged and absorbed here.
type DraftRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewDraftRepository(db *sql.DB, logger *slog.Logger) *DraftRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &DraftRepository{db: db, logger: logger.With("component", "draft_repository")}
}

// Save overwrites the draft.
func (r *DraftRepository) Save(ctx context.Context, content string) {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO temp_content (id, content) VALUES (?, ?)`,
		database.DraftSlotID, content,
	)
	if err != nil {
		r.logger.Error("failed to save draft", "error", err)
	}
}

// Get returns the draft, or "" when there is none or it cannot be read.
func (r *DraftRepository) Get(ctx context.Context) string {
	var content string
	err := r.db.QueryRowContext(ctx,
		`SELECT content FROM temp_content WHERE id = ?`,
		database.DraftSlotID,
	).Scan(&content)
	if err != nil {
		if err != sql.ErrNoRows {
			r.logger.Error("failed to read draft", "error", err)
		}
		return ""
	}
	return content
}

// Clear resets the draft to empty.
func (r *DraftRepository) Clear(ctx context.Context) {
	r.Save(ctx, "")
}
