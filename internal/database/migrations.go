package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/amirk1998/daynotes/pkg/errors"
)

// DraftSlotID keys the single compose-box draft row.
const DraftSlotID = "editor"

type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations are additive and applied in order; user_version records the
// last one that committed.
var migrations = []migration{
	{
		version: 1,
		name:    "create notes",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS notes (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                content TEXT NOT NULL,
                created_at TEXT NOT NULL,
                updated_at TEXT NOT NULL
            )`,
			`CREATE INDEX IF NOT EXISTS idx_notes_created ON notes(created_at)`,
		},
	},
	{
		version: 2,
		name:    "add draft slot",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS temp_content (
                id TEXT PRIMARY KEY,
                content TEXT NOT NULL DEFAULT ''
            )`,
			`INSERT OR IGNORE INTO temp_content (id, content) VALUES ('` + DraftSlotID + `', '')`,
		},
	},
	{
		version: 3,
		name:    "add activity log",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS activity_log (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                timestamp DATETIME NOT NULL,
                level TEXT NOT NULL,
                note_id INTEGER,
                action TEXT NOT NULL,
                resource TEXT NOT NULL,
                success BOOLEAN NOT NULL,
                error_msg TEXT,
                metadata TEXT
            )`,
			`CREATE INDEX IF NOT EXISTS idx_activity_timestamp ON activity_log(timestamp)`,
			`CREATE INDEX IF NOT EXISTS idx_activity_note_id ON activity_log(note_id)`,
			`CREATE INDEX IF NOT EXISTS idx_activity_action ON activity_log(action)`,
		},
	},
}

// LatestVersion is the schema version Migrate brings a database to.
func LatestVersion() int {
	return migrations[len(migrations)-1].version
}

// Migrate brings the schema up to date and makes sure the draft slot exists.
func Migrate(ctx context.Context, db *sql.DB) error {
	if err := applyMigrations(ctx, db, migrations); err != nil {
		return err
	}
	return ensureDraftSlot(ctx, db)
}

// SchemaVersion reports the committed schema version.
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read user_version: %w", err)
	}
	return version, nil
}

func applyMigrations(ctx context.Context, db *sql.DB, steps []migration) error {
	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	tm := NewTransactionManager(db)
	for _, m := range steps {
		if m.version <= current {
			continue
		}

		err := tm.Execute(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.stmts {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			// PRAGMA does not accept bound parameters
			_, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.version))
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: v%d (%s): %w", errors.ErrMigrationFailed, m.version, m.name, err)
		}
		current = m.version
	}

	return nil
}

func ensureDraftSlot(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO temp_content (id, content) VALUES (?, '')`,
		DraftSlotID,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize draft slot: %w", err)
	}
	return nil
}
