// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/amirk1998/daynotes/internal/database"
)

// TestKey is a 32+ character key accepted by config validation.
const TestKey = "test-key-0123456789-abcdefghijklmnop"

// DBConfig returns a connection config for a fresh database under t.TempDir().
func DBConfig(t *testing.T) database.Config {
	t.Helper()

	return database.Config{
		Path:          filepath.Join(t.TempDir(), "notes.db"),
		EncryptionKey: TestKey,
		MaxOpenConns:  1,
	}
}

// OpenDB connects to a fresh, fully migrated database and closes it on cleanup.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Connect(ctx, DBConfig(t))
	if err != nil {
		t.Fatalf("Failed to connect test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// Logger discards all output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
