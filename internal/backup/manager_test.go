package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirk1998/daynotes/internal/testutil"
	"github.com/amirk1998/daynotes/pkg/errors"
)

func newTestManager(t *testing.T, passphrase string) *Manager {
	t.Helper()

	m, err := NewManager(testutil.OpenDB(t), t.TempDir(), passphrase, 30, testutil.Logger())
	require.NoError(t, err)
	return m
}

func TestNewManager_RequiresPassphrase(t *testing.T) {
	_, err := NewManager(nil, t.TempDir(), "", 30, testutil.Logger())
	require.ErrorIs(t, err, errors.ErrBackupFailed)
}

func TestSealUnseal_RoundTrip(t *testing.T) {
	m := newTestManager(t, "correct horse battery staple")

	payload := []byte("SQLite format 3\x00 with some pages")
	sealed, err := m.seal(payload)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "SQLite format")

	plain, err := m.unseal(sealed)
	require.NoError(t, err)
	assert.Equal(t, payload, plain)

	other := &Manager{passphrase: "wrong passphrase"}
	_, err = other.unseal(sealed)
	require.ErrorIs(t, err, errors.ErrDecryptionFailed)
}

func TestCreateVerifyRestore(t *testing.T) {
	m := newTestManager(t, "correct horse battery staple")
	ctx := context.Background()

	_, err := m.db.ExecContext(ctx,
		`INSERT INTO notes (content, created_at, updated_at) VALUES ('buy milk', '2024-01-01T10:00:00.000Z', '2024-01-01T10:00:00.000Z')`)
	require.NoError(t, err)

	path, err := m.CreateBackup(ctx)
	require.NoError(t, err)
	require.NoError(t, m.VerifyBackup(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	backups, err := m.ListBackups()
	require.NoError(t, err)
	assert.Equal(t, []string{path}, backups)

	dst := filepath.Join(t.TempDir(), "restored", "daynotes.db")
	require.NoError(t, m.RestoreBackup(path, dst))

	restored, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Positive(t, restored.Size())
}

func TestRestore_RejectsTamperedBackup(t *testing.T) {
	m := newTestManager(t, "correct horse battery staple")

	path, err := m.CreateBackup(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0600))

	err = m.RestoreBackup(path, filepath.Join(t.TempDir(), "out.db"))
	require.ErrorIs(t, err, errors.ErrRestoreFailed)
}

func TestCleanOldBackups(t *testing.T) {
	m := newTestManager(t, "correct horse battery staple")
	ctx := context.Background()

	oldPath, err := m.CreateBackup(ctx)
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(time.Second) }
	newPath, err := m.CreateBackup(ctx)
	require.NoError(t, err)

	past := time.Now().AddDate(0, 0, -31)
	require.NoError(t, os.Chtimes(oldPath, past, past))

	// unrelated files are left alone
	stray := filepath.Join(m.backupDir, "notes.txt")
	require.NoError(t, os.WriteFile(stray, []byte("x"), 0600))
	require.NoError(t, os.Chtimes(stray, past, past))

	deleted, err := m.CleanOldBackups()
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	assert.NoFileExists(t, oldPath)
	assert.NoFileExists(t, oldPath+checksumSuffix)
	assert.FileExists(t, newPath)
	assert.FileExists(t, stray)
}
