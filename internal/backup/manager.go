package backup

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/amirk1998/daynotes/internal/security"
	"github.com/amirk1998/daynotes/pkg/errors"
)

const (
	filePrefix     = "daynotes_"
	fileSuffix     = ".db.gz.enc"
	checksumSuffix = ".sha256"
)

// Manager writes compressed, passphrase-encrypted snapshots of the note
// database. A backup file is salt || AES-GCM(gzip(VACUUM INTO copy)).
type Manager struct {
	db            *sql.DB
	backupDir     string
	passphrase    string
	retentionDays int
	logger        *slog.Logger
	now           func() time.Time
}

// NewManager creates a new backup manager
func NewManager(db *sql.DB, backupDir, passphrase string, retentionDays int, logger *slog.Logger) (*Manager, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("%w: BACKUP_PASSPHRASE is not set", errors.ErrBackupFailed)
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Ensure backup directory exists with secure permissions
	if err := os.MkdirAll(backupDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	return &Manager{
		db:            db,
		backupDir:     backupDir,
		passphrase:    passphrase,
		retentionDays: retentionDays,
		logger:        logger.With("component", "backup"),
		now:           time.Now,
	}, nil
}

// CreateBackup snapshots the database and returns the path of the encrypted
// backup file.
func (m *Manager) CreateBackup(ctx context.Context) (string, error) {
	stamp := m.now().UTC().Format("20060102_150405.000")
	backupPath := filepath.Join(m.backupDir, filePrefix+stamp+fileSuffix)

	snapshotPath := filepath.Join(m.backupDir, ".snapshot_"+stamp+".db")
	defer os.Remove(snapshotPath)

	vacuumQuery := fmt.Sprintf("VACUUM INTO '%s'", strings.ReplaceAll(snapshotPath, "'", "''"))
	if _, err := m.db.ExecContext(ctx, vacuumQuery); err != nil {
		return "", fmt.Errorf("%w: snapshot: %w", errors.ErrBackupFailed, err)
	}

	plain, err := os.ReadFile(snapshotPath)
	if err != nil {
		return "", fmt.Errorf("%w: read snapshot: %w", errors.ErrBackupFailed, err)
	}

	sealed, err := m.seal(plain)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrBackupFailed, err)
	}

	if err := writeFile(backupPath, sealed); err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrBackupFailed, err)
	}

	sum := sha256.Sum256(sealed)
	if err := writeFile(backupPath+checksumSuffix, []byte(hex.EncodeToString(sum[:]))); err != nil {
		return "", fmt.Errorf("%w: checksum: %w", errors.ErrBackupFailed, err)
	}

	m.logger.Info("backup created", "path", backupPath, "bytes", len(sealed))
	return backupPath, nil
}

// seal compresses then encrypts data under a fresh salt.
func (m *Manager) seal(data []byte) ([]byte, error) {
	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	if _, err := gz.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress backup: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress backup: %w", err)
	}

	salt, err := security.NewSalt()
	if err != nil {
		return nil, err
	}

	enc, err := security.NewPassphraseEncryptor(m.passphrase, salt)
	if err != nil {
		return nil, err
	}

	ciphertext, err := enc.EncryptBytes(compressed.Bytes())
	if err != nil {
		return nil, err
	}

	return append(salt, ciphertext...), nil
}

// unseal reverses seal.
func (m *Manager) unseal(sealed []byte) ([]byte, error) {
	if len(sealed) <= security.SaltLength {
		return nil, fmt.Errorf("backup file is truncated")
	}

	enc, err := security.NewPassphraseEncryptor(m.passphrase, sealed[:security.SaltLength])
	if err != nil {
		return nil, err
	}

	compressed, err := enc.DecryptBytes(sealed[security.SaltLength:])
	if err != nil {
		return nil, err
	}

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress backup: %w", err)
	}
	defer gz.Close()

	return io.ReadAll(gz)
}

// VerifyBackup verifies backup integrity
func (m *Manager) VerifyBackup(backupPath string) error {
	storedChecksum, err := os.ReadFile(backupPath + checksumSuffix)
	if err != nil {
		return fmt.Errorf("failed to read checksum file: %w", err)
	}

	data, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("failed to read backup file: %w", err)
	}

	sum := sha256.Sum256(data)
	if hex.EncodeToString(sum[:]) != strings.TrimSpace(string(storedChecksum)) {
		return fmt.Errorf("checksum mismatch: backup file may be corrupted")
	}

	return nil
}

// RestoreBackup verifies and decrypts backupPath into dstPath. The target is
// replaced atomically; it must not be the database currently open.
func (m *Manager) RestoreBackup(backupPath, dstPath string) error {
	if err := m.VerifyBackup(backupPath); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrRestoreFailed, err)
	}

	sealed, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrRestoreFailed, err)
	}

	plain, err := m.unseal(sealed)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrRestoreFailed, err)
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0700); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrRestoreFailed, err)
	}

	if err := writeFile(dstPath, plain); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrRestoreFailed, err)
	}

	m.logger.Info("backup restored", "from", backupPath, "to", dstPath)
	return nil
}

// ListBackups returns backup files, newest first.
func (m *Manager) ListBackups() ([]string, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if isBackupFile(entry.Name()) {
			paths = append(paths, filepath.Join(m.backupDir, entry.Name()))
		}
	}

	// names embed a sortable UTC timestamp
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}

// CleanOldBackups removes backups older than the retention window together
// with their checksum files.
func (m *Manager) CleanOldBackups() (int, error) {
	cutoffTime := m.now().AddDate(0, 0, -m.retentionDays)

	paths, err := m.ListBackups()
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoffTime) {
			continue
		}

		if err := os.Remove(path); err != nil {
			m.logger.Warn("failed to delete old backup", "path", path, "error", err)
			continue
		}
		_ = os.Remove(path + checksumSuffix)
		deleted++
	}

	if deleted > 0 {
		m.logger.Info("cleaned old backups", "count", deleted)
	}

	return deleted, nil
}

// StartAutomatedBackups creates a backup and prunes old ones every interval
// until ctx is done.
func (m *Manager) StartAutomatedBackups(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.Info("automated backups started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("automated backups stopped")
			return
		case <-ticker.C:
			if _, err := m.CreateBackup(ctx); err != nil {
				m.logger.Error("scheduled backup failed", "error", err)
			}

			if _, err := m.CleanOldBackups(); err != nil {
				m.logger.Error("backup cleanup failed", "error", err)
			}
		}
	}
}

func isBackupFile(name string) bool {
	return strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileSuffix)
}

// writeFile replaces path atomically and restricts it to the owner.
// atomic.WriteFile keeps the mode of an existing file but not for new ones.
func writeFile(path string, data []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return os.Chmod(path, 0600)
}
