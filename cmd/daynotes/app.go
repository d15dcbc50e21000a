package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/amirk1998/daynotes/internal/audit"
	"github.com/amirk1998/daynotes/internal/backup"
	"github.com/amirk1998/daynotes/internal/config"
	"github.com/amirk1998/daynotes/internal/database"
	"github.com/amirk1998/daynotes/internal/ratelimit"
	"github.com/amirk1998/daynotes/internal/repository"
	"github.com/amirk1998/daynotes/internal/service"
	"github.com/amirk1998/daynotes/pkg/errors"
)

type Application struct {
	config      *config.Config
	db          *sql.DB
	notes       *repository.NoteRepository
	service     *service.NoteService
	auditLogger *audit.Logger
	backupMgr   *backup.Manager
	rateLimiter *ratelimit.RateLimiter
	logger      *slog.Logger
}

// openApplication connects the encrypted store, migrates it and wires every
// component. The caller must call cleanup.
func openApplication(ctx context.Context, cfg *config.Config) (*Application, error) {
	logger := slog.Default()

	dbConfig := database.Config{
		Path:          cfg.DBPath,
		EncryptionKey: cfg.DBEncryptionKey,
		MaxOpenConns:  cfg.DBMaxOpenConns,
		MaxIdleConns:  2,
		MaxLifetime:   1 * time.Hour,
		MaxIdleTime:   10 * time.Minute,
	}

	db, err := database.Connect(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	auditLogger, err := audit.NewLogger(db, cfg.ActivityLogPath, cfg.ActivityAsyncMode, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize activity log: %w", err)
	}

	rateLimiter := ratelimit.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	noteRepo := repository.NewNoteRepository(db, logger)

	noteService, err := service.NewNoteService(service.Options{
		Store:        noteRepo,
		Drafts:       repository.NewDraftRepository(db, logger),
		Audit:        auditLogger,
		RateLimiter:  rateLimiter,
		Logger:       logger,
		PageSize:     cfg.PageSize,
		UndoTTL:      cfg.UndoTTL,
		EditDebounce: cfg.EditDebounce,
	})
	if err != nil {
		auditLogger.Close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize note service: %w", err)
	}

	app := &Application{
		config:      cfg,
		db:          db,
		notes:       noteRepo,
		service:     noteService,
		auditLogger: auditLogger,
		rateLimiter: rateLimiter,
		logger:      logger,
	}

	// Backups stay disabled until a passphrase is configured
	if cfg.BackupPassphrase != "" {
		app.backupMgr, err = backup.NewManager(db, cfg.BackupDir, cfg.BackupPassphrase, cfg.BackupRetentionDays, logger)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to initialize backup manager: %w", err)
		}
	}

	logger.Debug("application initialized", "db", cfg.DBPath, "page_size", cfg.PageSize)
	return app, nil
}

func (app *Application) backups() (*backup.Manager, error) {
	if app.backupMgr == nil {
		return nil, fmt.Errorf("%w: set BACKUP_PASSPHRASE to enable backups", errors.ErrBackupFailed)
	}
	return app.backupMgr, nil
}

// cleanup flushes pending edits and closes everything in reverse order.
func (app *Application) cleanup() {
	if app.service != nil {
		app.service.Close()
	}

	if app.auditLogger != nil {
		if err := app.auditLogger.Close(); err != nil {
			app.logger.Warn("failed to close activity log", "error", err)
		}
	}

	if app.db != nil {
		app.db.Close()
	}
}

// withApp opens the application for the duration of a command.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *Application) error) error {
	ctx := cmd.Context()

	app, err := openApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.cleanup()

	return fn(ctx, app)
}
