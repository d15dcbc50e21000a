package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger records lifecycle events to the activity_log table and mirrors them
// as JSON lines to a file. The table is created by database.Migrate.
type Logger struct {
	db         *sql.DB
	logFile    *os.File
	slog       *slog.Logger
	asyncMode  bool
	eventQueue chan *Event
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// NewLogger creates a new activity logger
func NewLogger(db *sql.DB, logFilePath string, asyncMode bool, logger *slog.Logger) (*Logger, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(logFilePath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logFile, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	al := &Logger{
		db:        db,
		logFile:   logFile,
		slog:      logger.With("component", "audit"),
		asyncMode: asyncMode,
		ctx:       ctx,
		cancel:    cancel,
	}

	if asyncMode {
		al.eventQueue = make(chan *Event, 1000)
		al.startAsyncLogger()
	}

	return al, nil
}

// Log records an event. In async mode it only enqueues and fails when the
// queue is full.
func (al *Logger) Log(event *Event) error {
	if al == nil {
		return nil
	}
	event.Timestamp = time.Now()

	al.mu.RLock()
	defer al.mu.RUnlock()
	if al.closed {
		return fmt.Errorf("activity log is closed")
	}

	if al.asyncMode {
		select {
		case al.eventQueue <- event:
			return nil
		default:
			return fmt.Errorf("activity log queue is full")
		}
	}

	return al.writeEvent(event)
}

// writeEvent writes event to database and file
func (al *Logger) writeEvent(event *Event) error {
	query := `
        INSERT INTO activity_log (
            timestamp, level, note_id, action, resource,
            success, error_msg, metadata
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `

	result, err := al.db.Exec(query,
		event.Timestamp,
		event.Level,
		event.NoteID,
		event.Action,
		event.Resource,
		event.Success,
		event.ErrorMsg,
		event.Metadata,
	)

	if err != nil {
		// The file copy is still written
		al.slog.Error("failed to write activity to database", "action", event.Action, "error", err)
	} else {
		event.ID, _ = result.LastInsertId()
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := al.logFile.Write(append(jsonData, '\n')); err != nil {
		return fmt.Errorf("failed to write to log file: %w", err)
	}

	return nil
}

func (al *Logger) startAsyncLogger() {
	al.wg.Add(1)
	go func() {
		defer al.wg.Done()
		for {
			select {
			case event := <-al.eventQueue:
				if err := al.writeEvent(event); err != nil {
					al.slog.Error("failed to write activity event", "error", err)
				}
			case <-al.ctx.Done():
				// Drain remaining events
				for len(al.eventQueue) > 0 {
					al.writeEvent(<-al.eventQueue)
				}
				return
			}
		}
	}()
}

// QueryLogs queries the activity log, newest first.
func (al *Logger) QueryLogs(ctx context.Context, filters QueryFilters) ([]*Event, error) {
	query := `
        SELECT id, timestamp, level, note_id, action, resource,
               success, error_msg, metadata
        FROM activity_log
        WHERE 1=1
    `

	args := []any{}

	if filters.StartTime != nil {
		query += " AND timestamp >= ?"
		args = append(args, *filters.StartTime)
	}

	if filters.EndTime != nil {
		query += " AND timestamp <= ?"
		args = append(args, *filters.EndTime)
	}

	if filters.NoteID != nil {
		query += " AND note_id = ?"
		args = append(args, *filters.NoteID)
	}

	if filters.Action != "" {
		query += " AND action = ?"
		args = append(args, filters.Action)
	}

	if filters.Level != "" {
		query += " AND level = ?"
		args = append(args, filters.Level)
	}

	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	if filters.Limit <= 0 {
		filters.Limit = 100
	}
	args = append(args, filters.Limit)

	rows, err := al.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity log: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		event := &Event{}
		var errorMsg, metadata sql.NullString
		err := rows.Scan(
			&event.ID,
			&event.Timestamp,
			&event.Level,
			&event.NoteID,
			&event.Action,
			&event.Resource,
			&event.Success,
			&errorMsg,
			&metadata,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity event: %w", err)
		}
		event.ErrorMsg = errorMsg.String
		event.Metadata = metadata.String
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity log: %w", err)
	}

	return events, nil
}

// Close flushes queued events and closes the log file.
func (al *Logger) Close() error {
	al.mu.Lock()
	if al.closed {
		al.mu.Unlock()
		return nil
	}
	al.closed = true
	al.mu.Unlock()

	if al.asyncMode {
		al.cancel()
		al.wg.Wait()
	}

	return al.logFile.Close()
}
