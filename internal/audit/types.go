package audit

import "time"

type LogLevel string

const (
	LevelInfo    LogLevel = "INFO"
	LevelWarning LogLevel = "WARNING"
	LevelError   LogLevel = "ERROR"
)

// Actions recorded by the note lifecycle.
const (
	ActionNoteCreated   = "NOTE_CREATED"
	ActionNoteUpdated   = "NOTE_UPDATED"
	ActionNoteDeleted   = "NOTE_DELETED"
	ActionNoteRestored  = "NOTE_RESTORED"
	ActionUndoExpired   = "UNDO_EXPIRED"
	ActionUndoDismissed = "UNDO_DISMISSED"
	ActionNotesImported = "NOTES_IMPORTED"
	ActionBackupCreated = "BACKUP_CREATED"
	ActionRateLimited   = "NOTE_RATE_LIMITED"
)

type Event struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	NoteID    *int64    `json:"note_id,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Success   bool      `json:"success"`
	ErrorMsg  string    `json:"error_msg,omitempty"`
	Metadata  string    `json:"metadata,omitempty"`
}

type QueryFilters struct {
	StartTime *time.Time
	EndTime   *time.Time
	NoteID    *int64
	Action    string
	Level     LogLevel
	Limit     int
}
