package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/amirk1998/daynotes/internal/audit"
	"github.com/amirk1998/daynotes/internal/models"
	"github.com/amirk1998/daynotes/internal/ratelimit"
	"github.com/amirk1998/daynotes/internal/search"
	"github.com/amirk1998/daynotes/pkg/errors"
	"github.com/amirk1998/daynotes/pkg/validator"
)

const draftKey = "draft"

// NoteStore is the persistence the lifecycle needs. repository.NoteRepository
// implements it.
type NoteStore interface {
	Create(ctx context.Context, note *models.Note) error
	Update(ctx context.Context, id int64, content string) error
	Delete(ctx context.Context, id int64) (bool, error)
	GetNotes(ctx context.Context, page, limit int) ([]*models.Note, error)
	GetNotesForDate(ctx context.Context, start, end time.Time, page, limit int) ([]*models.Note, error)
	GetDatesWithNotes(ctx context.Context) ([]time.Time, error)
	AllNotes(ctx context.Context) ([]*models.Note, error)
}

// DraftStore holds the single unsaved composition.
type DraftStore interface {
	Save(ctx context.Context, content string)
	Get(ctx context.Context) string
	Clear(ctx context.Context)
}

type Options struct {
	Store       NoteStore
	Drafts      DraftStore
	Engine      *search.Engine // defaults to an engine over Store
	Audit       *audit.Logger  // optional
	RateLimiter *ratelimit.RateLimiter
	Logger      *slog.Logger

	PageSize     int
	UndoTTL      time.Duration
	EditDebounce time.Duration
}

// State is what a presentation layer renders.
type State struct {
	Notes    []*models.Note
	HasMore  bool
	ShowUndo bool
	Undo     *models.Note
	Cursor   models.Cursor
}

// NoteService owns the visible note list, the query cursor and the undo slot.
// Every operation holds mu for its whole duration, store I/O included, so
// operations never interleave. Timer callbacks take the same lock.
type NoteService struct {
	store       NoteStore
	drafts      DraftStore
	engine      *search.Engine
	auditLogger *audit.Logger
	rateLimiter *ratelimit.RateLimiter
	validator   *validator.Validator
	logger      *slog.Logger

	pageSize int
	undoTTL  time.Duration
	edits    *Debouncer

	mu        sync.Mutex
	notes     []*models.Note
	hasMore   bool
	cursor    models.Cursor
	undo      *models.Note
	showUndo  bool
	undoTimer *time.Timer

	subs    map[int]chan State
	nextSub int
}

// NewNoteService creates a new note service
func NewNoteService(opts Options) (*NoteService, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: note store is required", errors.ErrInvalidInput)
	}
	if opts.Drafts == nil {
		return nil, fmt.Errorf("%w: draft store is required", errors.ErrInvalidInput)
	}
	if opts.Engine == nil {
		opts.Engine = search.NewEngine(opts.Store)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.UndoTTL <= 0 {
		opts.UndoTTL = 5 * time.Second
	}
	if opts.EditDebounce < 0 {
		opts.EditDebounce = 0
	}

	return &NoteService{
		store:       opts.Store,
		drafts:      opts.Drafts,
		engine:      opts.Engine,
		auditLogger: opts.Audit,
		rateLimiter: opts.RateLimiter,
		validator:   validator.New(),
		logger:      opts.Logger.With("component", "notes"),
		pageSize:    opts.PageSize,
		undoTTL:     opts.UndoTTL,
		edits:       NewDebouncer(opts.EditDebounce),
		subs:        make(map[int]chan State),
	}, nil
}

// LoadNotes fetches one page, newest first, optionally limited to the local
// calendar day of date. Page 0 replaces the visible notes; later pages append.
func (s *NoteService) LoadNotes(ctx context.Context, page int, date *time.Time) error {
	if err := s.validator.ValidatePage(page); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx, page, date); err != nil {
		return err
	}
	s.publishLocked()
	return nil
}

// LoadMore fetches the page after the current one. It does nothing while a
// search is shown or when the last page was short.
func (s *NoteService) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor.Mode() == models.ModeSearch || !s.hasMore {
		return nil
	}

	if err := s.loadLocked(ctx, s.cursor.Page+1, s.cursor.Date); err != nil {
		return err
	}
	s.publishLocked()
	return nil
}

func (s *NoteService) fetchWindow(ctx context.Context, page int, date *time.Time) ([]*models.Note, error) {
	if date == nil {
		return s.store.GetNotes(ctx, page, s.pageSize)
	}
	start, end := models.DayBounds(*date)
	return s.store.GetNotesForDate(ctx, start, end, page, s.pageSize)
}

func (s *NoteService) applyWindow(window []*models.Note, page int, date *time.Time) {
	if page == 0 {
		s.notes = window
	} else {
		s.notes = append(s.notes, window...)
	}
	s.hasMore = len(window) == s.pageSize

	cursor := models.Cursor{Page: page}
	if date != nil {
		d := *date
		cursor.Date = &d
	}
	s.cursor = cursor
}

func (s *NoteService) loadLocked(ctx context.Context, page int, date *time.Time) error {
	window, err := s.fetchWindow(ctx, page, date)
	if err != nil {
		s.logger.Error("failed to load notes", "page", page, "error", err)
		return fmt.Errorf("failed to load notes: %w", err)
	}
	s.applyWindow(window, page, date)
	s.logger.Debug("notes loaded", "page", page, "count", len(window), "has_more", s.hasMore)
	return nil
}

// CreateNote stores a new note and shows the first unfiltered page.
func (s *NoteService) CreateNote(ctx context.Context, content string) (*models.Note, error) {
	if err := s.checkLimit("create"); err != nil {
		return nil, err
	}

	content = s.validator.SanitizeString(content)
	if err := s.validator.ValidateNewNote(content); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	note, err := s.createLocked(ctx, &models.Note{Content: content})
	if err != nil {
		return nil, err
	}
	s.record(audit.LevelInfo, audit.ActionNoteCreated, &note.ID, nil, "")

	if err := s.loadLocked(ctx, 0, nil); err != nil {
		return note, err
	}
	s.publishLocked()
	return note, nil
}

func (s *NoteService) createLocked(ctx context.Context, note *models.Note) (*models.Note, error) {
	if err := s.store.Create(ctx, note); err != nil {
		s.logger.Error("failed to create note", "error", err)
		s.record(audit.LevelError, audit.ActionNoteCreated, nil, err, "")
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

// SearchNotes replaces the visible notes with ranked matches for query and
// disables pagination. An empty query goes back to the first page.
func (s *NoteService) SearchNotes(ctx context.Context, query string) error {
	if query == "" {
		return s.LoadNotes(ctx, 0, nil)
	}
	if err := s.validator.ValidateSearchQuery(query); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := s.engine.Search(ctx, query)
	if err != nil {
		s.logger.Error("search failed", "query", query, "error", err)
		return fmt.Errorf("failed to search notes: %w", err)
	}

	s.notes = results
	s.hasMore = false
	s.cursor = models.Cursor{Query: query}
	s.publishLocked()
	return nil
}

// UpdateNote replaces a note's content and shows the first unfiltered page.
func (s *NoteService) UpdateNote(ctx context.Context, id int64, content string) error {
	if err := s.checkLimit("update"); err != nil {
		return err
	}

	content = s.validator.SanitizeString(content)
	if err := s.validator.ValidateNoteContent(content); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Update(ctx, id, content); err != nil {
		s.record(audit.LevelError, audit.ActionNoteUpdated, &id, err, "")
		return fmt.Errorf("failed to update note: %w", err)
	}
	s.record(audit.LevelInfo, audit.ActionNoteUpdated, &id, nil, "")

	if err := s.loadLocked(ctx, 0, nil); err != nil {
		return err
	}
	s.publishLocked()
	return nil
}

// EditNote schedules UpdateNote after the edit debounce. A newer edit of the
// same note replaces this one.
func (s *NoteService) EditNote(id int64, content string) {
	s.edits.Trigger("note:"+strconv.FormatInt(id, 10), func() {
		if err := s.UpdateNote(context.Background(), id, content); err != nil {
			s.logger.Error("debounced edit failed", "note_id", id, "error", err)
		}
	})
}

// DeleteNote removes a visible note and keeps a copy in the undo slot for the
// undo TTL. Ids that are not visible are ignored. On failure the visible
// notes and the undo slot are left as they were.
func (s *NoteService) DeleteNote(ctx context.Context, id int64) error {
	if err := s.checkLimit("delete"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var target *models.Note
	for _, n := range s.notes {
		if n.ID == id {
			target = n
			break
		}
	}
	if target == nil {
		return nil
	}

	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete note", "note_id", id, "error", err)
		s.record(audit.LevelError, audit.ActionNoteDeleted, &id, err, "")
		return fmt.Errorf("failed to delete note: %w", err)
	}

	window, err := s.fetchWindow(ctx, 0, nil)
	if err != nil {
		s.logger.Error("failed to reload after delete", "note_id", id, "error", err)
		s.record(audit.LevelError, audit.ActionNoteDeleted, &id, err, "reload")
		return fmt.Errorf("failed to load notes: %w", err)
	}
	s.applyWindow(window, 0, nil)

	if removed {
		s.undo = target.Clone()
		s.showUndo = true
		s.armUndoLocked(id)
		s.record(audit.LevelInfo, audit.ActionNoteDeleted, &id, nil, "")
	}

	s.publishLocked()
	return nil
}

func (s *NoteService) armUndoLocked(id int64) {
	if s.undoTimer != nil {
		s.undoTimer.Stop()
	}
	s.undoTimer = time.AfterFunc(s.undoTTL, func() { s.expireUndo(id) })
}

// expireUndo clears the slot only if it still holds id, so a stale timer
// cannot drop a newer deletion.
func (s *NoteService) expireUndo(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.undo == nil || s.undo.ID != id {
		return
	}
	s.undo = nil
	s.showUndo = false
	s.undoTimer = nil
	s.record(audit.LevelInfo, audit.ActionUndoExpired, &id, nil, "")
	s.publishLocked()
}

// UndoDelete re-creates the note in the undo slot with its original
// timestamps. The restored note gets a new id. It returns nil when the slot
// is empty.
func (s *NoteService) UndoDelete(ctx context.Context) (*models.Note, error) {
	if err := s.checkLimit("undo"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.undo == nil {
		return nil, nil
	}

	deletedID := s.undo.ID
	restored, err := s.createLocked(ctx, &models.Note{
		Content:   s.undo.Content,
		CreatedAt: s.undo.CreatedAt,
		UpdatedAt: s.undo.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}

	s.clearUndoLocked()
	s.record(audit.LevelInfo, audit.ActionNoteRestored, &restored.ID, nil,
		"deleted_id="+strconv.FormatInt(deletedID, 10))

	if err := s.loadLocked(ctx, 0, nil); err != nil {
		s.publishLocked()
		return restored, err
	}
	s.publishLocked()
	return restored, nil
}

// ClearUndo dismisses the undo offer. Calling it with an empty slot is a no-op.
func (s *NoteService) ClearUndo() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.undo == nil {
		return
	}
	id := s.undo.ID
	s.clearUndoLocked()
	s.record(audit.LevelInfo, audit.ActionUndoDismissed, &id, nil, "")
	s.publishLocked()
}

func (s *NoteService) clearUndoLocked() {
	if s.undoTimer != nil {
		s.undoTimer.Stop()
		s.undoTimer = nil
	}
	s.undo = nil
	s.showUndo = false
}

// DatesWithNotes lists the calendar days that have notes, newest first.
func (s *NoteService) DatesWithNotes(ctx context.Context) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.GetDatesWithNotes(ctx)
}

// ImportNotes stores notes with their original timestamps under new ids and
// shows the first page. Blank notes are skipped.
func (s *NoteService) ImportNotes(ctx context.Context, notes []*models.Note) (int, error) {
	if err := s.checkLimit("import"); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	imported := 0
	for _, n := range notes {
		content := s.validator.SanitizeString(n.Content)
		if err := s.validator.ValidateNewNote(content); err != nil {
			s.logger.Warn("skipping note on import", "id", n.ID, "error", err)
			continue
		}
		if _, err := s.createLocked(ctx, &models.Note{
			Content:   content,
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
		}); err != nil {
			return imported, err
		}
		imported++
	}
	s.record(audit.LevelInfo, audit.ActionNotesImported, nil, nil, fmt.Sprintf("count=%d", imported))

	if err := s.loadLocked(ctx, 0, nil); err != nil {
		return imported, err
	}
	s.publishLocked()
	return imported, nil
}

// SaveDraft schedules a draft save after the edit debounce.
func (s *NoteService) SaveDraft(content string) {
	s.edits.Trigger(draftKey, func() {
		s.drafts.Save(context.Background(), content)
	})
}

// Draft returns the last saved draft.
func (s *NoteService) Draft(ctx context.Context) string {
	return s.drafts.Get(ctx)
}

// DiscardDraft drops a pending save and empties the draft slot.
func (s *NoteService) DiscardDraft(ctx context.Context) {
	s.edits.Cancel(draftKey)
	s.drafts.Clear(ctx)
}

// SubmitDraft turns content into a note and empties the draft slot.
func (s *NoteService) SubmitDraft(ctx context.Context, content string) (*models.Note, error) {
	note, err := s.CreateNote(ctx, content)
	if note == nil {
		return nil, err
	}
	s.DiscardDraft(ctx)
	return note, err
}

// Snapshot returns a copy of the current state.
func (s *NoteService) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *NoteService) snapshotLocked() State {
	notes := make([]*models.Note, len(s.notes))
	for i, n := range s.notes {
		notes[i] = n.Clone()
	}

	cursor := s.cursor
	if cursor.Date != nil {
		d := *cursor.Date
		cursor.Date = &d
	}

	return State{
		Notes:    notes,
		HasMore:  s.hasMore,
		ShowUndo: s.showUndo,
		Undo:     s.undo.Clone(),
		Cursor:   cursor,
	}
}

// Subscribe returns a channel that receives a snapshot after every state
// change. Sends never block: a full channel misses that update. The returned
// func unsubscribes and closes the channel.
func (s *NoteService) Subscribe(buffer int) (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan State, buffer)
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}
		})
	}
}

func (s *NoteService) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	state := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- state:
		default:
		}
	}
}

// Flush runs pending debounced edits and draft saves now.
func (s *NoteService) Flush() {
	s.edits.Flush()
}

// Close flushes pending edits, stops the undo timer and closes subscriber
// channels. The undo slot itself is left in place.
func (s *NoteService) Close() {
	s.Flush()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.undoTimer != nil {
		s.undoTimer.Stop()
		s.undoTimer = nil
	}
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *NoteService) checkLimit(op string) error {
	key := ratelimit.Key(op)
	if err := s.rateLimiter.CheckLimit(key); err != nil {
		s.record(audit.LevelWarning, audit.ActionRateLimited, nil, err, "op="+op)
		return err
	}
	return nil
}

func (s *NoteService) record(level audit.LogLevel, action string, noteID *int64, err error, metadata string) {
	if s.auditLogger == nil {
		return
	}

	event := &audit.Event{
		Level:    level,
		NoteID:   noteID,
		Action:   action,
		Resource: "notes",
		Success:  err == nil,
		Metadata: metadata,
	}
	if err != nil {
		event.ErrorMsg = err.Error()
	}

	if logErr := s.auditLogger.Log(event); logErr != nil {
		s.logger.Warn("failed to record activity", "action", action, "error", logErr)
	}
}
