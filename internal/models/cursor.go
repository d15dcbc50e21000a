package models

import "time"

// CursorMode identifies which filter is shaping the visible notes.
type CursorMode int

const (
	ModePaged CursorMode = iota
	ModeDate
	ModeSearch
)

func (m CursorMode) String() string {
	switch m {
	case ModeDate:
		return "date"
	case ModeSearch:
		return "search"
	default:
		return "paged"
	}
}

// Cursor is the current view window into the note collection. It is never
// persisted. Search disables pagination, so Page is meaningless while Query
// is set.
type Cursor struct {
	Page  int
	Date  *time.Time
	Query string
}

// Mode reports the active filter. A search query wins over a date.
func (c Cursor) Mode() CursorMode {
	switch {
	case c.Query != "":
		return ModeSearch
	case c.Date != nil:
		return ModeDate
	default:
		return ModePaged
	}
}

// DayBounds returns the first and last instant of the calendar day holding t,
// in t's own location. Both bounds are inclusive.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}
