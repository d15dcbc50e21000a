package validator

import (
	"strings"
	"unicode/utf8"

	"github.com/amirk1998/daynotes/pkg/errors"
)

const (
	// MaxContentBytes caps a single note.
	MaxContentBytes = 1 << 20
	MaxQueryRunes   = 256
	MaxPageSize     = 500
)

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// SanitizeString removes null bytes. Surrounding whitespace is kept because
// note content is stored verbatim.
func (v *Validator) SanitizeString(input string) string {
	return strings.ReplaceAll(input, "\x00", "")
}

// ValidateNoteContent validates note content. Empty content is allowed so an
// edit can clear a note.
func (v *Validator) ValidateNoteContent(content string) error {
	if len(content) > MaxContentBytes {
		return errors.NewAppError(errors.ErrInvalidInput, "content too long (max 1MB)", 400)
	}

	if !utf8.ValidString(content) {
		return errors.NewAppError(errors.ErrInvalidInput, "content is not valid UTF-8", 400)
	}

	return nil
}

// ValidateNewNote rejects blank content on top of ValidateNoteContent.
func (v *Validator) ValidateNewNote(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "note cannot be empty", 400)
	}
	return v.ValidateNoteContent(content)
}

func (v *Validator) ValidatePage(page int) error {
	if page < 0 {
		return errors.NewAppError(errors.ErrInvalidInput, "page cannot be negative", 400)
	}
	return nil
}

func (v *Validator) ValidatePageSize(size int) error {
	if size < 1 || size > MaxPageSize {
		return errors.NewAppError(errors.ErrInvalidInput, "page size out of range", 400)
	}
	return nil
}

func (v *Validator) ValidateSearchQuery(query string) error {
	if utf8.RuneCountInString(query) > MaxQueryRunes {
		return errors.NewAppError(errors.ErrInvalidInput, "search query too long", 400)
	}
	return nil
}
