package models

import (
	"time"
)

type Note struct {
	ID        int64     `json:"id" yaml:"id"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Clone returns an independent copy of the note.
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}

// Export is the document written by `daynotes export` and read back by import.
type Export struct {
	ExportedAt time.Time `yaml:"exported_at"`
	Notes      []*Note   `yaml:"notes"`
}
