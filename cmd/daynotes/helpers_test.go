package main

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirk1998/daynotes/internal/models"
)

func TestGenerateNotes_WithinLastThreeMonths(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewPCG(1, 2))

	notes := generateNotes(rng, 50, now)
	require.Len(t, notes, 50)

	earliest := now.AddDate(0, -3, 0)
	for _, n := range notes {
		assert.False(t, n.CreatedAt.Before(earliest), n.CreatedAt)
		assert.True(t, n.CreatedAt.Before(now), n.CreatedAt)
		assert.Equal(t, n.CreatedAt, n.UpdatedAt)
		assert.True(t, strings.HasSuffix(n.Content, "."))
		assert.NotEmpty(t, strings.TrimSpace(n.Content))
	}
}

func TestExportFile_KeepsTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.yaml")
	at := time.Date(2024, time.March, 10, 8, 30, 15, 123_000_000, time.UTC)

	notes := []*models.Note{
		{ID: 1, Content: "buy milk", CreatedAt: at, UpdatedAt: at},
		{ID: 2, Content: "multi\nline: yes", CreatedAt: at.Add(time.Hour), UpdatedAt: at.Add(2 * time.Hour)},
	}
	require.NoError(t, writeExport(path, notes, at.Add(24*time.Hour)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	doc, err := readExport(path)
	require.NoError(t, err)
	require.Len(t, doc.Notes, 2)
	assert.Equal(t, "multi\nline: yes", doc.Notes[1].Content)
	assert.True(t, doc.Notes[0].CreatedAt.Equal(at))
	assert.True(t, doc.Notes[1].UpdatedAt.Equal(at.Add(2*time.Hour)))
}

func TestReadExport_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("notes: [unclosed"), 0600))

	_, err := readExport(path)
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = parseDate("2024-03-10")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 10, d.Day())
	assert.Equal(t, time.Local, d.Location())

	_, err = parseDate("10/03/2024")
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id, err := parseID("#42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseID("0")
	assert.Error(t, err)
	_, err = parseID("abc")
	assert.Error(t, err)
}
