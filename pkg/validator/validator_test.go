package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirk1998/daynotes/pkg/errors"
)

func TestValidateNewNote(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"plain", "buy milk", false},
		{"surrounding spaces", "  call mom  ", false},
		{"empty", "", true},
		{"whitespace only", " \n\t ", true},
		{"too long", strings.Repeat("a", MaxContentBytes+1), true},
		{"invalid utf8", "ok\xff", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateNewNote(tt.content)
			if tt.wantErr {
				require.ErrorIs(t, err, errors.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateNoteContent_AllowsEmpty(t *testing.T) {
	assert.NoError(t, New().ValidateNoteContent(""))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, " a b ", New().SanitizeString(" a\x00 b\x00 "))
}

func TestValidatePaging(t *testing.T) {
	v := New()

	assert.NoError(t, v.ValidatePage(0))
	assert.Error(t, v.ValidatePage(-1))
	assert.NoError(t, v.ValidatePageSize(20))
	assert.Error(t, v.ValidatePageSize(0))
	assert.Error(t, v.ValidatePageSize(MaxPageSize+1))
}

func TestValidateSearchQuery(t *testing.T) {
	v := New()

	assert.NoError(t, v.ValidateSearchQuery(""))
	assert.NoError(t, v.ValidateSearchQuery(strings.Repeat("é", MaxQueryRunes)))
	assert.Error(t, v.ValidateSearchQuery(strings.Repeat("x", MaxQueryRunes+1)))
}
