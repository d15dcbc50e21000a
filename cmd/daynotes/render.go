package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amirk1998/daynotes/internal/models"
	"github.com/amirk1998/daynotes/internal/search"
	"github.com/amirk1998/daynotes/internal/service"
)

const timeLayout = "2006-01-02 15:04"

var (
	idStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	matchStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Italic(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// highlight renders content with every occurrence of query emphasised.
func highlight(content, query string) string {
	var b strings.Builder
	for _, seg := range search.Highlight(content, query) {
		if seg.IsHighlight {
			b.WriteString(matchStyle.Render(seg.Text))
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}

func formatNote(n *models.Note, query string) string {
	return fmt.Sprintf("%s %s  %s",
		idStyle.Render(fmt.Sprintf("#%-4d", n.ID)),
		timeStyle.Render(n.CreatedAt.Local().Format(timeLayout)),
		highlight(n.Content, query),
	)
}

// printState writes the visible notes and the hints that go with them.
func printState(w io.Writer, st service.State) {
	switch st.Cursor.Mode() {
	case models.ModeSearch:
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Results for %q", st.Cursor.Query)))
	case models.ModeDate:
		fmt.Fprintln(w, headerStyle.Render("Notes on "+st.Cursor.Date.Format("Mon 2006-01-02")))
	default:
		fmt.Fprintln(w, headerStyle.Render("Notes"))
	}

	if len(st.Notes) == 0 {
		fmt.Fprintln(w, noticeStyle.Render("  nothing here yet"))
	}
	for _, n := range st.Notes {
		fmt.Fprintln(w, formatNote(n, st.Cursor.Query))
	}

	if st.HasMore {
		fmt.Fprintln(w, noticeStyle.Render("  more notes available"))
	}
	if st.ShowUndo && st.Undo != nil {
		fmt.Fprintln(w, noticeStyle.Render(fmt.Sprintf("  note #%d deleted, type 'undo' to restore it", st.Undo.ID)))
	}
}
