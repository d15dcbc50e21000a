package search

import (
	"sort"
	"strings"

	"github.com/coregx/ahocorasick"
)

// Segment is a run of text that either matches the query or does not.
type Segment struct {
	Text        string
	IsHighlight bool
}

// Highlight splits text into segments, flagging every case-insensitive,
// non-overlapping occurrence of query. A blank query yields one plain segment.
func Highlight(text, query string) []Segment {
	plain := []Segment{{Text: text}}
	if strings.TrimSpace(query) == "" || text == "" {
		return plain
	}

	haystack := strings.ToLower(text)
	// Offsets are only valid when lower-casing kept every byte in place
	if len(haystack) != len(text) {
		return plain
	}

	automaton, err := ahocorasick.NewBuilder().
		AddStrings([]string{strings.ToLower(query)}).
		Build()
	if err != nil {
		return plain
	}

	matches := automaton.FindAllOverlapping([]byte(haystack))
	if len(matches) == 0 {
		return plain
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Start < matches[j].Start })

	var segments []Segment
	pos := 0
	for _, m := range matches {
		if m.Start < pos {
			continue
		}
		if m.Start > pos {
			segments = append(segments, Segment{Text: text[pos:m.Start]})
		}
		segments = append(segments, Segment{Text: text[m.Start:m.End], IsHighlight: true})
		pos = m.End
	}
	if pos < len(text) {
		segments = append(segments, Segment{Text: text[pos:]})
	}

	return segments
}
