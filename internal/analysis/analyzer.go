// Package analysis measures a text against character and term-occurrence bands
// and compares the resulting snapshots.
package analysis

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/HartBrook/keyfit/internal/terms"
)

// TermCount is the measured count of one tracked term.
type TermCount struct {
	Term  terms.Tracked `json:"term"`
	Count int           `json:"count"`
	Valid bool          `json:"valid"`
}

// Snapshot is the constraint state of one text.
type Snapshot struct {
	CharCount      int         `json:"char_count"`
	ValidCharCount bool        `json:"valid_char_count"`
	Terms          []TermCount `json:"terms"`
	ValidAllTerms  bool        `json:"valid_all_terms"`
	CharRange      Range       `json:"char_range"`
	TermRange      Range       `json:"term_range"`
}

// Satisfied reports whether both constraints hold.
func (s Snapshot) Satisfied() bool {
	return s.ValidCharCount && s.ValidAllTerms
}

// Count returns the count for term and whether it is tracked.
func (s Snapshot) Count(term string) (int, bool) {
	for _, tc := range s.Terms {
		if tc.Term.Text == term {
			return tc.Count, true
		}
	}
	return 0, false
}

// ValidTerms returns how many tracked terms are within the term range.
func (s Snapshot) ValidTerms() int {
	n := 0
	for _, tc := range s.Terms {
		if tc.Valid {
			n++
		}
	}
	return n
}

// CharDistance is the distance of the character count from the char-range midpoint.
func (s Snapshot) CharDistance() float64 {
	return s.CharRange.Distance(s.CharCount)
}

// TermDistance is the summed distance of every term count from the term-range midpoint.
func (s Snapshot) TermDistance() float64 {
	total := 0.0
	for _, tc := range s.Terms {
		total += s.TermRange.Distance(tc.Count)
	}
	return total
}

// Summary renders the snapshot on one line for logs and progress events.
func (s Snapshot) Summary() string {
	parts := make([]string, 0, len(s.Terms))
	for _, tc := range s.Terms {
		mark := ""
		if !tc.Valid {
			mark = "!"
		}
		parts = append(parts, fmt.Sprintf("%s=%d%s", tc.Term.Text, tc.Count, mark))
	}
	chars := ""
	if !s.ValidCharCount {
		chars = "!"
	}
	return fmt.Sprintf("chars=%d%s (%s) terms[%s] (%s)", s.CharCount, chars, s.CharRange, strings.Join(parts, " "), s.TermRange)
}

// Analyzer computes snapshots for a fixed term set and fixed ranges.
type Analyzer struct {
	Terms     []terms.Tracked
	CharRange Range
	TermRange Range
	Marker    string
}

// Analyze measures text. The references section, if any, is ignored.
func (a Analyzer) Analyze(text string) Snapshot {
	body, _ := SplitReferences(terms.Normalize(text), a.Marker)

	snap := Snapshot{
		CharCount: CharCount(body),
		CharRange: a.CharRange,
		TermRange: a.TermRange,
		Terms:     make([]TermCount, 0, len(a.Terms)),
	}
	snap.ValidCharCount = a.CharRange.Contains(snap.CharCount)

	snap.ValidAllTerms = true
	for _, t := range a.Terms {
		n := len(terms.Find(t.Text, body))
		valid := a.TermRange.Contains(n)
		snap.Terms = append(snap.Terms, TermCount{Term: t, Count: n, Valid: valid})
		if !valid {
			snap.ValidAllTerms = false
		}
	}
	return snap
}

// Body returns text without its references section.
func (a Analyzer) Body(text string) (body, refs string) {
	return SplitReferences(text, a.Marker)
}

// CharCount counts the runes of text that are not whitespace.
func CharCount(text string) int {
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
