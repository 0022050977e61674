package terms

import (
	"strings"
	"unicode/utf8"
)

// Span is the byte range of one counted occurrence.
type Span struct {
	Start int
	End   int
}

// CountExact counts boundary-respecting, non-overlapping occurrences of term in text.
func CountExact(term, text string) int {
	return len(Find(term, Normalize(text)))
}

// Find returns the spans of every counted occurrence of term in text, in order.
//
// A candidate match counts only when neither neighbor would extend the word:
// next to a logographic edge rune the neighbor must belong to a different
// script; next to any other word rune the neighbor must not be a word rune.
func Find(term, text string) []Span {
	term = Normalize(term)
	if term == "" || text == "" || len(term) > len(text) {
		return nil
	}
	first, _ := utf8.DecodeRuneInString(term)
	last, _ := utf8.DecodeLastRuneInString(term)

	var spans []Span
	for i := 0; i <= len(text)-len(term); {
		j := strings.Index(text[i:], term)
		if j < 0 {
			break
		}
		start := i + j
		end := start + len(term)
		if boundaryOK(text, start, end, first, last) {
			spans = append(spans, Span{Start: start, End: end})
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		i = start + size
	}
	return spans
}

func boundaryOK(text string, start, end int, first, last rune) bool {
	if start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:start])
		if joins(first, prev) {
			return false
		}
	}
	if end < len(text) {
		next, _ := utf8.DecodeRuneInString(text[end:])
		if joins(last, next) {
			return false
		}
	}
	return true
}

// joins reports whether neighbor would continue the word that edge ends or starts.
func joins(edge, neighbor rune) bool {
	if s := ScriptOf(edge); s.Logographic() {
		return ScriptOf(neighbor) == s
	}
	return IsWordRune(edge) && IsWordRune(neighbor)
}
