// Package terms counts tracked terms in text and derives the tracked set from a keyword.
package terms

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Script is the coarse writing-system class of a rune, as far as word boundaries are concerned.
type Script int

const (
	ScriptOther Script = iota
	ScriptWord         // letters and digits of space-delimited scripts
	ScriptHangul
	ScriptHan
	ScriptKana
	ScriptThai
)

// Logographic reports whether words of this script are not reliably delimited by spaces.
func (s Script) Logographic() bool {
	switch s {
	case ScriptHangul, ScriptHan, ScriptKana, ScriptThai:
		return true
	}
	return false
}

// ScriptOf classifies a rune.
func ScriptOf(r rune) Script {
	switch {
	case unicode.Is(unicode.Hangul, r):
		return ScriptHangul
	case unicode.Is(unicode.Han, r):
		return ScriptHan
	case unicode.In(r, unicode.Hiragana, unicode.Katakana):
		return ScriptKana
	case unicode.Is(unicode.Thai, r):
		return ScriptThai
	case IsWordRune(r):
		return ScriptWord
	}
	return ScriptOther
}

// IsWordRune reports whether r can be part of a word.
func IsWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// Dominant returns the most frequent logographic script in text, or ScriptWord
// when no logographic rune is present.
func Dominant(text string) Script {
	counts := make(map[Script]int)
	for _, r := range text {
		if s := ScriptOf(r); s.Logographic() {
			counts[s]++
		}
	}
	best, bestN := ScriptWord, 0
	for _, s := range []Script{ScriptHangul, ScriptHan, ScriptKana, ScriptThai} {
		if counts[s] > bestN {
			best, bestN = s, counts[s]
		}
	}
	return best
}

// Normalize returns the NFC form of s. Spans returned by Find index into
// normalized text, so callers that edit text normalize it first.
func Normalize(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

// RuneLen returns the number of runes in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
