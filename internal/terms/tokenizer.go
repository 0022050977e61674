package terms

import (
	"strings"
	"unicode"
)

// Tokenizer splits a phrase into the tokens that should be tracked alongside it.
type Tokenizer interface {
	Tokenize(phrase string) []string
}

// SpaceTokenizer splits on whitespace, punctuation and symbols.
type SpaceTokenizer struct{}

// Tokenize implements Tokenizer.
func (SpaceTokenizer) Tokenize(phrase string) []string {
	return strings.FieldsFunc(Normalize(phrase), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

// StaticTokenizer looks phrases up in a fixed table, typically loaded from
// config, and defers to Fallback for anything it doesn't know.
type StaticTokenizer struct {
	Table    map[string][]string
	Fallback Tokenizer
}

// Tokenize implements Tokenizer.
func (t StaticTokenizer) Tokenize(phrase string) []string {
	key := strings.Join(strings.Fields(Normalize(phrase)), " ")
	if tokens, ok := t.Table[key]; ok {
		out := make([]string, len(tokens))
		for i, tok := range tokens {
			out[i] = Normalize(tok)
		}
		return out
	}
	if t.Fallback != nil {
		return t.Fallback.Tokenize(phrase)
	}
	return SpaceTokenizer{}.Tokenize(phrase)
}
