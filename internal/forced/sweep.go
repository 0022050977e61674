package forced

import (
	"sort"

	"github.com/HartBrook/keyfit/internal/analysis"
	"github.com/HartBrook/keyfit/internal/terms"
)

// LimitAll caps every significant token of text at ceiling occurrences,
// which suppresses repetition that earlier edits introduced. Tokens that
// overlap a skip term, usually the tracked terms, are left alone, as are
// stopwords and Korean predicates. Only tokens over the ceiling are reported.
func (e *Engine) LimitAll(text string, ceiling int, skip []string) (string, []TermReport) {
	text = terms.Normalize(text)
	if ceiling < 1 {
		ceiling = 1
	}

	seen := make(map[string]bool)
	var tokens []string
	for _, tok := range (terms.SpaceTokenizer{}).Tokenize(text) {
		if seen[tok] || !significant(tok) || overlapsAny(tok, skip) {
			continue
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}
	// Longer tokens first; a shorter token may be part of a longer one.
	sort.SliceStable(tokens, func(i, j int) bool {
		return terms.RuneLen(tokens[i]) > terms.RuneLen(tokens[j])
	})

	r := analysis.Range{Min: 1, Max: ceiling}
	var reports []TermReport
	for _, tok := range tokens {
		if terms.CountExact(tok, text) <= ceiling {
			continue
		}
		var rep TermReport
		text, rep = e.EnforceTermCount(text, tok, r, skip)
		reports = append(reports, rep)
	}
	return text, reports
}
