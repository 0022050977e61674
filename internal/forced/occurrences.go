package forced

import (
	"strings"

	"go.uber.org/zap"

	"github.com/HartBrook/keyfit/internal/analysis"
	"github.com/HartBrook/keyfit/internal/terms"
)

// TermReport describes one term-occurrence enforcement. After is always a
// fresh count of the returned text.
type TermReport struct {
	Term      string         `json:"term"`
	Before    int            `json:"before"`
	After     int            `json:"after"`
	Range     analysis.Range `json:"range"`
	Replaced  int            `json:"replaced"`
	Removed   int            `json:"removed"`
	Inserted  int            `json:"inserted"`
	Protected int            `json:"protected"`
	// Partial is set when the count could not be brought fully into range.
	Partial bool `json:"partial"`
}

// EnforceTermCount brings the count of term into r. Surplus occurrences are
// replaced from the substitution pool, or deleted when no substitute fits;
// the first occurrence is never touched, replacements are spread evenly over
// the text, the count never drops below r.Min, and occurrences inside a
// counted occurrence of any protect term are left alone. Missing occurrences
// are added as template sentences placed mid-paragraph, round-robin over the
// body paragraphs.
func (e *Engine) EnforceTermCount(text, term string, r analysis.Range, protect []string) (string, TermReport) {
	text = terms.Normalize(text)
	term = terms.Normalize(term)
	rep := TermReport{Term: term, Range: r}
	rep.Before = len(terms.Find(term, text))

	out := text
	switch {
	case rep.Before > r.Max:
		out = e.reduce(text, term, r, protect, &rep)
	case rep.Before < r.Min:
		out = e.insert(text, term, r, &rep)
	}

	rep.After = terms.CountExact(term, out)
	rep.Partial = !r.Contains(rep.After)

	e.logger.Debug("term count enforced",
		zap.String("term", term),
		zap.Int("before", rep.Before),
		zap.Int("after", rep.After),
		zap.Stringer("range", r),
		zap.Int("replaced", rep.Replaced),
		zap.Int("removed", rep.Removed),
		zap.Int("inserted", rep.Inserted),
		zap.Int("protected", rep.Protected),
		zap.Bool("partial", rep.Partial))
	return out, rep
}

func (e *Engine) reduce(text, term string, r analysis.Range, protect []string, rep *TermReport) string {
	spans := terms.Find(term, text)
	shielded := shieldedSpans(text, protect)

	var cands []terms.Span
	for _, s := range spans[1:] {
		if coveredBy(s, shielded) {
			rep.Protected++
			continue
		}
		cands = append(cands, s)
	}

	excess := len(spans) - r.Max
	k := min(excess, len(cands), len(spans)-r.Min)
	if k <= 0 {
		return text
	}

	subs := usable(e.pool.Substitutes(term), term, protect)
	chosen := spread(cands, k)

	// Right to left keeps earlier offsets valid.
	out := text
	for i := len(chosen) - 1; i >= 0; i-- {
		s := chosen[i]
		if len(subs) == 0 {
			out = deleteSpan(out, s)
			rep.Removed++
			continue
		}
		out = out[:s.Start] + subs[e.pick(len(subs))] + out[s.End:]
		rep.Replaced++
	}
	return out
}

// spread picks k of the candidates at evenly spaced indices.
func spread(cands []terms.Span, k int) []terms.Span {
	m := len(cands)
	if k >= m {
		return cands
	}
	out := make([]terms.Span, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, cands[(2*i+1)*m/(2*k)])
	}
	return out
}

func shieldedSpans(text string, protect []string) []terms.Span {
	var out []terms.Span
	for _, p := range protect {
		out = append(out, terms.Find(p, text)...)
	}
	return out
}

func coveredBy(s terms.Span, shields []terms.Span) bool {
	for _, sh := range shields {
		if s.Start >= sh.Start && s.End <= sh.End {
			return true
		}
	}
	return false
}

// deleteSpan cuts s out of text together with one neighboring space.
func deleteSpan(text string, s terms.Span) string {
	start, end := s.Start, s.End
	if end < len(text) && text[end] == ' ' {
		end++
	} else if start > 0 && text[start-1] == ' ' {
		start--
	}
	return text[:start] + text[end:]
}

func (e *Engine) insert(text, term string, r analysis.Range, rep *TermReport) string {
	korean := terms.Dominant(term+text) == terms.ScriptHangul
	tmpls := insertTemplates(e.templates.insertFor(korean), term)
	if len(tmpls) == 0 {
		return text
	}

	d := parseDoc(text)
	body := d.body()
	if len(body) == 0 {
		body = []*block{d.appendBody("")}
	}

	count := rep.Before
	shortfall := r.Min - count
	// Twice the shortfall bounds the loop even if some insertions don't count.
	for i := 0; i < 2*shortfall && count < r.Min; i++ {
		bl := body[i%len(body)]
		ss := splitSentences(bl.text)
		pos := len(ss)
		if len(ss) >= 2 {
			pos = 1 + e.pick(len(ss)-1)
		}
		sentence := fill(tmpls[e.pick(len(tmpls))], term)
		ss = insertSentence(ss, pos, sentence)
		bl.text = joinSentences(ss)
		rep.Inserted++

		count = terms.CountExact(term, d.String())
		if count > r.Max {
			break
		}
	}
	return d.String()
}

// insertTemplates drops templates whose fixed text already mentions term.
func insertTemplates(tmpls []string, term string) []string {
	var out []string
	for _, t := range tmpls {
		if strings.Contains(t, placeholderTerm) && !strings.Contains(fixedPart(t), term) {
			out = append(out, t)
		}
	}
	return out
}
