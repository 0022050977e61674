package forced

import (
	"sort"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/HartBrook/keyfit/internal/analysis"
	"github.com/HartBrook/keyfit/internal/terms"
)

const (
	// minBodyParagraphs is how many body paragraphs paragraph removal leaves in place.
	minBodyParagraphs = 3
	// minSentencesKept is how many sentences sentence removal leaves in a paragraph.
	minSentencesKept = 2
	// charsPerExpansion is the assumed length of one expansion sentence when planning.
	charsPerExpansion = 20
	// edgeSentenceWeight boosts the importance of a paragraph's first and last sentence.
	edgeSentenceWeight = 1.5
	maxExpansions      = 500
)

// CharReport describes one character-count enforcement.
type CharReport struct {
	Before            int  `json:"before"`
	After             int  `json:"after"`
	Target            int  `json:"target"`
	Tolerance         int  `json:"tolerance"`
	ParagraphsRemoved int  `json:"paragraphs_removed"`
	SentencesRemoved  int  `json:"sentences_removed"`
	SentencesPlanned  int  `json:"sentences_planned"`
	SentencesAdded    int  `json:"sentences_added"`
	Within            bool `json:"within"`
	// FloorHit is set when no edit was left that moved the count toward the
	// band without overshooting it.
	FloorHit bool `json:"floor_hit"`
}

// EnforceCharCount moves the whitespace-free character count of text into
// [target-tolerance, target+tolerance]. Over the band it removes the longest
// body paragraphs, then the least important sentences; under the band it
// appends template sentences built from the last paragraph's salient nouns.
// Headings are never touched and no edit overshoots the band.
func (e *Engine) EnforceCharCount(text string, target, tolerance int) (string, CharReport) {
	text = terms.Normalize(text)
	if tolerance < 0 {
		tolerance = 0
	}
	band := analysis.Range{Min: target - tolerance, Max: target + tolerance}
	count := analysis.CharCount(text)
	rep := CharReport{Before: count, After: count, Target: target, Tolerance: tolerance}

	if band.Contains(count) {
		rep.Within = true
		return text, rep
	}

	d := parseDoc(text)
	if count > band.Max {
		e.shrink(d, band, &rep)
	} else {
		e.grow(d, target, band, &rep)
	}

	out := d.String()
	rep.After = analysis.CharCount(out)
	rep.Within = band.Contains(rep.After)
	rep.FloorHit = !rep.Within

	e.logger.Debug("character count enforced",
		zap.Int("before", rep.Before),
		zap.Int("after", rep.After),
		zap.Stringer("band", band),
		zap.Int("paragraphs_removed", rep.ParagraphsRemoved),
		zap.Int("sentences_removed", rep.SentencesRemoved),
		zap.Int("sentences_added", rep.SentencesAdded),
		zap.Bool("floor_hit", rep.FloorHit))
	return out, rep
}

func (e *Engine) shrink(d *doc, band analysis.Range, rep *CharReport) {
	count := d.charCount()

	body := d.body()
	sort.SliceStable(body, func(i, j int) bool {
		return analysis.CharCount(body[i].text) > analysis.CharCount(body[j].text)
	})
	remaining := len(body)
	for _, bl := range body {
		if count <= band.Max || remaining <= minBodyParagraphs {
			break
		}
		n := analysis.CharCount(bl.text)
		if count-n < band.Min {
			continue
		}
		d.remove(bl)
		count -= n
		remaining--
		rep.ParagraphsRemoved++
	}
	if count <= band.Max {
		return
	}

	type ranked struct {
		bl         *block
		s          *sentence
		importance float64
	}
	split := make(map[*block][]*sentence)
	var cands []ranked
	for _, bl := range d.body() {
		ss := splitSentences(bl.text)
		split[bl] = ss
		if len(ss) <= minSentencesKept {
			continue
		}
		for i, s := range ss {
			w := 1.0
			if i == 0 || i == len(ss)-1 {
				w = edgeSentenceWeight
			}
			cands = append(cands, ranked{bl: bl, s: s, importance: w * float64(analysis.CharCount(s.text))})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].importance < cands[j].importance
	})

	for _, c := range cands {
		if count <= band.Max {
			break
		}
		ss := split[c.bl]
		if len(ss) <= minSentencesKept {
			continue
		}
		n := analysis.CharCount(c.s.text)
		if count-n < band.Min {
			continue
		}
		idx := indexOf(ss, c.s)
		if idx < 0 {
			continue
		}
		ss = removeSentence(ss, idx)
		split[c.bl] = ss
		c.bl.text = joinSentences(ss)
		count -= n
		rep.SentencesRemoved++
	}
}

func (e *Engine) grow(d *doc, target int, band analysis.Range, rep *CharReport) {
	count := d.charCount()
	shortfall := target - count
	rep.SentencesPlanned = (shortfall + charsPerExpansion - 1) / charsPerExpansion

	bl := d.lastBody()
	if bl == nil {
		bl = d.appendBody("")
	}
	korean := terms.Dominant(d.String()) == terms.ScriptHangul

	nouns := salientNouns(bl.text, e.avoid, 5)
	if len(nouns) == 0 {
		nouns = salientNouns(d.String(), e.avoid, 5)
	}
	if len(nouns) == 0 {
		if korean {
			nouns = []string{e.templates.KoreanFallbackNoun}
		} else {
			nouns = []string{e.templates.EnglishFallbackNoun}
		}
	}
	tmpls := e.templates.expandFor(korean)

	ss := splitSentences(bl.text)
	for i := 0; i < maxExpansions; i++ {
		if count >= band.Min && (rep.SentencesAdded >= rep.SentencesPlanned || count >= target) {
			break
		}
		sentence, n := e.fittingSentence(tmpls, nouns, i, band.Max-count)
		if n == 0 {
			break
		}
		ss = insertSentence(ss, len(ss), sentence)
		count += n
		rep.SentencesAdded++
	}
	bl.text = joinSentences(ss)
	if bl.text == "" {
		d.remove(bl)
	}
}

// fittingSentence renders an expansion sentence no longer than room,
// starting from a random template and the i-th noun. It returns an empty
// sentence when nothing fits.
func (e *Engine) fittingSentence(tmpls, nouns []string, i, room int) (string, int) {
	start := e.pick(len(tmpls))
	for k := range tmpls {
		tmpl := tmpls[(start+k)%len(tmpls)]
		for j := range nouns {
			s := capitalizeFirst(fill(tmpl, nouns[(i+j)%len(nouns)]))
			if n := analysis.CharCount(s); n > 0 && n <= room {
				return s, n
			}
		}
	}
	return "", 0
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || !unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func indexOf(ss []*sentence, target *sentence) int {
	for i, s := range ss {
		if s == target {
			return i
		}
	}
	return -1
}
