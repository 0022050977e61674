package forced

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/HartBrook/keyfit/internal/analysis"
)

type blockKind int

const (
	kindBody blockKind = iota
	kindHeading
	// kindList covers list items, tables, quotes and fenced code: kept whole, never trimmed.
	kindList
)

// block is one paragraph-level unit. sep is the whitespace that follows it.
type block struct {
	kind blockKind
	text string
	sep  string
}

// doc is a text split into blocks so that edits keep untouched parts byte for byte.
type doc struct {
	prefix string
	blocks []*block
}

var listLine = regexp.MustCompile(`^\s*([-*+]\s|\d+[.)]\s|>|\|)`)

func parseDoc(text string) *doc {
	d := &doc{}
	var cur *block
	inFence := false

	for _, raw := range strings.SplitAfter(text, "\n") {
		if raw == "" {
			continue
		}
		line := strings.TrimRight(raw, "\r\n")
		nl := raw[len(line):]
		trimmed := strings.TrimSpace(line)

		var kind blockKind
		switch {
		case strings.HasPrefix(trimmed, "```"):
			inFence = !inFence
			kind = kindList
		case inFence:
			kind = kindList
		case trimmed == "":
			if len(d.blocks) == 0 {
				d.prefix += raw
			} else {
				d.blocks[len(d.blocks)-1].sep += raw
			}
			cur = nil
			continue
		case strings.HasPrefix(trimmed, "#"):
			kind = kindHeading
		case listLine.MatchString(line):
			kind = kindList
		default:
			kind = kindBody
		}

		if cur != nil && cur.kind == kind && kind != kindHeading {
			cur.text += cur.sep + line
			cur.sep = nl
			continue
		}
		cur = &block{kind: kind, text: line, sep: nl}
		d.blocks = append(d.blocks, cur)
		if kind == kindHeading {
			cur = nil
		}
	}
	return d
}

func (d *doc) String() string {
	var b strings.Builder
	b.WriteString(d.prefix)
	for _, bl := range d.blocks {
		b.WriteString(bl.text)
		b.WriteString(bl.sep)
	}
	return b.String()
}

func (d *doc) body() []*block {
	var out []*block
	for _, bl := range d.blocks {
		if bl.kind == kindBody {
			out = append(out, bl)
		}
	}
	return out
}

func (d *doc) lastBody() *block {
	for i := len(d.blocks) - 1; i >= 0; i-- {
		if d.blocks[i].kind == kindBody {
			return d.blocks[i]
		}
	}
	return nil
}

// appendBody adds a new body paragraph at the end of the document.
func (d *doc) appendBody(text string) *block {
	bl := &block{kind: kindBody, text: text}
	if n := len(d.blocks); n > 0 {
		last := d.blocks[n-1]
		bl.sep = last.sep
		last.sep = "\n\n"
	}
	d.blocks = append(d.blocks, bl)
	return bl
}

func (d *doc) remove(target *block) {
	for i, bl := range d.blocks {
		if bl != target {
			continue
		}
		if i == len(d.blocks)-1 && i > 0 {
			d.blocks[i-1].sep = bl.sep
		}
		d.blocks = append(d.blocks[:i], d.blocks[i+1:]...)
		return
	}
}

func (d *doc) charCount() int {
	return analysis.CharCount(d.String())
}

// sentence is one sentence of a body block. sep is the whitespace that follows it.
type sentence struct {
	text string
	sep  string
}

const terminators = ".!?。！？…"
const closers = `"'”’)]」』`

// splitSentences splits a paragraph after terminal punctuation that is
// followed by whitespace or the end of the paragraph.
func splitSentences(text string) []*sentence {
	var out []*sentence
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if !strings.ContainsRune(terminators, r) {
			continue
		}
		end := i
		for end < len(text) {
			c, cs := utf8.DecodeRuneInString(text[end:])
			if !strings.ContainsRune(closers, c) && !strings.ContainsRune(terminators, c) {
				break
			}
			end += cs
		}
		if end < len(text) {
			next, _ := utf8.DecodeRuneInString(text[end:])
			if !unicode.IsSpace(next) {
				i = end
				continue
			}
		}
		wsEnd := end
		for wsEnd < len(text) {
			c, cs := utf8.DecodeRuneInString(text[wsEnd:])
			if !unicode.IsSpace(c) {
				break
			}
			wsEnd += cs
		}
		out = append(out, &sentence{text: text[start:end], sep: text[end:wsEnd]})
		start, i = wsEnd, wsEnd
	}
	if start < len(text) {
		rest := text[start:]
		trimmed := strings.TrimRightFunc(rest, unicode.IsSpace)
		if trimmed != "" {
			out = append(out, &sentence{text: trimmed, sep: rest[len(trimmed):]})
		} else if len(out) > 0 {
			out[len(out)-1].sep += rest
		}
	}
	return out
}

func joinSentences(ss []*sentence) string {
	var b strings.Builder
	for _, s := range ss {
		b.WriteString(s.text)
		b.WriteString(s.sep)
	}
	return b.String()
}

// removeSentence drops ss[i], handing its trailing whitespace to the previous
// sentence when it was the last one.
func removeSentence(ss []*sentence, i int) []*sentence {
	if i == len(ss)-1 && i > 0 {
		ss[i-1].sep = ss[i].sep
	}
	return append(ss[:i], ss[i+1:]...)
}

// insertSentence puts text before ss[i], or appends it when i == len(ss).
func insertSentence(ss []*sentence, i int, text string) []*sentence {
	if i >= len(ss) {
		s := &sentence{text: text}
		if n := len(ss); n > 0 {
			s.sep = ss[n-1].sep
			ss[n-1].sep = " "
		}
		return append(ss, s)
	}
	sep := " "
	if i > 0 && ss[i-1].sep != "" {
		sep = ss[i-1].sep
	}
	s := &sentence{text: text, sep: sep}
	ss = append(ss, nil)
	copy(ss[i+1:], ss[i:])
	ss[i] = s
	return ss
}
