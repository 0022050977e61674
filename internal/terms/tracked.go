package terms

import "strings"

// Role says where a tracked term came from.
type Role string

const (
	RoleKeyword   Role = "keyword"
	RoleComponent Role = "component"
	RoleMorpheme  Role = "morpheme"
)

// MinTermRunes is the shortest term worth tracking; single characters are too noisy to count.
const MinTermRunes = 2

// Tracked is a term whose occurrence count is constrained.
type Tracked struct {
	Text string `json:"text"`
	Role Role   `json:"role"`
}

// CleanKeyword normalizes a keyword and collapses its internal whitespace.
func CleanKeyword(keyword string) string {
	return strings.Join(strings.Fields(Normalize(keyword)), " ")
}

// Derive builds the tracked set for a keyword: the keyword itself, each
// whitespace component of a compound keyword, then tokenizer output and
// extra morphemes. Duplicates and terms shorter than MinTermRunes are dropped.
//
// Compound and component terms are counted independently. An occurrence of
// the compound also counts toward each component, which can make some
// constraint sets unsatisfiable.
func Derive(keyword string, tok Tokenizer, extra []string) []Tracked {
	keyword = CleanKeyword(keyword)
	if tok == nil {
		tok = SpaceTokenizer{}
	}

	var out []Tracked
	seen := make(map[string]bool)
	add := func(text string, role Role) {
		text = strings.TrimSpace(Normalize(text))
		if RuneLen(text) < MinTermRunes || seen[text] {
			return
		}
		seen[text] = true
		out = append(out, Tracked{Text: text, Role: role})
	}

	add(keyword, RoleKeyword)
	if parts := strings.Fields(keyword); len(parts) > 1 {
		for _, p := range parts {
			add(p, RoleComponent)
		}
	}
	for _, t := range tok.Tokenize(keyword) {
		add(t, RoleMorpheme)
	}
	for _, t := range extra {
		add(t, RoleMorpheme)
	}
	return out
}

// Texts returns the term strings in order.
func Texts(tracked []Tracked) []string {
	out := make([]string, len(tracked))
	for i, t := range tracked {
		out[i] = t.Text
	}
	return out
}

// Containing returns the tracked terms, other than term itself, whose text contains term.
func Containing(term string, tracked []Tracked) []string {
	var out []string
	for _, t := range tracked {
		if t.Text != term && strings.Contains(t.Text, term) {
			out = append(out, t.Text)
		}
	}
	return out
}
