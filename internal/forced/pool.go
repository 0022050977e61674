package forced

import (
	"strings"

	"github.com/HartBrook/keyfit/internal/terms"
)

// Pool supplies replacement phrases for an overused term.
type Pool interface {
	Substitutes(term string) []string
}

// StaticPool is a fixed substitution table with script-specific fallbacks.
type StaticPool struct {
	ByTerm         map[string][]string `yaml:"terms"`
	KoreanNouns    []string            `yaml:"korean_nouns"`
	KoreanAdverbs  []string            `yaml:"korean_adverbs"`
	EnglishGeneric []string            `yaml:"english"`
}

// DefaultPool returns deictic placeholders that fit almost any sentence.
func DefaultPool() StaticPool {
	return StaticPool{
		KoreanNouns:    []string{"이것", "해당 항목", "이 주제", "그것", "해당 제품", "이 분야", "이 항목"},
		KoreanAdverbs:  []string{"이렇게", "이런 방식으로", "이와 같이", "그렇게", "이러한 방식으로"},
		EnglishGeneric: []string{"it", "this", "this topic", "the subject"},
	}
}

// Substitutes implements Pool. Term-specific entries win; otherwise the
// fallback list for the term's script is used.
func (p StaticPool) Substitutes(term string) []string {
	if s := p.ByTerm[term]; len(s) > 0 {
		return s
	}
	if terms.Dominant(term) != terms.ScriptHangul {
		return p.EnglishGeneric
	}
	if isKoreanAdverb(term) && len(p.KoreanAdverbs) > 0 {
		return p.KoreanAdverbs
	}
	return p.KoreanNouns
}

// Merge returns a pool whose term-specific entries are p's overlaid with
// other's, and whose fallbacks come from other where set.
func (p StaticPool) Merge(other StaticPool) StaticPool {
	out := StaticPool{
		ByTerm:         make(map[string][]string, len(p.ByTerm)+len(other.ByTerm)),
		KoreanNouns:    p.KoreanNouns,
		KoreanAdverbs:  p.KoreanAdverbs,
		EnglishGeneric: p.EnglishGeneric,
	}
	for k, v := range p.ByTerm {
		out.ByTerm[k] = v
	}
	for k, v := range other.ByTerm {
		out.ByTerm[k] = v
	}
	if len(other.KoreanNouns) > 0 {
		out.KoreanNouns = other.KoreanNouns
	}
	if len(other.KoreanAdverbs) > 0 {
		out.KoreanAdverbs = other.KoreanAdverbs
	}
	if len(other.EnglishGeneric) > 0 {
		out.EnglishGeneric = other.EnglishGeneric
	}
	return out
}

func isKoreanAdverb(term string) bool {
	return strings.HasSuffix(term, "게") || strings.HasSuffix(term, "히")
}

// usable filters substitutes that would count as the term again or as one
// of the protected terms.
func usable(subs []string, term string, protect []string) []string {
	var out []string
	for _, s := range subs {
		if s == "" || strings.Contains(s, term) {
			continue
		}
		bad := false
		for _, p := range protect {
			if strings.Contains(s, p) {
				bad = true
				break
			}
		}
		if !bad {
			out = append(out, s)
		}
	}
	return out
}
