package forced

import (
	"sort"
	"strings"
	"unicode"

	"github.com/HartBrook/keyfit/internal/terms"
)

// koreanParticles are stripped from the end of tokens when looking for nouns.
// Longer particles come first so that 에서 wins over 서.
var koreanParticles = []string{
	"에서는", "으로는", "에게서", "까지는", "부터는",
	"에서", "으로", "에게", "까지", "부터", "처럼", "보다", "이나", "이란", "과의", "와의",
	"은", "는", "이", "가", "을", "를", "의", "에", "로", "와", "과", "도", "만",
}

var englishStopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true, "not": true,
	"you": true, "your": true, "with": true, "this": true, "that": true, "from": true,
	"they": true, "have": true, "has": true, "was": true, "were": true, "will": true,
	"can": true, "its": true, "it's": true, "our": true, "all": true, "more": true,
	"most": true, "also": true, "into": true, "than": true, "then": true, "when": true,
	"what": true, "which": true, "who": true, "how": true, "why": true, "there": true,
	"their": true, "these": true, "those": true, "such": true, "about": true, "is": true,
	"it": true, "in": true, "on": true, "of": true, "to": true, "as": true, "at": true,
	"by": true, "or": true, "an": true, "be": true, "if": true, "so": true, "we": true,
	"do": true, "does": true, "very": true, "just": true, "some": true, "many": true,
}

var koreanStopwords = map[string]bool{
	"그리고": true, "하지만": true, "그러나": true, "또한": true, "그래서": true, "따라서": true,
	"그런데": true, "이것": true, "그것": true, "저것": true, "이런": true, "그런": true,
	"이러한": true, "그러한": true, "때문": true, "경우": true, "정도": true, "가장": true,
	"매우": true, "정말": true, "모든": true, "많은": true, "다양한": true, "통해": true,
	"위해": true, "대한": true, "있는": true, "없는": true, "하는": true, "되는": true,
	"해당": true, "우리": true, "여러분": true,
}

// isStopword reports whether token is too common to be worth limiting or expanding on.
func isStopword(token string) bool {
	return englishStopwords[strings.ToLower(token)] || koreanStopwords[token]
}

// isPredicate reports whether a Hangul token looks like a conjugated verb or
// adjective, which can't be swapped for a noun placeholder.
func isPredicate(token string) bool {
	if terms.Dominant(token) != terms.ScriptHangul {
		return false
	}
	for _, suffix := range []string{"다", "요", "죠", "까"} {
		if strings.HasSuffix(token, suffix) {
			return true
		}
	}
	return false
}

// stripParticle removes a trailing Korean particle when what remains is still a word.
func stripParticle(token string) string {
	if terms.Dominant(token) != terms.ScriptHangul {
		return token
	}
	for _, p := range koreanParticles {
		if base, ok := strings.CutSuffix(token, p); ok && terms.RuneLen(base) >= terms.MinTermRunes {
			return base
		}
	}
	return token
}

// significant reports whether token can stand for a topic: long enough, not a
// stopword or predicate, and not all digits.
func significant(token string) bool {
	if terms.RuneLen(token) < terms.MinTermRunes || isStopword(token) || isPredicate(token) {
		return false
	}
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// salientNouns ranks noun-like tokens of text by frequency, then length, then
// first appearance, skipping any that overlap an avoided term.
func salientNouns(text string, avoid []string, limit int) []string {
	type cand struct {
		word  string
		freq  int
		first int
	}
	byWord := make(map[string]*cand)
	var order []*cand
	for i, tok := range (terms.SpaceTokenizer{}).Tokenize(text) {
		w := stripParticle(tok)
		if !significant(w) || overlapsAny(w, avoid) {
			continue
		}
		if c, ok := byWord[w]; ok {
			c.freq++
			continue
		}
		c := &cand{word: w, freq: 1, first: i}
		byWord[w] = c
		order = append(order, c)
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.freq != b.freq {
			return a.freq > b.freq
		}
		if la, lb := terms.RuneLen(a.word), terms.RuneLen(b.word); la != lb {
			return la > lb
		}
		return a.first < b.first
	})
	out := make([]string, 0, limit)
	for _, c := range order {
		if len(out) == limit {
			break
		}
		out = append(out, c.word)
	}
	return out
}

func overlapsAny(word string, others []string) bool {
	for _, o := range others {
		if o == "" {
			continue
		}
		if strings.Contains(word, o) || strings.Contains(o, word) {
			return true
		}
	}
	return false
}
