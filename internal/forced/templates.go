package forced

import (
	"strings"
	"unicode/utf8"

	"github.com/HartBrook/keyfit/internal/terms"
)

// Placeholders understood by templates. {topic} is the noun followed by the
// Korean topic particle that matches its final consonant.
const (
	placeholderTerm  = "{term}"
	placeholderNoun  = "{noun}"
	placeholderTopic = "{topic}"
)

// Templates are the sentences forced edits add. Insert templates must contain
// {term}; expand templates must contain {noun} or {topic}.
type Templates struct {
	KoreanInsert  []string `yaml:"korean_insert"`
	EnglishInsert []string `yaml:"english_insert"`
	KoreanExpand  []string `yaml:"korean_expand"`
	EnglishExpand []string `yaml:"english_expand"`
	// KoreanFallbackNoun and EnglishFallbackNoun are used when a paragraph yields no usable noun.
	KoreanFallbackNoun  string `yaml:"korean_fallback_noun"`
	EnglishFallbackNoun string `yaml:"english_fallback_noun"`
}

// DefaultTemplates returns the built-in templates. Korean insert templates keep
// a space after {term} because an attached particle would stop it from counting.
func DefaultTemplates() Templates {
	return Templates{
		KoreanInsert: []string{
			"{term} 관련 정보를 꼼꼼히 확인하는 것이 좋습니다.",
			"많은 분들이 {term} 관련 내용을 궁금해합니다.",
			"{term} 선택 시 전문가의 조언도 참고해 보세요.",
			"{term} 관련 최신 정보도 함께 살펴보시기 바랍니다.",
		},
		EnglishInsert: []string{
			"Many readers ask about {term} first.",
			"It helps to compare {term} options carefully.",
			"Keep {term} in mind when planning.",
		},
		KoreanExpand: []string{
			"{topic} 이 글에서 중요한 부분입니다.",
			"{topic} 꼭 기억해 두시면 좋습니다.",
		},
		EnglishExpand: []string{
			"{noun} is important in this context.",
		},
		KoreanFallbackNoun:  "이 주제",
		EnglishFallbackNoun: "This topic",
	}
}

func (t Templates) withDefaults() Templates {
	d := DefaultTemplates()
	if len(t.KoreanInsert) == 0 {
		t.KoreanInsert = d.KoreanInsert
	}
	if len(t.EnglishInsert) == 0 {
		t.EnglishInsert = d.EnglishInsert
	}
	if len(t.KoreanExpand) == 0 {
		t.KoreanExpand = d.KoreanExpand
	}
	if len(t.EnglishExpand) == 0 {
		t.EnglishExpand = d.EnglishExpand
	}
	if t.KoreanFallbackNoun == "" {
		t.KoreanFallbackNoun = d.KoreanFallbackNoun
	}
	if t.EnglishFallbackNoun == "" {
		t.EnglishFallbackNoun = d.EnglishFallbackNoun
	}
	return t
}

func (t Templates) insertFor(korean bool) []string {
	if korean {
		return t.KoreanInsert
	}
	return t.EnglishInsert
}

func (t Templates) expandFor(korean bool) []string {
	if korean {
		return t.KoreanExpand
	}
	return t.EnglishExpand
}

// fill renders a template for a term or noun.
func fill(tmpl, value string) string {
	r := strings.NewReplacer(
		placeholderTerm, value,
		placeholderNoun, value,
		placeholderTopic, value+topicParticle(value),
	)
	return r.Replace(tmpl)
}

// topicParticle returns 은 after a closed Hangul syllable and 는 after an open one.
func topicParticle(noun string) string {
	last, _ := utf8.DecodeLastRuneInString(noun)
	if terms.ScriptOf(last) != terms.ScriptHangul || last < 0xAC00 || last > 0xD7A3 {
		return "은(는)"
	}
	if (last-0xAC00)%28 != 0 {
		return "은"
	}
	return "는"
}

// fixedPart is the template text outside placeholders.
func fixedPart(tmpl string) string {
	r := strings.NewReplacer(placeholderTerm, " ", placeholderNoun, " ", placeholderTopic, " ")
	return r.Replace(tmpl)
}
