package terms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerive_SingleWord(t *testing.T) {
	got := Derive("seo", nil, nil)
	assert.Equal(t, []Tracked{{Text: "seo", Role: RoleKeyword}}, got)
}

func TestDerive_Compound(t *testing.T) {
	got := Derive("  다이어트   식단 ", nil, nil)
	assert.Equal(t, []Tracked{
		{Text: "다이어트 식단", Role: RoleKeyword},
		{Text: "다이어트", Role: RoleComponent},
		{Text: "식단", Role: RoleComponent},
	}, got)
}

func TestDerive_TokenizerAndExtras(t *testing.T) {
	tok := StaticTokenizer{Table: map[string][]string{
		"저탄고지다이어트": {"저탄고지", "다이어트"},
	}}
	got := Derive("저탄고지다이어트", tok, []string{"식단", "다이어트", "x"})
	assert.Equal(t, []string{"저탄고지다이어트", "저탄고지", "다이어트", "식단"}, Texts(got))
	assert.Equal(t, RoleMorpheme, got[1].Role)
}

func TestDerive_DropsShortTerms(t *testing.T) {
	got := Derive("a b", nil, nil)
	assert.Equal(t, []string{"a b"}, Texts(got))
}

func TestStaticTokenizer_Fallback(t *testing.T) {
	tok := StaticTokenizer{}
	assert.Equal(t, []string{"keto", "diet"}, tok.Tokenize("keto-diet"))
}

func TestContaining(t *testing.T) {
	tracked := Derive("다이어트 식단", nil, nil)
	assert.Equal(t, []string{"다이어트 식단"}, Containing("식단", tracked))
	assert.Empty(t, Containing("다이어트 식단", tracked))
}
