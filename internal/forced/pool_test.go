package forced

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticPool_Substitutes(t *testing.T) {
	p := DefaultPool()
	assert.Contains(t, p.Substitutes("다이어트"), "이것")
	assert.Contains(t, p.Substitutes("꾸준하게"), "이렇게")
	assert.Contains(t, p.Substitutes("seo"), "this topic")

	p.ByTerm = map[string][]string{"seo": {"search optimization"}}
	assert.Equal(t, []string{"search optimization"}, p.Substitutes("seo"))
}

func TestStaticPool_Merge(t *testing.T) {
	base := DefaultPool()
	merged := base.Merge(StaticPool{
		ByTerm:         map[string][]string{"식단": {"식사 계획"}},
		EnglishGeneric: []string{"that"},
	})
	assert.Equal(t, []string{"식사 계획"}, merged.Substitutes("식단"))
	assert.Equal(t, []string{"that"}, merged.Substitutes("seo"))
	assert.Equal(t, base.KoreanNouns, merged.KoreanNouns)
}

func TestUsable(t *testing.T) {
	got := usable([]string{"", "cat food", "dog", "kitty cat", "pet"}, "cat", []string{"pet"})
	assert.Equal(t, []string{"dog"}, got)
}
