package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ko", "korean"},
		{"KR", "korean"},
		{"한국어", "korean"},
		{"korean", "korean"},
		{"en", "english"},
		{"English", "english"},
		{"jp", "japanese"},
		{"german", "german"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeLanguage(tt.input))
		})
	}
}

func TestFilterByLanguage(t *testing.T) {
	results := []SearchResult{
		{Owner: "a", Repo: "ko-style", Topics: []string{"keyfit-style", "korean"}},
		{Owner: "b", Repo: "en-style", Topics: []string{"keyfit-style", "en"}},
		{Owner: "c", Repo: "untagged", Topics: []string{"keyfit-style"}},
	}

	t.Run("empty language keeps everything", func(t *testing.T) {
		assert.Len(t, FilterByLanguage(results, ""), 3)
	})

	t.Run("alias on the query side", func(t *testing.T) {
		got := FilterByLanguage(results, "ko")
		assert.Len(t, got, 1)
		assert.Equal(t, "ko-style", got[0].Repo)
	})

	t.Run("alias on the topic side", func(t *testing.T) {
		got := FilterByLanguage(results, "english")
		assert.Len(t, got, 1)
		assert.Equal(t, "en-style", got[0].Repo)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, FilterByLanguage(results, "japanese"))
	})
}

func TestSortByStars(t *testing.T) {
	results := []SearchResult{
		{Repo: "low", Stars: 1},
		{Repo: "high", Stars: 50},
		{Repo: "mid", Stars: 10},
	}

	SortByStars(results)

	assert.Equal(t, "high", results[0].Repo)
	assert.Equal(t, "mid", results[1].Repo)
	assert.Equal(t, "low", results[2].Repo)
}
