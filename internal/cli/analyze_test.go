package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HartBrook/keyfit/internal/errors"
)

func TestAnalyzeDraft(t *testing.T) {
	env := newTestEnvironment(t)

	snap, err := analyzeDraft(env, testDraft, &analyzeOptions{keyword: "solar panel"})
	require.NoError(t, err)

	count, ok := snap.Count("solar panel")
	require.True(t, ok)
	assert.Equal(t, 1, count)
	assert.Equal(t, env.cfg.Constraints.Chars, snap.CharRange)
	assert.True(t, snap.ValidCharCount)
}

func TestAnalyzeDraft_Morphemes(t *testing.T) {
	env := newTestEnvironment(t)
	env.cfg.Terms.Morphemes = []string{"installer"}

	snap, err := analyzeDraft(env, testDraft, &analyzeOptions{keyword: "solar panel", morphemes: []string{"roof"}})
	require.NoError(t, err)

	_, ok := snap.Count("installer")
	assert.True(t, ok)
	n, ok := snap.Count("roof")
	assert.True(t, ok)
	assert.Equal(t, 1, n)
}

func TestAnalyzeDraft_NoKeyword(t *testing.T) {
	_, err := analyzeDraft(newTestEnvironment(t), testDraft, &analyzeOptions{keyword: "  "})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "태양광...", truncate("태양광 패널 설치 비용", 6))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

func TestJoinTopics(t *testing.T) {
	assert.Equal(t, "seo, korean", joinTopics([]string{"seo", "korean"}, 40))
	assert.Equal(t, "seo, ...", joinTopics([]string{"seo", "a-very-long-topic-name"}, 10))
	assert.Empty(t, joinTopics(nil, 10))
}

func TestShortKey(t *testing.T) {
	assert.Equal(t, "0123456789ab", shortKey("0123456789abcdef"))
	assert.Equal(t, "abc", shortKey("abc"))
}
