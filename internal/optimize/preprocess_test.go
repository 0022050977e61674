package optimize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreprocess_NormalizesWhitespace(t *testing.T) {
	input := "Line 1\r\n\r\n\r\n\r\nLine 2   \n\n\n\nLine 3\t"
	result, stats := Preprocess(input)

	assert.Equal(t, "Line 1\n\nLine 2\n\nLine 3\n", result)
	assert.Greater(t, stats.BlankLinesRemoved, 0)
	assert.Equal(t, 2, stats.LinesTrimmed)
}

func TestPreprocess_StripsWrappingFence(t *testing.T) {
	input := "```markdown\n## 제목\n\n본문입니다.\n```"
	result, stats := Preprocess(input)

	assert.Equal(t, "## 제목\n\n본문입니다.\n", result)
	assert.True(t, stats.FenceStripped)
}

func TestPreprocess_KeepsInnerFence(t *testing.T) {
	input := "Intro.\n\n```go\nfmt.Println()\n```\n\nOutro."
	result, stats := Preprocess(input)

	assert.Contains(t, result, "```go")
	assert.False(t, stats.FenceStripped)
}

func TestPreprocess_RemovesRepeatedParagraphs(t *testing.T) {
	input := "First paragraph.\n\nSecond paragraph.\n\nSecond paragraph.\n\nThird.\n\nFirst paragraph."
	result, stats := Preprocess(input)

	assert.Equal(t, 1, stats.DuplicatesRemoved)
	assert.Equal(t, 1, strings.Count(result, "Second paragraph."))
	// only adjacent repeats are dropped
	assert.Equal(t, 2, strings.Count(result, "First paragraph."))
}

func TestPreprocess_NormalizesUnicode(t *testing.T) {
	decomposed := "\u1100\u1161" // 가 as conjoining jamo
	result, stats := Preprocess(decomposed)

	assert.Equal(t, "\uac00\n", result)
	assert.True(t, stats.UnicodeNormalized)
}

func TestPreprocess_Idempotent(t *testing.T) {
	input := "## Heading\n\n\n\nBody text.  \n\n- item\n- item\n"
	once, _ := Preprocess(input)
	twice, stats := Preprocess(once)

	assert.Equal(t, once, twice)
	assert.Equal(t, PreprocessStats{}, stats)
}
