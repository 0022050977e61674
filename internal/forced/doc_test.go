package forced

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDoc_RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"single line",
		"\n\nleading blank lines\n",
		"# Title\nbody right under the title.\n\n- item one\n- item two\n\nclosing paragraph.\n",
		"para one.\n\n\n\npara two.",
		"```go\nx := 1\n\ny := 2\n```\n\nafter code.",
		"| a | b |\n|---|---|\n| 1 | 2 |\n",
	}
	for _, in := range inputs {
		assert.Equal(t, in, parseDoc(in).String())
	}
}

func TestParseDoc_Kinds(t *testing.T) {
	d := parseDoc("# Title\nfirst body line\nsecond body line\n\n- item\n- item\n\n## Sub\n\nlast.")
	require.Len(t, d.blocks, 5)
	assert.Equal(t, kindHeading, d.blocks[0].kind)
	assert.Equal(t, kindBody, d.blocks[1].kind)
	assert.Equal(t, "first body line\nsecond body line", d.blocks[1].text)
	assert.Equal(t, kindList, d.blocks[2].kind)
	assert.Equal(t, kindHeading, d.blocks[3].kind)
	assert.Equal(t, kindBody, d.blocks[4].kind)
	assert.Len(t, d.body(), 2)
}

func TestDoc_RemoveLastKeepsTrailingWhitespace(t *testing.T) {
	d := parseDoc("one.\n\ntwo.\n")
	d.remove(d.blocks[1])
	assert.Equal(t, "one.\n", d.String())
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"english", "First one. Second one! Third?", []string{"First one.", "Second one!", "Third?"}},
		{"decimal", "It costs 3.5 dollars. Cheap.", []string{"It costs 3.5 dollars.", "Cheap."}},
		{"korean", "식단이 중요합니다. 운동도 하세요.", []string{"식단이 중요합니다.", "운동도 하세요."}},
		{"quotes", `He said "stop." Then left.`, []string{`He said "stop."`, "Then left."}},
		{"no terminator", "just words", []string{"just words"}},
		{"ellipsis", "Wait... Now go.", []string{"Wait...", "Now go."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ss := splitSentences(tt.text)
			var got []string
			for _, s := range ss {
				got = append(got, s.text)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, joinSentences(ss))
		})
	}
}

func TestInsertAndRemoveSentence(t *testing.T) {
	ss := splitSentences("A. B. C.")
	ss = insertSentence(ss, 1, "X.")
	assert.Equal(t, "A. X. B. C.", joinSentences(ss))

	ss = insertSentence(ss, len(ss), "Z.")
	assert.Equal(t, "A. X. B. C. Z.", joinSentences(ss))

	ss = removeSentence(ss, len(ss)-1)
	assert.Equal(t, "A. X. B. C.", joinSentences(ss))
	ss = removeSentence(ss, 0)
	assert.Equal(t, "X. B. C.", joinSentences(ss))
}
