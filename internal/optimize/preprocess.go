package optimize

import (
	"regexp"
	"strings"

	"github.com/HartBrook/keyfit/internal/llm"
	"github.com/HartBrook/keyfit/internal/terms"
)

// PreprocessStats tracks what changes were made during preprocessing.
type PreprocessStats struct {
	BlankLinesRemoved int  `json:"blank_lines_removed"`
	DuplicatesRemoved int  `json:"duplicates_removed"`
	LinesTrimmed      int  `json:"lines_trimmed"`
	FenceStripped     bool `json:"fence_stripped"`
	UnicodeNormalized bool `json:"unicode_normalized"`
}

var blankRun = regexp.MustCompile(`\n{3,}`)

// Preprocess performs deterministic cleanup on a draft before analysis. It
// normalizes line endings and Unicode, strips a fence wrapping the whole
// draft, drops paragraphs that repeat the one before them, trims trailing
// whitespace and collapses runs of blank lines.
func Preprocess(content string) (string, PreprocessStats) {
	var stats PreprocessStats

	content = strings.ReplaceAll(content, "\r\n", "\n")

	if normalized := terms.Normalize(content); normalized != content {
		stats.UnicodeNormalized = true
		content = normalized
	}

	if unfenced := llm.CleanOutput(content); unfenced != strings.TrimSpace(content) {
		stats.FenceStripped = true
		content = unfenced
	}

	content, stats.LinesTrimmed = trimTrailingWhitespace(content)

	blanksBefore := countBlankLines(content)
	content = blankRun.ReplaceAllString(content, "\n\n")
	stats.BlankLinesRemoved = blanksBefore - countBlankLines(content)

	content, stats.DuplicatesRemoved = removeRepeatedParagraphs(content)

	return strings.TrimSpace(content) + "\n", stats
}

func countBlankLines(content string) int {
	count := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			count++
		}
	}
	return count
}

// removeRepeatedParagraphs drops a paragraph identical to the one directly
// before it, a common artifact of generated drafts.
func removeRepeatedParagraphs(content string) (string, int) {
	paragraphs := strings.Split(content, "\n\n")
	out := make([]string, 0, len(paragraphs))
	removed := 0
	for _, p := range paragraphs {
		if len(out) > 0 && strings.TrimSpace(p) != "" && strings.TrimSpace(p) == strings.TrimSpace(out[len(out)-1]) {
			removed++
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, "\n\n"), removed
}

func trimTrailingWhitespace(content string) (string, int) {
	lines := strings.Split(content, "\n")
	trimmed := 0
	for i, line := range lines {
		if t := strings.TrimRight(line, " \t"); t != line {
			lines[i] = t
			trimmed++
		}
	}
	return strings.Join(lines, "\n"), trimmed
}
