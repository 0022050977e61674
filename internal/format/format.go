// Package format prepares optimized posts for publishing.
package format

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MobileWidth is the number of visible characters per line on a phone screen.
const MobileWidth = 23

var (
	listItem     = regexp.MustCompile(`^(?:[-*+]\s|\d+[.)]\s)`)
	citationMark = regexp.MustCompile(`\[\d+\]`)
)

// ForMobile wraps prose lines at MobileWidth visible characters.
func ForMobile(text string) string {
	return Wrap(text, MobileWidth)
}

// Wrap breaks prose lines so each holds at most width non-space characters.
// Headings, list items and blank lines are left as they are. A single word
// longer than width stays on its own line.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || listItem.MatchString(trimmed) {
			out = append(out, line)
			continue
		}
		out = append(out, wrapLine(trimmed, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	var (
		out     []string
		current []string
		visible int
	)
	for _, word := range strings.Fields(line) {
		n := utf8.RuneCountInString(word)
		if len(current) > 0 && visible+n > width {
			out = append(out, strings.Join(current, " "))
			current, visible = nil, 0
		}
		current = append(current, word)
		visible += n
	}
	if len(current) > 0 {
		out = append(out, strings.Join(current, " "))
	}
	return out
}

// StripCitationMarks removes numeric citation marks such as "[3]".
func StripCitationMarks(text string) string {
	return citationMark.ReplaceAllString(text, "")
}
