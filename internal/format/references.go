package format

import (
	"regexp"
	"strings"

	"github.com/HartBrook/keyfit/internal/analysis"
)

// Reference is one linked entry of a references section.
type Reference struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Date   string `json:"date,omitempty"`
	Source string `json:"source,omitempty"`
}

// referenceLink matches "[title](url)" with an optional " (date)" and " - source" tail.
var referenceLink = regexp.MustCompile(`\[([^\]]*)\]\((https?://[^\s)]+)\)(?:\s*\(([^)]*)\))?(?:\s+-\s+(.+))?`)

// ExtractReferences returns the links found in the references section of text.
// Text without the marker has no references.
func ExtractReferences(text, marker string) []Reference {
	_, refs := analysis.SplitReferences(text, marker)
	if refs == "" {
		return nil
	}
	var out []Reference
	for _, line := range strings.Split(refs, "\n") {
		for _, m := range referenceLink.FindAllStringSubmatch(line, -1) {
			out = append(out, Reference{
				Title:  strings.TrimSpace(m[1]),
				URL:    strings.TrimSpace(m[2]),
				Date:   strings.TrimSpace(m[3]),
				Source: strings.TrimSpace(m[4]),
			})
		}
	}
	return out
}
