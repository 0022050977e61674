package substitute

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	jsonArray = regexp.MustCompile(`(?s)\[.*?\]`)
	listItem  = regexp.MustCompile(`(?m)^\s*(?:[-*]|\d+\.)\s*([^:\n]+?)\s*(?::.*)?$`)
	quoted    = regexp.MustCompile(`["']([^"'\n]+)["']`)
)

// Parse extracts replacements from a model answer. It tries a JSON array,
// then a bullet or numbered list, then a comma-separated line, then quoted
// words. Empty entries and the term itself are dropped; at most
// MaxSubstitutes are returned.
func Parse(content, term string) []string {
	if m := jsonArray.FindString(content); m != "" {
		var items []string
		if err := json.Unmarshal([]byte(m), &items); err == nil {
			return clean(items, term)
		}
	}
	if ms := listItem.FindAllStringSubmatch(content, -1); len(ms) > 0 {
		items := make([]string, 0, len(ms))
		for _, m := range ms {
			items = append(items, m[1])
		}
		if out := clean(items, term); len(out) > 0 {
			return out
		}
	}
	if parts := strings.Split(content, ","); len(parts) > 1 {
		if out := clean(parts, term); len(out) > 0 {
			return out
		}
	}
	var items []string
	for _, m := range quoted.FindAllStringSubmatch(content, -1) {
		items = append(items, m[1])
	}
	return clean(items, term)
}

func clean(items []string, term string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, it := range items {
		it = strings.TrimSpace(strings.Trim(strings.TrimSpace(it), `"'`))
		if it == "" || strings.EqualFold(it, term) || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
		if len(out) == MaxSubstitutes {
			break
		}
	}
	return out
}
