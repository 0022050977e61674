package analysis

import "strings"

// DefaultMarker is the heading that starts the references section.
const DefaultMarker = "## 참고자료"

const ruleLine = "---"

// SplitReferences separates the body from the trailing references section. The
// section starts at the first line beginning with marker and includes a
// horizontal rule directly above it. Without a marker the whole text is body.
func SplitReferences(text, marker string) (body, refs string) {
	if marker == "" {
		return text, ""
	}
	idx := markerIndex(text, marker)
	if idx < 0 {
		return text, ""
	}
	body, refs = text[:idx], text[idx:]

	trimmed := strings.TrimRight(body, " \t\r\n")
	if trimmed == ruleLine || strings.HasSuffix(trimmed, "\n"+ruleLine) {
		cut := len(trimmed) - len(ruleLine)
		body, refs = text[:cut], text[cut:]
	}
	return body, refs
}

// JoinReferences re-attaches a references section to an edited body.
func JoinReferences(body, refs string) string {
	if refs == "" {
		return body
	}
	body = strings.TrimRight(body, " \t\r\n")
	if body == "" {
		return refs
	}
	return body + "\n\n" + refs
}

func markerIndex(text, marker string) int {
	if strings.HasPrefix(text, marker) {
		return 0
	}
	if i := strings.Index(text, "\n"+marker); i >= 0 {
		return i + 1
	}
	return -1
}
