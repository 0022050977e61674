package llm

import "strings"

// CleanOutput strips what models wrap around the text they were asked for:
// surrounding whitespace, CRLF line endings and a markdown code fence.
func CleanOutput(text string) string {
	t := strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		lang := strings.ToLower(strings.TrimSpace(t[:nl]))
		switch lang {
		case "", "markdown", "md", "text", "txt":
			t = t[nl+1:]
		}
	}
	if i := strings.LastIndex(t, "```"); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}
