package validators

import (
	"html"
	"strings"
)

// SanitizeString trims and HTML-escapes free text before it is stored.
func SanitizeString(input string) string {
	return html.EscapeString(strings.TrimSpace(input))
}

func sanitizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, SanitizeString(v))
	}
	return out
}

func sanitizePtr(value *string) *string {
	if value == nil {
		return nil
	}
	s := SanitizeString(*value)
	return &s
}
