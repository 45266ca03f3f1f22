// Package text normalises user supplied display strings.
package text

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Clean strips markup and surrounding whitespace from a display value.
func Clean(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(value)))
}

// CleanAll applies Clean to each entry, dropping entries that end up empty.
func CleanAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if c := Clean(v); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Email lowercases and trims an address.
func Email(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
