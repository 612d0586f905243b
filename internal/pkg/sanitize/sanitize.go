// Package sanitize strips markup from user-supplied text before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// maxPasses bounds the strip/unescape loop for entity-encoded markup such as "&lt;b&gt;"
const maxPasses = 4

// Text removes every HTML tag and trims surrounding whitespace.
// The result is plain text: entities are decoded, so "R&D" stays "R&D".
func Text(input string) string {
	out := input
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(strict.Sanitize(out))
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}

// TextMap sanitizes the values of a form submission. Keys are field labels and are kept as sent.
func TextMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = Text(v)
	}
	return out
}
