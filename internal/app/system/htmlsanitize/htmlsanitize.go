// internal/app/system/htmlsanitize/htmlsanitize.go
//
// Sanitation for user-entered form values. Contact fields are plain text:
// anything that survives bluemonday's strict policy as markup was an
// injection attempt, so Field strips tags entirely rather than allowing a
// safe subset.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Field sanitizes a single-line form value: strips all HTML, unescapes the
// entities bluemonday introduced, and trims surrounding whitespace.
func Field(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Fields sanitizes a list of values in place and returns it, dropping
// entries that are empty after sanitation. Used for tag lists.
func Fields(vals []string) []string {
	out := vals[:0]
	for _, v := range vals {
		if c := Field(v); c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
