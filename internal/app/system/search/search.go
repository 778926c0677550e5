// internal/app/system/search/search.go
package search

import (
	"strings"

	textfold "github.com/dalemusser/waffle/pantry/text"
)

// Fold lowercases and strips diacritics so queries like "Jose" match "José".
func Fold(s string) string {
	return textfold.Fold(strings.TrimSpace(s))
}

// Matches reports whether the folded query is a substring of any of the
// given fields. An empty query matches everything.
func Matches(query string, fields ...string) bool {
	q := Fold(query)
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(textfold.Fold(f), q) {
			return true
		}
	}
	return false
}

// MatchesColumn applies a per-column text filter: case-insensitive substring.
// An empty filter matches everything.
func MatchesColumn(filter, value string) bool {
	f := Fold(filter)
	if f == "" {
		return true
	}
	return strings.Contains(textfold.Fold(value), f)
}

// MatchesExact applies an enumerated-column filter: case-insensitive
// equality. An empty filter matches everything.
func MatchesExact(filter, value string) bool {
	f := strings.TrimSpace(strings.ToLower(filter))
	if f == "" {
		return true
	}
	return f == strings.ToLower(value)
}

// MatchesAny reports whether the filter equals any of the values, folded.
// Used for tag filters where a record carries several values.
func MatchesAny(filter string, values []string) bool {
	f := Fold(filter)
	if f == "" {
		return true
	}
	for _, v := range values {
		if textfold.Fold(v) == f {
			return true
		}
	}
	return false
}
