package search_test

import (
	"testing"

	"github.com/dalemusser/contacthub/internal/app/system/search"
)

func TestMatches_CaseInsensitive(t *testing.T) {
	if !search.Matches("DOE", "John", "Doe", "john.doe@example.com") {
		t.Error("expected uppercase query to match")
	}
	if search.Matches("doe", "Jane", "Smith", "jane.smith@example.com") {
		t.Error("expected no match for unrelated fields")
	}
}

func TestMatches_EmptyQueryMatchesAll(t *testing.T) {
	if !search.Matches("", "anything") {
		t.Error("empty query should match")
	}
	if !search.Matches("   ") {
		t.Error("whitespace query should match even with no fields")
	}
}

func TestMatches_Substring(t *testing.T) {
	if !search.Matches("acme", "Wile E.", "Coyote", "wile@acme-corp.com") {
		t.Error("expected substring match inside email")
	}
}

func TestMatchesColumn(t *testing.T) {
	if !search.MatchesColumn("smi", "Jane Smith") {
		t.Error("expected substring column match")
	}
	if search.MatchesColumn("doe", "Jane Smith") {
		t.Error("expected column mismatch")
	}
	if !search.MatchesColumn("", "Jane Smith") {
		t.Error("empty column filter should match")
	}
}

func TestMatchesExact(t *testing.T) {
	if !search.MatchesExact("Active", "active") {
		t.Error("expected case-insensitive exact match")
	}
	if search.MatchesExact("active", "inactive") {
		t.Error("substring must not satisfy an exact filter")
	}
	if !search.MatchesExact("", "pending") {
		t.Error("empty exact filter should match")
	}
}

func TestMatchesAny(t *testing.T) {
	tags := []string{"vip", "Newsletter"}
	if !search.MatchesAny("newsletter", tags) {
		t.Error("expected folded tag match")
	}
	if search.MatchesAny("new", tags) {
		t.Error("tag filter is whole-value, not substring")
	}
	if !search.MatchesAny("", nil) {
		t.Error("empty tag filter should match")
	}
}
