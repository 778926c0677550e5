package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/contacthub/internal/app/system/htmlsanitize"
)

func TestField_PlainTextUnchanged(t *testing.T) {
	if got := htmlsanitize.Field("Jane Smith"); got != "Jane Smith" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestField_Empty(t *testing.T) {
	if got := htmlsanitize.Field(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestField_StripsScript(t *testing.T) {
	if got := htmlsanitize.Field(`<script>alert('xss')</script>Jane`); got != "alert('xss')Jane" && got != "Jane" {
		// StrictPolicy drops the tags; the inner text may survive.
		t.Errorf("expected script tags stripped, got %q", got)
	}
}

func TestField_StripsMarkup(t *testing.T) {
	if got := htmlsanitize.Field("<b>Acme</b> Corp"); got != "Acme Corp" {
		t.Errorf("expected markup stripped, got %q", got)
	}
}

func TestField_TrimsWhitespace(t *testing.T) {
	if got := htmlsanitize.Field("  Jane  "); got != "Jane" {
		t.Errorf("expected trimmed value, got %q", got)
	}
}

func TestField_KeepsAmpersand(t *testing.T) {
	if got := htmlsanitize.Field("Smith & Co"); got != "Smith & Co" {
		t.Errorf("expected literal ampersand preserved, got %q", got)
	}
}

func TestFields_DropsEmptied(t *testing.T) {
	got := htmlsanitize.Fields([]string{"vip", "<script></script>", "  "})
	if len(got) != 1 || got[0] != "vip" {
		t.Errorf("expected only 'vip' to survive, got %v", got)
	}
}

func TestFields_AllEmptied(t *testing.T) {
	if got := htmlsanitize.Fields([]string{"", "  "}); got != nil {
		t.Errorf("expected nil for fully emptied list, got %v", got)
	}
}
