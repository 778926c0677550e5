package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/dalemusser/contacthub/internal/domain/models"
)

// AuthenticatedRequest builds a request with the identity already loaded
// into its context, as the session middleware would do.
func AuthenticatedRequest(method, target string, id *models.Identity) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	return auth.WithTestIdentity(r, id)
}

// FormRequest builds a POST request with an urlencoded form body.
func FormRequest(target string, form url.Values) *http.Request {
	r := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// AssertRedirect fails the test unless the recorder holds a redirect with
// the given status to a location starting with wantPrefix.
func AssertRedirect(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int, wantPrefix string) {
	t.Helper()
	if rec.Code != wantStatus {
		t.Fatalf("status = %d, want %d", rec.Code, wantStatus)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, wantPrefix) {
		t.Fatalf("Location = %q, want prefix %q", loc, wantPrefix)
	}
}
