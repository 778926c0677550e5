package logout_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/contacthub/internal/app/backend"
	"github.com/dalemusser/contacthub/internal/app/features/logout"
	contactstore "github.com/dalemusser/contacthub/internal/app/store/contacts"
	"github.com/dalemusser/contacthub/internal/app/store/fallback"
	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/dalemusser/contacthub/internal/app/system/authflow"
	"github.com/dalemusser/contacthub/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

func newTestHandler(t *testing.T, backendURL string) (*logout.Handler, *auth.SessionManager, *fallback.Store, *authflow.RefresherSet) {
	t.Helper()

	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session", "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	fb := fallback.New(t.TempDir(), zap.NewNop())
	sm.SetWiper(fb)

	api := backend.New(backendURL, zap.NewNop())
	local := contactstore.NewLocal(fb, zap.NewNop())
	selector := contactstore.NewSelector(api, local, zap.NewNop())
	refreshers := authflow.NewRefresherSet(zap.NewNop())

	return logout.NewHandler(sm, api, selector, refreshers, zap.NewNop()), sm, fb, refreshers
}

func TestServeLogout_ClearsEverythingAndRedirects(t *testing.T) {
	var signouts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/api/auth/logout" {
			signouts.Add(1)
		}
	}))
	defer srv.Close()

	h, _, fb, refreshers := newTestHandler(t, srv.URL)

	id := testutil.PasswordIdentity()
	refreshers.StartFor(id.ID, authflow.NewRefresher(
		&oauth2.Token{AccessToken: "at-1"}, nil, time.Hour, zap.NewNop()))

	if err := fb.SetDemoIdentity(fallback.NewDemoIdentity()); err != nil {
		t.Fatalf("seed demo identity: %v", err)
	}

	req := testutil.AuthenticatedRequest("POST", "/logout", id)
	rec := httptest.NewRecorder()
	h.ServeLogout(rec, req)

	testutil.AssertRedirect(t, rec, http.StatusSeeOther, "/login")

	if got, _ := fb.DemoIdentity(); got != nil {
		t.Error("persisted demo identity must not outlive sign-out")
	}
	if tok := refreshers.TokenFor(id.ID); tok != "" {
		t.Error("refresher must be stopped at sign-out")
	}
	if signouts.Load() != 1 {
		t.Errorf("backend sign-out called %d times, want 1", signouts.Load())
	}
}

func TestServeLogout_BackendFailureStillSignsOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	h, _, _, _ := newTestHandler(t, srv.URL)

	req := testutil.AuthenticatedRequest("POST", "/logout", testutil.PasswordIdentity())
	req = auth.WithTestToken(req, "at-1")
	rec := httptest.NewRecorder()
	h.ServeLogout(rec, req)

	testutil.AssertRedirect(t, rec, http.StatusSeeOther, "/login")

	// The session cookie is expired regardless of the backend error.
	expired := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge < 0 {
			expired = true
		}
	}
	if !expired {
		t.Error("expected an expired session cookie")
	}
}

func TestServeLogout_ThenGuardedRouteRedirects(t *testing.T) {
	h, sm, _, _ := newTestHandler(t, "http://backend.invalid")

	h.ServeLogout(httptest.NewRecorder(), testutil.AuthenticatedRequest("POST", "/logout", testutil.DemoIdentity()))

	// A follow-up visit to a protected page, with no session, bounces to
	// the login screen.
	guarded := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("guarded handler must not run after sign-out")
	}))
	req := httptest.NewRequest("GET", "/contacts", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)

	testutil.AssertRedirect(t, rec, http.StatusSeeOther, "/login")
}

func TestServeLogout_HTMX(t *testing.T) {
	h, _, _, _ := newTestHandler(t, "http://backend.invalid")

	req := testutil.AuthenticatedRequest("POST", "/logout", testutil.DemoIdentity())
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeLogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if hx := rec.Header().Get("HX-Redirect"); hx != "/login" {
		t.Errorf("HX-Redirect = %q, want /login", hx)
	}
}
