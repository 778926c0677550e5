package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func TestRequireSignedIn_NoIdentity_RedirectsToLogin(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("protected content"))
	}))

	req := httptest.NewRequest("GET", "/contacts", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/login") {
		t.Errorf("expected redirect to /login, got %q", location)
	}
	if !strings.Contains(location, "return=") {
		t.Errorf("expected return param preserved, got %q", location)
	}
}

func TestRequireSignedIn_NoIdentity_API_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/data", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireSignedIn_NoIdentity_HTMX_ReturnsHXRedirect(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/contacts", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if hx := rec.Header().Get("HX-Redirect"); !strings.HasPrefix(hx, "/login") {
		t.Errorf("expected HX-Redirect to /login, got %q", hx)
	}
}

func TestRequireSignedIn_WithIdentity_Proceeds(t *testing.T) {
	sm := newTestSessionManager(t)

	called := false
	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/contacts", nil)
	req = auth.WithTestIdentity(req, &models.Identity{ID: "u1", Provider: models.ProviderDemo})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("expected handler to be called")
	}
}

func TestSignIn_LoadIdentity_RoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)

	id := models.Identity{
		ID: "u1", Name: "Jane Smith", Email: "jane@example.com",
		Provider: models.ProviderPassword, TenantID: "t1", EmailVerified: true,
	}
	tok := &oauth2.Token{AccessToken: "at-1", RefreshToken: "rt-1", Expiry: time.Now().Add(time.Hour)}

	// Sign in and capture the cookie.
	signReq := httptest.NewRequest("POST", "/login", nil)
	signRec := httptest.NewRecorder()
	if err := sm.SignIn(signRec, signReq, id, tok); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	cookies := signRec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	// Replay the cookie through the middleware.
	var got *models.Identity
	var gotToken string
	handler := sm.LoadIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentIdentity(r)
		gotToken = auth.Token(r)
	}))
	req := httptest.NewRequest("GET", "/dashboard", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected identity to load from session")
	}
	if got.Email != "jane@example.com" || got.TenantID != "t1" || !got.EmailVerified {
		t.Errorf("identity mismatch: %+v", got)
	}
	if gotToken != "at-1" {
		t.Errorf("token = %q, want at-1", gotToken)
	}
}

type recordingWiper struct {
	calls int
}

func (w *recordingWiper) Clear() error {
	w.calls++
	return nil
}

func TestClear_WipesFallbackAndIsIdempotent(t *testing.T) {
	sm := newTestSessionManager(t)
	wiper := &recordingWiper{}
	sm.SetWiper(wiper)

	req := httptest.NewRequest("POST", "/logout", nil)
	rec := httptest.NewRecorder()
	if err := sm.Clear(rec, req); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if wiper.calls != 1 {
		t.Errorf("wiper called %d times, want 1", wiper.calls)
	}

	// No current session: still a no-op success, and the wiper runs again.
	if err := sm.Clear(httptest.NewRecorder(), httptest.NewRequest("POST", "/logout", nil)); err != nil {
		t.Errorf("Clear with no session errored: %v", err)
	}
}

func TestClear_SessionCookieExpired(t *testing.T) {
	sm := newTestSessionManager(t)

	req := httptest.NewRequest("POST", "/logout", nil)
	rec := httptest.NewRecorder()
	if err := sm.Clear(rec, req); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge < 0 {
			found = true
		}
	}
	if !found {
		t.Error("expected the session cookie to be expired")
	}
}

func TestCurrentIdentity_NoIdentity(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	id, ok := auth.CurrentIdentity(req)
	if ok || id != nil {
		t.Error("expected no identity in a bare request")
	}
}
