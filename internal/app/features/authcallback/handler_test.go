package authcallback_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/contacthub/internal/app/backend"
	"github.com/dalemusser/contacthub/internal/app/features/authcallback"
	"github.com/dalemusser/contacthub/internal/app/store/fallback"
	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/dalemusser/contacthub/internal/app/system/authflow"
	"github.com/dalemusser/contacthub/internal/app/system/idp"
	"github.com/dalemusser/contacthub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, backendURL string) (*authcallback.Handler, *fallback.Store) {
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
	idpClient := idp.New(idp.Config{BaseURL: "http://idp.invalid"}, zap.NewNop())
	resolver := authflow.NewResolver(fb, api, idpClient, zap.NewNop())

	return authcallback.NewHandler(sm, resolver, fb, zap.NewNop()), fb
}

func TestServeCallback_ExchangeOnce(t *testing.T) {
	var posts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/api/auth/session" {
			posts.Add(1)
			w.Write([]byte(`{"id":"u1","name":"Jane Smith","email":"jane@example.com","tenant_id":"t1"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	h, _ := newTestHandler(t, srv.URL)

	// First arrival exchanges and signs in.
	req1 := httptest.NewRequest("GET", "/auth/callback?session_id=sid-1", nil)
	rec1 := httptest.NewRecorder()
	h.ServeCallback(rec1, req1)
	testutil.AssertRedirect(t, rec1, http.StatusSeeOther, "/dashboard")

	// A rapid second arrival with the same one-time id (the browser replays
	// the callback) settles from the session without a second exchange.
	req2 := httptest.NewRequest("GET", "/auth/callback?session_id=sid-1", nil)
	for _, c := range rec1.Result().Cookies() {
		req2.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	h.ServeCallback(rec2, req2)
	testutil.AssertRedirect(t, rec2, http.StatusSeeOther, "/dashboard")

	if got := posts.Load(); got != 1 {
		t.Fatalf("backend exchange ran %d times, want exactly 1", got)
	}
}

func TestServeCallback_ExchangeFailureLandsOnLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	h, _ := newTestHandler(t, srv.URL)

	req := httptest.NewRequest("GET", "/auth/callback?session_id=sid-bad", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	testutil.AssertRedirect(t, rec, http.StatusSeeOther, "/login")
}

func TestServeCallback_MissingSessionID(t *testing.T) {
	h, _ := newTestHandler(t, "http://backend.invalid")

	req := httptest.NewRequest("GET", "/auth/callback", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	testutil.AssertRedirect(t, rec, http.StatusSeeOther, "/login")
}

func TestServeCallback_RealSignInClearsDemoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"u1","name":"Jane","email":"jane@example.com"}`))
	}))
	defer srv.Close()

	h, fb := newTestHandler(t, srv.URL)

	// A persisted demo identity would win resolution outright, so the stale
	// state here is an edited demo contact list.
	seeded, err := fb.Contacts()
	if err != nil {
		t.Fatalf("seed contacts: %v", err)
	}
	edited := append(seeded, testutil.Contact("Stale", "Edit"))
	if err := fb.SaveContacts(edited); err != nil {
		t.Fatalf("save contacts: %v", err)
	}

	req := httptest.NewRequest("GET", "/auth/callback?session_id=sid-1", nil)
	h.ServeCallback(httptest.NewRecorder(), req)

	// The edited list is gone; the next demo sign-in starts from seed data.
	reseeded, err := fb.Contacts()
	if err != nil {
		t.Fatalf("reload contacts: %v", err)
	}
	if len(reseeded) != len(seeded) {
		t.Errorf("contacts after sign-in = %d, want fresh seed of %d", len(reseeded), len(seeded))
	}
	for _, c := range reseeded {
		if c.FirstName == "Stale" {
			t.Error("edited demo contact survived a real sign-in")
		}
	}
}
