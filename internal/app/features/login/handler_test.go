package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/contacthub/internal/app/backend"
	"github.com/dalemusser/contacthub/internal/app/features/errors"
	"github.com/dalemusser/contacthub/internal/app/features/login"
	"github.com/dalemusser/contacthub/internal/app/resources"
	"github.com/dalemusser/contacthub/internal/app/store/fallback"
	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/dalemusser/contacthub/internal/app/system/authflow"
	"github.com/dalemusser/contacthub/internal/app/system/idp"
	"github.com/dalemusser/contacthub/internal/testutil"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// bootTemplates stands up a real template engine over the registered sets so
// handlers can render end to end.
func bootTemplates(t *testing.T) {
	t.Helper()
	resources.LoadSharedTemplates()
	eng := templates.New(false)
	if err := eng.Boot(zap.NewNop()); err != nil {
		t.Fatalf("boot template engine: %v", err)
	}
	templates.UseEngine(eng, zap.NewNop())
}

type testEnv struct {
	handler    *login.Handler
	sm         *auth.SessionManager
	fb         *fallback.Store
	refreshers *authflow.RefresherSet
}

func newTestEnv(t *testing.T, idpURL string) *testEnv {
	t.Helper()

	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session", "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	fb := fallback.New(t.TempDir(), zap.NewNop())
	sm.SetWiper(fb)

	idpClient := idp.New(idp.Config{BaseURL: idpURL, APIKey: "k", ProjectID: "p"}, zap.NewNop())
	api := backend.New("http://backend.invalid", zap.NewNop())
	refreshers := authflow.NewRefresherSet(zap.NewNop())
	resolver := authflow.NewResolver(fb, api, idpClient, zap.NewNop())
	errLog := errors.NewErrorLogger(zap.NewNop())

	return &testEnv{
		handler:    login.NewHandler(sm, errLog, idpClient, fb, refreshers, resolver, "http://app.test", zap.NewNop()),
		sm:         sm,
		fb:         fb,
		refreshers: refreshers,
	}
}

func TestHandleDemoStart_PersistsIdentityAndSignsIn(t *testing.T) {
	env := newTestEnv(t, "http://idp.invalid")

	req := httptest.NewRequest("POST", "/login/demo", nil)
	rec := httptest.NewRecorder()
	env.handler.HandleDemoStart(rec, req)

	testutil.AssertRedirect(t, rec, http.StatusSeeOther, "/dashboard")

	id, err := env.fb.DemoIdentity()
	if err != nil || id == nil {
		t.Fatalf("demo identity not persisted: %v", err)
	}
	contacts, err := env.fb.Contacts()
	if err != nil || len(contacts) == 0 {
		t.Fatalf("demo contacts not seeded: %v", err)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie after demo start")
	}
}

func TestHandleDemoStart_SurvivesReload(t *testing.T) {
	env := newTestEnv(t, "http://idp.invalid")

	env.handler.HandleDemoStart(httptest.NewRecorder(), httptest.NewRequest("POST", "/login/demo", nil))

	// A later visit to /login resolves the persisted demo identity and goes
	// straight to the dashboard, with no form.
	req := httptest.NewRequest("GET", "/login", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeLogin(rec, req)

	testutil.AssertRedirect(t, rec, http.StatusSeeOther, "/dashboard")
}

func TestHandleLoginPost_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/sessions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","expires_in":3600,
			"user":{"id":"u1","name":"Jane Smith","email":"jane@example.com","tenant_id":"t1"}}`))
	}))
	defer srv.Close()

	env := newTestEnv(t, srv.URL)

	form := url.Values{"email": {"jane@example.com"}, "password": {"secret"}}
	req := testutil.FormRequest("/login", form)
	rec := httptest.NewRecorder()
	env.handler.HandleLoginPost(rec, req)

	testutil.AssertRedirect(t, rec, http.StatusSeeOther, "/dashboard")
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie")
	}
	if tok := env.refreshers.TokenFor("u1"); tok != "at-1" {
		t.Errorf("refresher not registered for u1, TokenFor = %q", tok)
	}
}

func TestHandleLoginPost_ReturnURLHonored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","expires_in":3600,
			"user":{"id":"u1","name":"Jane","email":"jane@example.com"}}`))
	}))
	defer srv.Close()

	env := newTestEnv(t, srv.URL)

	form := url.Values{"email": {"jane@example.com"}, "password": {"secret"}, "return": {"/contacts?page=2"}}
	rec := httptest.NewRecorder()
	env.handler.HandleLoginPost(rec, testutil.FormRequest("/login", form))

	testutil.AssertRedirect(t, rec, http.StatusSeeOther, "/contacts")
}

func TestHandleLoginPost_InvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	bootTemplates(t)
	env := newTestEnv(t, srv.URL)

	form := url.Values{"email": {"jane@example.com"}, "password": {"wrong"}}
	rec := httptest.NewRecorder()
	env.handler.HandleLoginPost(rec, testutil.FormRequest("/login", form))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want the re-rendered form with 200", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "" {
		t.Errorf("rejected credentials must not redirect, got %q", loc)
	}
	if tok := env.refreshers.TokenFor("u1"); tok != "" {
		t.Error("rejected credentials must not register a refresher")
	}
}

func TestHandleSSO_RedirectsToProvider(t *testing.T) {
	env := newTestEnv(t, "https://idp.example.com")

	req := httptest.NewRequest("GET", "/login/sso", nil)
	rec := httptest.NewRecorder()
	env.handler.HandleSSO(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "https://idp.example.com/v1/authorize?") {
		t.Errorf("Location = %q, want provider authorize URL", loc)
	}
	if !strings.Contains(loc, url.QueryEscape("http://app.test/auth/callback")) {
		t.Errorf("redirect URI missing from %q", loc)
	}
}
