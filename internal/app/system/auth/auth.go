// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/contacthub/internal/domain/models"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session keys & context plumbing                                            |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey      = "is_authenticated"
	idKey          = "identity_id"
	nameKey        = "identity_name"
	emailKey       = "identity_email"
	avatarKey      = "identity_avatar"
	verifiedKey    = "identity_verified"
	providerKey    = "identity_provider"
	tenantKey      = "identity_tenant"
	accessTokenKey = "access_token"
	refreshTokKey  = "refresh_token"
	tokenExpiryKey = "token_expiry" // unix seconds
)

type ctxKey string

const (
	currentIdentityKey ctxKey = "currentIdentity"
	sessionTokenKey    ctxKey = "sessionToken"
)

// CurrentIdentity returns the request's identity and a "found?" flag.
// It is populated by LoadIdentity for signed-in sessions.
func CurrentIdentity(r *http.Request) (*models.Identity, bool) {
	id, ok := r.Context().Value(currentIdentityKey).(*models.Identity)
	return id, ok
}

// Token returns the bearer token stored for the request's session, or ""
// for demo sessions and anonymous requests.
func Token(r *http.Request) string {
	tok, _ := r.Context().Value(sessionTokenKey).(string)
	return tok
}

// WithTestIdentity injects an identity into the request context for tests,
// simulating what LoadIdentity does.
func WithTestIdentity(r *http.Request, id *models.Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentIdentityKey, id))
}

// WithTestToken injects a session token into the request context for tests.
func WithTestToken(r *http.Request, token string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), sessionTokenKey, token))
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// Wiper clears state that must die with the session. The fallback store
// implements it; SessionManager calls it from Clear so persisted demo data
// never outlives a sign-out.
type Wiper interface {
	Clear() error
}

// SessionManager is the single source of truth for "who is logged in": it
// owns the cookie session holding the identity and its bearer token, the
// middleware that surfaces them, and the guard on protected routes.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
	wiper Wiper
}

// NewSessionManager builds a SessionManager over a cookie store. The
// `secure` flag controls Secure cookies and the SameSite mode; maxAge
// bounds how long an idle session cookie survives.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetWiper registers the store wiped alongside the session on Clear.
func (sm *SessionManager) SetWiper(w Wiper) {
	sm.wiper = w
}

// GetSession returns the request's session, tolerating stale or tampered
// cookies: a decode failure yields a fresh empty session instead of an
// error, so key rotation never locks users out.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			sm.log.Debug("stale session cookie, starting fresh", zap.Error(err))
			return sess, nil
		}
		return sess, err
	}
	return sess, nil
}

// SignIn stores the identity (and, for provider identities, its token) in
// the session. Exactly one identity is current afterward: all previous
// session values are replaced.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, id models.Identity, tok *oauth2.Token) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		return err
	}

	sess.Values = map[any]any{
		isAuthKey:   true,
		idKey:       id.ID,
		nameKey:     id.Name,
		emailKey:    id.Email,
		avatarKey:   id.AvatarURL,
		verifiedKey: id.EmailVerified,
		providerKey: id.Provider,
		tenantKey:   id.TenantID,
	}
	if tok != nil {
		sess.Values[accessTokenKey] = tok.AccessToken
		sess.Values[refreshTokKey] = tok.RefreshToken
		if !tok.Expiry.IsZero() {
			sess.Values[tokenExpiryKey] = tok.Expiry.Unix()
		}
	}

	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	sm.log.Info("signed in",
		zap.String("identity_id", id.ID),
		zap.String("provider", id.Provider))
	return nil
}

// Clear removes the session cookie and wipes the fallback store. Calling it
// with no current session is a no-op; both halves are cleared regardless of
// errors in the other.
func (sm *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	var firstErr error

	sess, err := sm.GetSession(r)
	if err == nil {
		sess.Values = map[any]any{}
		// Deleting requires the same Path/Domain the cookie was set with.
		opts := *sm.store.Options
		opts.MaxAge = -1
		sess.Options = &opts
		if err := sess.Save(r, w); err != nil {
			firstErr = fmt.Errorf("clear session: %w", err)
		}
	} else {
		firstErr = err
	}

	if sm.wiper != nil {
		if err := sm.wiper.Clear(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RefreshToken returns the session's refresh token, if any.
func (sm *SessionManager) RefreshToken(r *http.Request) string {
	sess, err := sm.GetSession(r)
	if err != nil {
		return ""
	}
	tok, _ := sess.Values[refreshTokKey].(string)
	return tok
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadIdentity injects the session's identity and token into the request
// context when the session is authenticated. Anonymous requests pass
// through untouched.
func (sm *SessionManager) LoadIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.GetSession(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			id := &models.Identity{
				ID:            getString(sess, idKey),
				Name:          getString(sess, nameKey),
				Email:         getString(sess, emailKey),
				AvatarURL:     getString(sess, avatarKey),
				Provider:      getString(sess, providerKey),
				TenantID:      getString(sess, tenantKey),
				EmailVerified: getBool(sess, verifiedKey),
			}
			ctx := context.WithValue(r.Context(), currentIdentityKey, id)
			if tok := getString(sess, accessTokenKey); tok != "" {
				ctx = context.WithValue(ctx, sessionTokenKey, tok)
			}
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn gates protected routes on a loaded identity.
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentIdentity(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		ret := url.QueryEscape(currentURI(r))

		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", "/login?return="+ret)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if wantsHTML(r) {
			http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
			return
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

// helpers

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func getBool(s *sessions.Session, key string) bool {
	v, _ := s.Values[key].(bool)
	return v
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}
