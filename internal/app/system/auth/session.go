// internal/app/system/auth/session.go
package auth

import (
	"net/http"

	"github.com/dalemusser/contacthub/internal/domain/models"
)

// RequestSession binds a SessionManager to one request/response pair so the
// auth-resolution code can read and write the current identity without
// knowing about cookies. It satisfies authflow.SessionStore.
type RequestSession struct {
	sm *SessionManager
	w  http.ResponseWriter
	r  *http.Request
}

// Request adapts the manager to a single request.
func (sm *SessionManager) Request(w http.ResponseWriter, r *http.Request) *RequestSession {
	return &RequestSession{sm: sm, w: w, r: r}
}

// Current returns the identity already loaded for this request, falling
// back to a direct session read when the middleware has not run.
func (s *RequestSession) Current() (*models.Identity, bool) {
	if id, ok := CurrentIdentity(s.r); ok {
		return id, true
	}

	sess, err := s.sm.GetSession(s.r)
	if err != nil {
		return nil, false
	}
	if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
		return nil, false
	}
	return &models.Identity{
		ID:            getString(sess, idKey),
		Name:          getString(sess, nameKey),
		Email:         getString(sess, emailKey),
		AvatarURL:     getString(sess, avatarKey),
		Provider:      getString(sess, providerKey),
		TenantID:      getString(sess, tenantKey),
		EmailVerified: getBool(sess, verifiedKey),
	}, true
}

// SetCurrent stores the identity as the session's signed-in user. Token
// material, when there is any, is written separately by SignIn.
func (s *RequestSession) SetCurrent(id models.Identity) error {
	return s.sm.SignIn(s.w, s.r, id, nil)
}

// Clear delegates to SessionManager.Clear.
func (s *RequestSession) Clear() error {
	return s.sm.Clear(s.w, s.r)
}
