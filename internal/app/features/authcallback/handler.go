// internal/app/features/authcallback/handler.go
package authcallback

import (
	"net/http"

	"github.com/dalemusser/contacthub/internal/app/store/fallback"
	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/dalemusser/contacthub/internal/app/system/authflow"
	"github.com/dalemusser/contacthub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// Handler completes the external-provider redirect flow. The provider sends
// the browser back here with a one-time session_id; the resolver exchanges
// it with the backend exactly once.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Resolver   *authflow.Resolver
	Fallback   *fallback.Store
}

func NewHandler(sessionMgr *auth.SessionManager, resolver *authflow.Resolver, fb *fallback.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Resolver:   resolver,
		Fallback:   fb,
	}
}

// ServeCallback handles GET /auth/callback?session_id=...
//
// Success lands on the dashboard; any failure lands back on the login page.
// Reloading the callback URL never repeats the exchange.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	sessionID := query.Get(r, "session_id")
	if sessionID == "" {
		h.Log.Warn("auth callback without session_id")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "session exchange")
	defer cancel()

	res := h.Resolver.Resolve(ctx, h.SessionMgr.Request(w, r), sessionID, "")
	if res.State != authflow.StateAuthenticated {
		http.Redirect(w, r, "/login?error=sso", http.StatusSeeOther)
		return
	}

	// A real sign-in supersedes any stale demo data on this machine.
	if !res.Identity.IsDemo() {
		if err := h.Fallback.Clear(); err != nil {
			h.Log.Warn("clear stale demo data", zap.Error(err))
		}
	}

	h.Log.Info("redirect sign-in completed", zap.String("identity_id", res.Identity.ID))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
