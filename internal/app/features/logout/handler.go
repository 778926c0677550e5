// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/contacthub/internal/app/backend"
	contactstore "github.com/dalemusser/contacthub/internal/app/store/contacts"
	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/dalemusser/contacthub/internal/app/system/authflow"
	"github.com/dalemusser/contacthub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Backend    *backend.Client
	Contacts   *contactstore.Selector
	Refreshers *authflow.RefresherSet
}

func NewHandler(
	sessionMgr *auth.SessionManager,
	api *backend.Client,
	contacts *contactstore.Selector,
	refreshers *authflow.RefresherSet,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Backend:    api,
		Contacts:   contacts,
		Refreshers: refreshers,
	}
}

// ServeLogout handles POST /logout (and GET, for plain links).
//
// Local state always goes first and unconditionally: the cookie session,
// persisted demo data, the token refresher, and any sticky fallback state.
// The backend sign-out afterwards is best effort; its failure never blocks
// the user from ending their session.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	id, signedIn := auth.CurrentIdentity(r)

	token := auth.Token(r)
	if signedIn {
		if rt := h.Refreshers.TokenFor(id.ID); rt != "" {
			token = rt
		}
	}

	if err := h.SessionMgr.Clear(w, r); err != nil {
		h.Log.Warn("clear session during logout", zap.Error(err))
	}

	if signedIn {
		h.Refreshers.StopFor(id.ID)
		h.Contacts.Forget(id.ID)
	}

	if token != "" {
		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "backend sign-out")
		defer cancel()
		if err := h.Backend.Logout(ctx, token); err != nil {
			h.Log.Warn("backend sign-out failed", zap.Error(err))
		}
	}

	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
