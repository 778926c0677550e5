// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/contacthub/internal/app/features/errors"
	"github.com/dalemusser/contacthub/internal/app/store/fallback"
	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/dalemusser/contacthub/internal/app/system/authflow"
	"github.com/dalemusser/contacthub/internal/app/system/idp"
	"github.com/dalemusser/contacthub/internal/app/system/timeouts"
	"github.com/dalemusser/contacthub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	IDP        *idp.Client
	Fallback   *fallback.Store
	Refreshers *authflow.RefresherSet
	Resolver   *authflow.Resolver
	BaseURL    string // base URL of this app, used to build the SSO redirect URI

	// RefreshInterval overrides the default background token refresh
	// cadence when non-zero.
	RefreshInterval time.Duration
}

func NewHandler(
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	idpClient *idp.Client,
	fb *fallback.Store,
	refreshers *authflow.RefresherSet,
	resolver *authflow.Resolver,
	baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		IDP:        idpClient,
		Fallback:   fb,
		Refreshers: refreshers,
		Resolver:   resolver,
		BaseURL:    baseURL,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	Email     string
	ReturnURL string
}

type signupFormData struct {
	viewdata.BaseVM
	Error string
	Name  string
	Email string
}

type forgotFormData struct {
	viewdata.BaseVM
	Error string
	Email string
	Sent  bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	ret := query.Get(r, "return")

	// A persisted demo identity or a live token signs the visitor straight
	// in; the login form only renders when resolution settles unauthenticated.
	res := h.Resolver.Resolve(r.Context(), h.SessionMgr.Request(w, r), "", auth.Token(r))
	if res.State == authflow.StateAuthenticated {
		http.Redirect(w, r, urlutil.SafeReturn(ret, "", "/dashboard"), http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Sign in", "/"),
		ReturnURL: ret,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login – email + password                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	ret := strings.TrimSpace(r.FormValue("return"))

	if email == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your email and password.", email, ret)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "identity provider sign-in")
	defer cancel()

	sess, err := h.IDP.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, idp.ErrInvalidCredentials) {
			h.renderFormWithError(w, r, "Incorrect email or password.", email, ret)
			return
		}
		h.Log.Error("identity provider sign-in failed", zap.Error(err))
		h.renderFormWithError(w, r, "Sign-in is temporarily unavailable. Please try again.", email, ret)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, sess.Identity, sess.Token); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("email", email))
		h.renderFormWithError(w, r, "Unable to create session. Please try again.", email, ret)
		return
	}

	// Keep the provider token fresh for as long as this identity is signed in.
	h.Refreshers.StartFor(sess.Identity.ID,
		authflow.NewRefresher(sess.Token, h.IDP.Refresh, h.RefreshInterval, h.Log))

	http.Redirect(w, r, urlutil.SafeReturn(ret, "", "/dashboard"), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login/demo – demo bypass                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleDemoStart persists a demo identity and seed contacts, then signs the
// visitor in without touching the backend or the identity provider.
func (h *Handler) HandleDemoStart(w http.ResponseWriter, r *http.Request) {
	id := fallback.NewDemoIdentity()
	if err := h.Fallback.SetDemoIdentity(id); err != nil {
		h.ErrLog.LogServerError(w, r, "persist demo identity", err, "Unable to start the demo. Please try again.", "/login")
		return
	}
	if _, err := h.Fallback.Contacts(); err != nil { // seeds on first read
		h.Log.Warn("seed demo contacts failed", zap.Error(err))
	}

	if err := h.SessionMgr.SignIn(w, r, id, nil); err != nil {
		h.ErrLog.LogServerError(w, r, "save demo session", err, "Unable to start the demo. Please try again.", "/login")
		return
	}

	h.Log.Info("demo session started", zap.String("identity_id", id.ID))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login/sso – external provider hand-off                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSSO sends the browser to the external auth provider. The provider
// redirects back to /auth/callback with a one-time session id.
func (h *Handler) HandleSSO(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.IDP.AuthorizeURL(h.BaseURL+"/auth/callback"), http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email, ret string) {
	if ret == "" {
		ret = query.Get(r, "return")
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Sign in", "/"),
		Error:     msg,
		Email:     email,
		ReturnURL: ret,
	})
}
