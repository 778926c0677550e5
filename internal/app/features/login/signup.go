// internal/app/features/login/signup.go
package login

import (
	"net/http"
	"strings"

	"github.com/dalemusser/contacthub/internal/app/system/authflow"
	"github.com/dalemusser/contacthub/internal/app/system/timeouts"
	"github.com/dalemusser/contacthub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /signup                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "signup", signupFormData{
		BaseVM: viewdata.NewBaseVM(r, "Create account", "/login"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /signup                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSignupPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/signup")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	switch {
	case name == "" || email == "" || password == "":
		h.renderSignupWithError(w, r, "All fields are required.", name, email)
		return
	case password != confirm:
		h.renderSignupWithError(w, r, "Passwords do not match.", name, email)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "identity provider sign-up")
	defer cancel()

	sess, err := h.IDP.SignUp(ctx, name, email, password)
	if err != nil {
		h.Log.Warn("identity provider sign-up failed", zap.Error(err), zap.String("email", email))
		h.renderSignupWithError(w, r, "Unable to create the account. The email may already be registered.", name, email)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, sess.Identity, sess.Token); err != nil {
		h.Log.Error("save session after sign-up failed", zap.Error(err))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.Refreshers.StartFor(sess.Identity.ID,
		authflow.NewRefresher(sess.Token, h.IDP.Refresh, h.RefreshInterval, h.Log))

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) renderSignupWithError(w http.ResponseWriter, r *http.Request, msg, name, email string) {
	templates.Render(w, r, "signup", signupFormData{
		BaseVM: viewdata.NewBaseVM(r, "Create account", "/login"),
		Error:  msg,
		Name:   name,
		Email:  email,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET+POST /forgot-password                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeForgotPassword(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "forgot_password", forgotFormData{
		BaseVM: viewdata.NewBaseVM(r, "Reset password", "/login"),
	})
}

func (h *Handler) HandleForgotPasswordPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/forgot-password")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		templates.Render(w, r, "forgot_password", forgotFormData{
			BaseVM: viewdata.NewBaseVM(r, "Reset password", "/login"),
			Error:  "Please enter your email address.",
		})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "password reset request")
	defer cancel()

	// Same response whether or not the account exists, so the form can't be
	// used to probe for registered addresses.
	if err := h.IDP.SendPasswordReset(ctx, email); err != nil {
		h.Log.Error("password reset request failed", zap.Error(err))
	}

	templates.Render(w, r, "forgot_password", forgotFormData{
		BaseVM: viewdata.NewBaseVM(r, "Reset password", "/login"),
		Email:  email,
		Sent:   true,
	})
}
