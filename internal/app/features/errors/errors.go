// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the basic view model for error pages.
type pageData struct {
	Title      string
	IsLoggedIn bool
	UserName   string
	Message    string
	BackURL    string
}

// Handler is the errors feature handler.
// No backend needed; it just renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	id, signedIn := auth.CurrentIdentity(r)

	data := pageData{
		Title:      "Access denied",
		IsLoggedIn: signedIn,
		Message:    "You don't have permission to view this page.",
		BackURL:    "/",
	}
	if signedIn {
		data.UserName = id.Name
	}

	templates.Render(w, r, "error_forbidden", data)
}

// Unauthorized renders a friendly "sign in required" page.
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	id, signedIn := auth.CurrentIdentity(r)

	data := pageData{
		Title:      "Sign in required",
		IsLoggedIn: signedIn,
		Message:    "Please sign in to continue.",
		BackURL:    "/login",
	}
	if signedIn {
		data.UserName = id.Name
	}

	templates.Render(w, r, "error_forbidden", data)
}
