// internal/app/features/contacts/routes.go
package contacts

import (
	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the contact management routes (typically at "/contacts"
// from bootstrap). All routes require a signed-in identity.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleCreate)
		pr.Get("/{id}/edit", h.ServeEdit)
		pr.Post("/{id}", h.HandleUpdate)
		pr.Post("/{id}/delete", h.HandleDelete)
	})

	return r
}
