// internal/app/features/settings/routes.go
package settings

import (
	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the settings routes (typically at "/settings" from
// bootstrap).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeAccount)
	})

	return r
}
