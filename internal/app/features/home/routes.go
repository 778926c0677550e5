// internal/app/features/home/routes.go
package home

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the home routes at the router root.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeRoot)
	return r
}
