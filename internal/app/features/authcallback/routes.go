// internal/app/features/authcallback/routes.go
package authcallback

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the callback route (typically at "/auth" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/callback", h.ServeCallback)
	return r
}
