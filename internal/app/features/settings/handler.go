// internal/app/features/settings/handler.go
package settings

import (
	"net/http"

	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/dalemusser/contacthub/internal/app/system/viewdata"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

type accountData struct {
	viewdata.BaseVM
	Identity models.Identity
}

// ServeAccount handles GET /settings - the account page showing the
// signed-in identity's details.
func (h *Handler) ServeAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "settings_account", accountData{
		BaseVM:   viewdata.NewBaseVM(r, "Settings", "/dashboard"),
		Identity: *id,
	})
}
