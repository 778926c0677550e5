// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	uierrors "github.com/dalemusser/contacthub/internal/app/features/errors"
	contactstore "github.com/dalemusser/contacthub/internal/app/store/contacts"
	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/dalemusser/contacthub/internal/app/system/authflow"
	"github.com/dalemusser/contacthub/internal/app/system/timeouts"
	"github.com/dalemusser/contacthub/internal/app/system/viewdata"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const recentLimit = 5

type Handler struct {
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	Contacts   *contactstore.Selector
	Refreshers *authflow.RefresherSet
}

// NewHandler constructs the dashboard feature handler.
func NewHandler(contacts *contactstore.Selector, refreshers *authflow.RefresherSet, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		ErrLog:     errLog,
		Contacts:   contacts,
		Refreshers: refreshers,
	}
}

type statusCount struct {
	Status string
	Count  int
}

type dashboardData struct {
	viewdata.BaseVM
	Total    int
	ByStatus []statusCount
	Recent   []models.Contact
}

// ServeDashboard handles GET /dashboard - contact totals broken down by
// status plus the most recent contacts.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	repo := h.Contacts.For(*id, h.token(r, id))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "dashboard")
	defer cancel()

	page, err := repo.FetchPage(ctx, contactstore.Query{PageSize: recentLimit})
	if err != nil {
		h.Log.Error("fetch dashboard contacts", zap.Error(err))
		h.ErrLog.LogServerError(w, r, "fetch dashboard contacts", err, "Unable to load the dashboard right now.", "/")
		return
	}

	counts := make([]statusCount, 0, len(models.ContactStatuses))
	for _, status := range models.ContactStatuses {
		sp, err := repo.FetchPage(ctx, contactstore.Query{Status: status, PageSize: recentLimit})
		if err != nil {
			h.Log.Warn("count contacts by status", zap.String("status", status), zap.Error(err))
			continue
		}
		counts = append(counts, statusCount{Status: status, Count: sp.Total})
	}

	templates.Render(w, r, "dashboard", dashboardData{
		BaseVM:   viewdata.NewBaseVM(r, "Dashboard", "/"),
		Total:    page.Total,
		ByStatus: counts,
		Recent:   page.Items,
	})
}

// token prefers the background refresher's current token over the one
// frozen into the session cookie at sign-in.
func (h *Handler) token(r *http.Request, id *models.Identity) string {
	if tok := h.Refreshers.TokenFor(id.ID); tok != "" {
		return tok
	}
	return auth.Token(r)
}
