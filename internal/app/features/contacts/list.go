// internal/app/features/contacts/list.go
package contacts

import (
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/contacthub/internal/app/features/errors"
	contactstore "github.com/dalemusser/contacthub/internal/app/store/contacts"
	"github.com/dalemusser/contacthub/internal/app/system/paging"
	"github.com/dalemusser/contacthub/internal/app/system/timeouts"
	"github.com/dalemusser/contacthub/internal/app/system/viewdata"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type listData struct {
	viewdata.BaseVM
	Rows       []models.Contact
	Search     string
	Company    string
	Status     string
	Tag        string
	Statuses   []string
	PageSizes  []int
	Nav        paging.Nav
	Flash      string
	FlashError string
}

// ServeList handles GET /contacts - the searchable, filterable, paginated
// contact list.
//
// Query parameters: q (folded substring search over name, email, company),
// company (substring over that one column), status (exact), tag
// (whole-value), page (zero-based), size (one of the fixed page sizes).
// Filters combine with AND. A stale page index past the
// end of the filtered set is clamped, never an error.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.repo(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	search := strings.TrimSpace(query.Get(r, "q"))
	company := strings.TrimSpace(query.Get(r, "company"))
	status := strings.TrimSpace(query.Get(r, "status"))
	tag := strings.TrimSpace(query.Get(r, "tag"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "contact list")
	defer cancel()

	q := contactstore.Query{
		Search:   search,
		Company:  company,
		Status:   status,
		Tag:      tag,
		Page:     paging.ParsePage(r),
		PageSize: paging.ParseSize(r),
	}

	page, err := repo.FetchPage(ctx, q)
	if err != nil {
		h.Log.Error("fetch contact page", zap.Error(err))
		h.ErrLog.LogServerError(w, r, "fetch contacts", err, "Unable to load contacts right now.", "/dashboard")
		return
	}

	templates.Render(w, r, "contacts_list", listData{
		BaseVM:     viewdata.NewBaseVM(r, "Contacts", "/dashboard"),
		Rows:       page.Items,
		Search:     search,
		Company:    company,
		Status:     status,
		Tag:        tag,
		Statuses:   models.ContactStatuses,
		PageSizes:  paging.PageSizes,
		Nav:        paging.NewNav(q.Page, page.Total, q.PageSize),
		Flash:      query.Get(r, "ok"),
		FlashError: query.Get(r, "err"),
	})
}
