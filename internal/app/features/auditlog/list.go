// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"sort"
	"strings"
	"time"

	uierrors "github.com/dalemusser/contacthub/internal/app/features/errors"
	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/dalemusser/contacthub/internal/app/system/paging"
	"github.com/dalemusser/contacthub/internal/app/system/timeouts"
	"github.com/dalemusser/contacthub/internal/app/system/viewdata"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// changeRow is one field's before/after pair, flattened for display. OldLabel
// carries an explicit "(none)" marker when the field had no previous value.
type changeRow struct {
	Field    string
	OldLabel string
	New      string
}

// listItem is a single audit event row for display.
type listItem struct {
	ID         string
	Action     string
	EntityType string
	EntityID   string
	ActorEmail string
	Timestamp  time.Time
	Changes    []changeRow
}

type listData struct {
	viewdata.BaseVM
	Items   []listItem
	Action  string
	Actions []string
	Nav     paging.Nav
	Empty   bool
}

// actions the filter dropdown offers.
var actions = []string{models.AuditCreate, models.AuditUpdate, models.AuditDelete}

// ServeList handles GET /audit - the audit log page.
//
// Entries arrive newest-first from the feed and are displayed in that order;
// no re-sorting happens here. An "action" query parameter filters by event
// action, "page"/"size" paginate. A session without a backend token sees an
// empty feed rather than an error.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	action := strings.TrimSpace(query.Get(r, "action"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	entries, err := h.Feed.Load(ctx, h.token(r, id))
	if err != nil {
		h.Log.Error("load audit feed", zap.Error(err))
		h.ErrLog.LogServerError(w, r, "load audit feed", err, "Unable to load the audit log right now.", "/dashboard")
		return
	}

	if action != "" {
		kept := entries[:0:0]
		for _, e := range entries {
			if e.Action == action {
				kept = append(kept, e)
			}
		}
		entries = kept
	}

	page := paging.ParsePage(r)
	size := paging.ParseSize(r)
	window := paging.Slice(entries, page, size)

	items := make([]listItem, 0, len(window))
	for _, e := range window {
		items = append(items, listItem{
			ID:         e.ID,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			ActorEmail: e.ActorEmail,
			Timestamp:  e.Timestamp,
			Changes:    changeRows(e.Changes),
		})
	}

	templates.Render(w, r, "audit_list", listData{
		BaseVM:  viewdata.NewBaseVM(r, "Audit Log", "/dashboard"),
		Items:   items,
		Action:  action,
		Actions: actions,
		Nav:     paging.NewNav(page, len(entries), size),
		Empty:   len(entries) == 0,
	})
}

// changeRows flattens a change map into rows sorted by field name, so the
// rendered order is stable. Every changed field gets a row; a missing old
// value becomes the "(none)" marker rather than a silently dropped row.
func changeRows(changes map[string]models.FieldChange) []changeRow {
	if len(changes) == 0 {
		return nil
	}
	fields := make([]string, 0, len(changes))
	for f := range changes {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	rows := make([]changeRow, 0, len(fields))
	for _, f := range fields {
		c := changes[f]
		old := c.Old
		if old == "" {
			old = "(none)"
		}
		rows = append(rows, changeRow{Field: f, OldLabel: old, New: c.New})
	}
	return rows
}
