// internal/app/features/contacts/form.go
package contacts

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	uierrors "github.com/dalemusser/contacthub/internal/app/features/errors"
	"github.com/dalemusser/contacthub/internal/app/backend"
	contactstore "github.com/dalemusser/contacthub/internal/app/store/contacts"
	"github.com/dalemusser/contacthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/contacthub/internal/app/system/timeouts"
	"github.com/dalemusser/contacthub/internal/app/system/viewdata"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type formData struct {
	viewdata.BaseVM
	Contact  models.Contact
	Tags     string // comma-joined for the input field
	IsNew    bool
	Error    string
	Statuses []string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /contacts/new                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "contact_form", formData{
		BaseVM:   viewdata.NewBaseVM(r, "New contact", "/contacts"),
		Contact:  models.Contact{Status: models.ContactActive},
		IsNew:    true,
		Statuses: models.ContactStatuses,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /contacts – create                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.repo(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/contacts")
		return
	}

	in, msg := contactFromForm(r)
	if msg != "" {
		h.renderForm(w, r, in, true, msg)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create contact")
	defer cancel()

	created, err := repo.Create(ctx, in)
	if err != nil {
		h.Log.Warn("create contact failed", zap.Error(err))
		h.renderForm(w, r, in, true, userMessage(err, "Unable to save the contact."))
		return
	}

	h.Log.Info("contact created", zap.String("contact_id", created.ID))
	http.Redirect(w, r, "/contacts?ok="+url.QueryEscape("Contact created."), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /contacts/{id}/edit                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.repo(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "load contact")
	defer cancel()

	c, ok := findContact(ctx, repo, id)
	if !ok {
		http.Redirect(w, r, "/contacts?err="+url.QueryEscape("Contact not found."), http.StatusSeeOther)
		return
	}

	h.renderForm(w, r, c, false, "")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /contacts/{id} – update                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.repo(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/contacts")
		return
	}
	id := chi.URLParam(r, "id")

	in, msg := contactFromForm(r)
	in.ID = id
	if msg != "" {
		h.renderForm(w, r, in, false, msg)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update contact")
	defer cancel()

	if _, err := repo.Update(ctx, id, in); err != nil {
		if errors.Is(err, contactstore.ErrNotFound) {
			http.Redirect(w, r, "/contacts?err="+url.QueryEscape("Contact not found."), http.StatusSeeOther)
			return
		}
		h.Log.Warn("update contact failed", zap.Error(err), zap.String("contact_id", id))
		h.renderForm(w, r, in, false, userMessage(err, "Unable to save the contact."))
		return
	}

	http.Redirect(w, r, "/contacts?ok="+url.QueryEscape("Contact updated."), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /contacts/{id}/delete                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleDelete removes a contact. Deleting a contact that is already gone
// is reported as success, not an error.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	repo, _, ok := h.repo(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete contact")
	defer cancel()

	if err := repo.Delete(ctx, id); err != nil && !errors.Is(err, contactstore.ErrNotFound) {
		h.Log.Warn("delete contact failed", zap.Error(err), zap.String("contact_id", id))
		http.Redirect(w, r, "/contacts?err="+url.QueryEscape(userMessage(err, "Unable to delete the contact.")), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/contacts?ok="+url.QueryEscape("Contact deleted."), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// contactFromForm builds a contact from sanitized form fields. The second
// return value is a user-facing validation message, empty when valid.
func contactFromForm(r *http.Request) (models.Contact, string) {
	c := models.Contact{
		FirstName: htmlsanitize.Field(r.FormValue("first_name")),
		LastName:  htmlsanitize.Field(r.FormValue("last_name")),
		Email:     htmlsanitize.Field(r.FormValue("email")),
		Phone:     htmlsanitize.Field(r.FormValue("phone")),
		Company:   htmlsanitize.Field(r.FormValue("company")),
		Status:    strings.TrimSpace(r.FormValue("status")),
	}
	for _, t := range strings.Split(r.FormValue("tags"), ",") {
		if tag := htmlsanitize.Field(t); tag != "" {
			c.Tags = append(c.Tags, tag)
		}
	}

	switch {
	case c.FirstName == "" && c.LastName == "":
		return c, "Please enter a name."
	case c.Email == "":
		return c, "Please enter an email address."
	case !models.ValidContactStatus(c.Status):
		return c, "Please pick a valid status."
	}
	return c, ""
}

// findContact locates one contact by scanning filtered pages. The contact
// repositories expose list access only, mirroring the backend API.
func findContact(ctx context.Context, repo contactstore.Repository, id string) (models.Contact, bool) {
	q := contactstore.Query{Page: 0, PageSize: 100}
	for {
		page, err := repo.FetchPage(ctx, q)
		if err != nil || len(page.Items) == 0 {
			return models.Contact{}, false
		}
		for _, c := range page.Items {
			if c.ID == id {
				return c, true
			}
		}
		if (q.Page+1)*q.PageSize >= page.Total {
			return models.Contact{}, false
		}
		q.Page++
	}
}

// userMessage surfaces the backend's validation detail when there is one.
func userMessage(err error, fallbackMsg string) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallbackMsg
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, c models.Contact, isNew bool, msg string) {
	title := "Edit contact"
	if isNew {
		title = "New contact"
	}
	templates.Render(w, r, "contact_form", formData{
		BaseVM:   viewdata.NewBaseVM(r, title, "/contacts"),
		Contact:  c,
		Tags:     strings.Join(c.Tags, ", "),
		IsNew:    isNew,
		Error:    msg,
		Statuses: models.ContactStatuses,
	})
}
