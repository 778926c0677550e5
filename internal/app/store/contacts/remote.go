// internal/app/store/contacts/remote.go
package contacts

import (
	"context"

	"github.com/dalemusser/contacthub/internal/app/backend"
	"github.com/dalemusser/contacthub/internal/domain/models"
)

// Remote serves the Repository contract from the backend API. The backend
// applies search, filters and pagination server-side; Remote only maps the
// query and carries the session token. A Remote is cheap and built
// per-request, since the token belongs to the request's session.
type Remote struct {
	api   *backend.Client
	token string
}

// NewRemote constructs a Remote repository bound to one session token.
func NewRemote(api *backend.Client, token string) *Remote {
	return &Remote{api: api, token: token}
}

func (r *Remote) FetchPage(ctx context.Context, q Query) (Page, error) {
	resp, err := r.api.ListContacts(ctx, r.token, backend.ContactQuery{
		Search:   q.Search,
		Company:  q.Company,
		Status:   q.Status,
		Tag:      q.Tag,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		return Page{}, err
	}
	return Page{Items: resp.Contacts, Total: resp.Total}, nil
}

func (r *Remote) Create(ctx context.Context, in models.Contact) (models.Contact, error) {
	out, err := r.api.CreateContact(ctx, r.token, in)
	if err != nil {
		return models.Contact{}, err
	}
	return *out, nil
}

func (r *Remote) Update(ctx context.Context, id string, in models.Contact) (models.Contact, error) {
	out, err := r.api.UpdateContact(ctx, r.token, id, in)
	if err != nil {
		return models.Contact{}, err
	}
	return *out, nil
}

func (r *Remote) Delete(ctx context.Context, id string) error {
	return r.api.DeleteContact(ctx, r.token, id)
}
