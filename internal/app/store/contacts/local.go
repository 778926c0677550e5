// internal/app/store/contacts/local.go
package contacts

import (
	"context"
	"time"

	"github.com/dalemusser/contacthub/internal/app/store/fallback"
	"github.com/dalemusser/contacthub/internal/app/system/paging"
	"github.com/dalemusser/contacthub/internal/app/system/search"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Local serves the Repository contract from the persisted demo collection.
// Search, filtering and pagination run in memory over the full collection;
// mutations rewrite the persisted document synchronously.
type Local struct {
	fb  *fallback.Store
	log *zap.Logger
}

// NewLocal constructs a Local repository over the fallback store.
func NewLocal(fb *fallback.Store, logger *zap.Logger) *Local {
	return &Local{fb: fb, log: logger}
}

// FetchPage filters the whole collection, then clamps and slices the page.
// An empty collection is a valid result with Total 0.
func (l *Local) FetchPage(ctx context.Context, q Query) (Page, error) {
	all, err := l.fb.Contacts()
	if err != nil {
		return Page{}, err
	}
	filtered := filter(all, q)
	size := q.PageSize
	if size <= 0 {
		size = paging.DefaultPageSize
	}
	return Page{
		Items: paging.Slice(filtered, q.Page, size),
		Total: len(filtered),
	}, nil
}

// Create assigns a fresh id and creation time, then prepends the record so
// it shows on the first page of an unsorted reload.
func (l *Local) Create(ctx context.Context, in models.Contact) (models.Contact, error) {
	all, err := l.fb.Contacts()
	if err != nil {
		return models.Contact{}, err
	}
	in.ID = uuid.NewString()
	in.CreatedAt = time.Now().UTC()
	all = append([]models.Contact{in}, all...)
	if err := l.fb.SaveContacts(all); err != nil {
		return models.Contact{}, err
	}
	l.log.Info("demo contact created", zap.String("contact_id", in.ID))
	return in, nil
}

// Update replaces the mutable fields of the record with the given id.
// ID and CreatedAt are preserved.
func (l *Local) Update(ctx context.Context, id string, in models.Contact) (models.Contact, error) {
	all, err := l.fb.Contacts()
	if err != nil {
		return models.Contact{}, err
	}
	for i := range all {
		if all[i].ID != id {
			continue
		}
		in.ID = all[i].ID
		in.CreatedAt = all[i].CreatedAt
		if in.TenantID == "" {
			in.TenantID = all[i].TenantID
		}
		all[i] = in
		if err := l.fb.SaveContacts(all); err != nil {
			return models.Contact{}, err
		}
		return in, nil
	}
	return models.Contact{}, ErrNotFound
}

// Delete removes the record with the given id. A missing id is a no-op.
func (l *Local) Delete(ctx context.Context, id string) error {
	all, err := l.fb.Contacts()
	if err != nil {
		return err
	}
	kept := all[:0]
	for _, c := range all {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(all) {
		return nil
	}
	return l.fb.SaveContacts(kept)
}

// filter applies the query's criteria with AND semantics.
func filter(all []models.Contact, q Query) []models.Contact {
	out := make([]models.Contact, 0, len(all))
	for _, c := range all {
		if !search.Matches(q.Search, c.FirstName, c.LastName, c.Email, c.Company) {
			continue
		}
		if !search.MatchesColumn(q.Company, c.Company) {
			continue
		}
		if !search.MatchesExact(q.Status, c.Status) {
			continue
		}
		if !search.MatchesAny(q.Tag, c.Tags) {
			continue
		}
		out = append(out, c)
	}
	return out
}
