// internal/app/store/contacts/store.go
//
// Repository contract for the contacts collection, with two interchangeable
// implementations: Remote (the backend API) and Local (the demo fallback
// store). Handlers never branch on the mode; they receive one Repository
// from the Selector and use it.
package contacts

import (
	"context"
	"errors"

	"github.com/dalemusser/contacthub/internal/domain/models"
)

// ErrNotFound is returned by Update when the id does not exist. Delete of a
// missing id is deliberately a no-op, not an error.
var ErrNotFound = errors.New("contacts: not found")

// Query selects and windows one page of the collection. All non-empty
// criteria combine with AND: the free-text search matches name, email and
// company; Company is a substring match on that one column; Status is
// exact-match; Tag matches any of a record's tags. Page is zero-based and
// clamped against the filtered total.
type Query struct {
	Search   string
	Company  string
	Status   string
	Tag      string
	Page     int
	PageSize int
}

// Page is one window of the filtered collection plus the filtered total.
type Page struct {
	Items []models.Contact
	Total int
}

// Repository is the storage contract shared by remote and local modes.
type Repository interface {
	FetchPage(ctx context.Context, q Query) (Page, error)
	Create(ctx context.Context, in models.Contact) (models.Contact, error)
	Update(ctx context.Context, id string, in models.Contact) (models.Contact, error)
	Delete(ctx context.Context, id string) error
}
