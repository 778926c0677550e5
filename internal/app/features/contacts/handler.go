// internal/app/features/contacts/handler.go
package contacts

import (
	"net/http"

	uierrors "github.com/dalemusser/contacthub/internal/app/features/errors"
	contactstore "github.com/dalemusser/contacthub/internal/app/store/contacts"
	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/dalemusser/contacthub/internal/app/system/authflow"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	Contacts   *contactstore.Selector
	Refreshers *authflow.RefresherSet
}

// NewHandler constructs the contacts feature handler.
func NewHandler(contacts *contactstore.Selector, refreshers *authflow.RefresherSet, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		ErrLog:     errLog,
		Contacts:   contacts,
		Refreshers: refreshers,
	}
}

// repo picks the per-identity contact repository for this request.
func (h *Handler) repo(r *http.Request) (contactstore.Repository, *models.Identity, bool) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		return nil, nil, false
	}
	return h.Contacts.For(*id, h.token(r, id)), id, true
}

// token prefers the background refresher's current token over the one
// frozen into the session cookie at sign-in.
func (h *Handler) token(r *http.Request, id *models.Identity) string {
	if tok := h.Refreshers.TokenFor(id.ID); tok != "" {
		return tok
	}
	return auth.Token(r)
}
