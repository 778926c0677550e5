// internal/app/features/auditlog/handler.go
package auditlog

import (
	"net/http"

	uierrors "github.com/dalemusser/contacthub/internal/app/features/errors"
	"github.com/dalemusser/contacthub/internal/app/store/auditfeed"
	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/dalemusser/contacthub/internal/app/system/authflow"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	Feed       *auditfeed.Reader
	Refreshers *authflow.RefresherSet
}

// NewHandler constructs the audit log feature handler.
func NewHandler(feed *auditfeed.Reader, refreshers *authflow.RefresherSet, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		ErrLog:     errLog,
		Feed:       feed,
		Refreshers: refreshers,
	}
}

// token prefers the background refresher's current token over the one
// frozen into the session cookie at sign-in.
func (h *Handler) token(r *http.Request, id *models.Identity) string {
	if tok := h.Refreshers.TokenFor(id.ID); tok != "" {
		return tok
	}
	return auth.Token(r)
}
