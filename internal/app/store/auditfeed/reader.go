// internal/app/store/auditfeed/reader.go
//
// Read-only view over the backend's append-only audit feed. Entries arrive
// newest-first and are passed through untouched; an unauthenticated session
// sees an empty feed rather than an error, keeping the page renderable in
// demo mode.
package auditfeed

import (
	"context"
	"errors"

	"github.com/dalemusser/contacthub/internal/app/backend"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"go.uber.org/zap"
)

// Reader fetches the audit feed.
type Reader struct {
	api *backend.Client
	log *zap.Logger
}

// NewReader constructs a Reader over the backend client.
func NewReader(api *backend.Client, logger *zap.Logger) *Reader {
	return &Reader{api: api, log: logger}
}

// Load returns the feed in source order. On an unauthenticated response it
// returns an empty, non-nil slice and no error.
func (r *Reader) Load(ctx context.Context, token string) ([]models.AuditEntry, error) {
	entries, err := r.api.AuditLogs(ctx, token)
	if errors.Is(err, backend.ErrUnauthenticated) {
		r.log.Debug("audit feed unavailable without a backend session")
		return []models.AuditEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	return entries, nil
}
