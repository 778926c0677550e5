package testutil

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/contacthub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// PasswordIdentity returns a signed-in identity backed by the identity provider.
func PasswordIdentity() *models.Identity {
	return &models.Identity{
		ID:            uuid.NewString(),
		Name:          "Test User",
		Email:         "user@test.com",
		Provider:      models.ProviderPassword,
		TenantID:      "tenant-1",
		EmailVerified: true,
	}
}

// DemoIdentity returns a demo-mode identity.
func DemoIdentity() *models.Identity {
	return &models.Identity{
		ID:       uuid.NewString(),
		Name:     "Demo User",
		Email:    "demo@contacthub.dev",
		Provider: models.ProviderDemo,
		TenantID: "demo-tenant",
	}
}

// Contact returns a test contact with the given names, belonging to tenant-1.
func Contact(first, last string) models.Contact {
	return models.Contact{
		ID:        uuid.NewString(),
		FirstName: first,
		LastName:  last,
		Email:     first + "@test.com",
		Status:    models.ContactActive,
		TenantID:  "tenant-1",
		CreatedAt: time.Now().UTC(),
	}
}
