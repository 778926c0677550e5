// internal/domain/models/identity.go
package models

// Auth provider tags recorded on an Identity.
const (
	ProviderPassword = "password"
	ProviderExternal = "external"
	ProviderDemo     = "demo"
)

// Identity is the authenticated user's profile: what we show in the chrome
// and what scopes data access (TenantID). Exactly one identity is current at
// a time; it lives in the cookie session and is destroyed on sign-out.
type Identity struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Provider      string `json:"provider"` // password | external | demo
	TenantID      string `json:"tenant_id"`
}

// IsDemo reports whether this identity was fabricated by the demo bypass
// rather than issued by the identity provider or the backend.
func (i Identity) IsDemo() bool {
	return i.Provider == ProviderDemo
}
