// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig is where everything specific to ContactHub lives: the CRM
// backend endpoint, the identity provider credentials, session cookie
// settings, and the on-disk location for demo-mode data.
type AppConfig struct {
	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: contacthub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // How long a session cookie stays valid

	// CRM backend configuration
	BackendBaseURL string // Base URL of the contact/audit backend API

	// Identity provider configuration
	IDPBaseURL   string // Base URL of the identity provider
	IDPAPIKey    string // API key identifying this app to the provider
	IDPProjectID string // Project id within the provider

	// Demo mode configuration
	DemoDataPath string // Directory for persisted demo-mode data

	// Base URL of this app, used to build SSO redirect URIs
	BaseURL string // e.g., "https://contacthub.example.com" or "http://localhost:3000"

	// TokenRefreshInterval is how often background refreshers renew
	// provider access tokens. Must stay comfortably inside the provider's
	// token lifetime.
	TokenRefreshInterval time.Duration
}
