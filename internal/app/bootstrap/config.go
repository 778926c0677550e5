// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for ContactHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: backend_base_url, session_name, etc.
//   - Environment variables: CONTACTHUB_BACKEND_BASE_URL, CONTACTHUB_SESSION_NAME, etc.
//   - Command-line flags: --backend_base_url, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "contacthub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime (e.g., 24h, 30m)"},

	{Name: "backend_base_url", Default: "http://localhost:8080", Desc: "Base URL of the CRM backend API"},

	{Name: "idp_base_url", Default: "http://localhost:9090", Desc: "Base URL of the identity provider"},
	{Name: "idp_api_key", Default: "", Desc: "API key identifying this app to the identity provider"},
	{Name: "idp_project_id", Default: "", Desc: "Project id within the identity provider"},

	{Name: "demo_data_path", Default: "./data/demo", Desc: "Directory for persisted demo-mode data"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL of this app, used for SSO redirect URIs"},

	{Name: "token_refresh_interval", Default: "50m", Desc: "How often background refreshers renew provider access tokens"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, CONTACTHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CONTACTHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		BackendBaseURL: appValues.String("backend_base_url"),

		IDPBaseURL:   appValues.String("idp_base_url"),
		IDPAPIKey:    appValues.String("idp_api_key"),
		IDPProjectID: appValues.String("idp_project_id"),

		DemoDataPath: appValues.String("demo_data_path"),

		BaseURL: appValues.String("base_url"),

		TokenRefreshInterval: appValues.Duration("token_refresh_interval", 50*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := validateBaseURL("backend_base_url", appCfg.BackendBaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("idp_base_url", appCfg.IDPBaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("base_url", appCfg.BaseURL); err != nil {
		return err
	}

	if appCfg.SessionMaxAge <= 0 {
		return fmt.Errorf("session_max_age must be positive, got %s", appCfg.SessionMaxAge)
	}
	if appCfg.TokenRefreshInterval <= 0 {
		return fmt.Errorf("token_refresh_interval must be positive, got %s", appCfg.TokenRefreshInterval)
	}

	// Catch the shipped dev key before it reaches a real deployment.
	if coreCfg.Env == "prod" {
		if appCfg.SessionKey == "" || appCfg.SessionKey == "dev-only-change-me-please-0123456789ABCDEF" {
			return fmt.Errorf("session_key must be set to a strong value in production")
		}
		if len(appCfg.SessionKey) < 32 {
			return fmt.Errorf("session_key must be at least 32 characters in production")
		}
	}

	return nil
}

func validateBaseURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s must be set", name)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
	}
	return nil
}
