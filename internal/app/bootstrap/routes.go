// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditlogfeature "github.com/dalemusser/contacthub/internal/app/features/auditlog"
	authcallbackfeature "github.com/dalemusser/contacthub/internal/app/features/authcallback"
	contactsfeature "github.com/dalemusser/contacthub/internal/app/features/contacts"
	dashboardfeature "github.com/dalemusser/contacthub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/contacthub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/contacthub/internal/app/features/health"
	homefeature "github.com/dalemusser/contacthub/internal/app/features/home"
	loginfeature "github.com/dalemusser/contacthub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/contacthub/internal/app/features/logout"
	settingsfeature "github.com/dalemusser/contacthub/internal/app/features/settings"
	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, backend clients, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: the backend clients and stores bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// ContactHub initializes the template engine, applies session and CSRF
// middleware, and mounts feature routers: home, login, the external-auth
// callback, logout, dashboard, contacts, the audit log, and settings.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Clearing a session also wipes persisted demo data.
	sessionMgr.SetWiper(deps.Fallback)

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Global auth middleware: loads the signed-in identity into context so
	// handlers can use auth.CurrentIdentity(r).
	r.Use(sessionMgr.LoadIdentity)

	// CSRF protection for all POST forms.
	r.Use(csrf.Protect([]byte(appCfg.SessionKey),
		csrf.Secure(secure),
		csrf.Path("/")))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.Backend, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(sessionMgr, errLog, deps.IDP, deps.Fallback, deps.Refreshers, deps.Resolver, appCfg.BaseURL, logger)
	loginHandler.RefreshInterval = appCfg.TokenRefreshInterval
	r.Mount("/login", loginfeature.Routes(loginHandler))

	// Signup and password recovery live at the root, matching the links the
	// login page renders.
	r.Get("/signup", loginHandler.ServeSignup)
	r.Post("/signup", loginHandler.HandleSignupPost)
	r.Get("/forgot-password", loginHandler.ServeForgotPassword)
	r.Post("/forgot-password", loginHandler.HandleForgotPasswordPost)

	callbackHandler := authcallbackfeature.NewHandler(sessionMgr, deps.Resolver, deps.Fallback, logger)
	r.Mount("/auth", authcallbackfeature.Routes(callbackHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, deps.Backend, deps.Contacts, deps.Refreshers, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Signed-in application areas
	dashboardHandler := dashboardfeature.NewHandler(deps.Contacts, deps.Refreshers, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	contactsHandler := contactsfeature.NewHandler(deps.Contacts, deps.Refreshers, errLog, logger)
	r.Mount("/contacts", contactsfeature.Routes(contactsHandler, sessionMgr))

	auditHandler := auditlogfeature.NewHandler(deps.AuditFeed, deps.Refreshers, errLog, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	settingsHandler := settingsfeature.NewHandler(logger)
	r.Mount("/settings", settingsfeature.Routes(settingsHandler, sessionMgr))

	return r, nil
}
