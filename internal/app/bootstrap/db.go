// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/dalemusser/contacthub/internal/app/backend"
	"github.com/dalemusser/contacthub/internal/app/store/auditfeed"
	contactstore "github.com/dalemusser/contacthub/internal/app/store/contacts"
	"github.com/dalemusser/contacthub/internal/app/store/fallback"
	"github.com/dalemusser/contacthub/internal/app/system/authflow"
	"github.com/dalemusser/contacthub/internal/app/system/idp"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// ConnectDB builds the backend clients and stores. No connections are opened
// eagerly; the backend and identity provider are plain HTTP clients, and the
// fallback store is lazy about touching disk. Reachability is surfaced by
// /health rather than blocking startup, since demo mode works with both
// remote services down.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	api := backend.New(appCfg.BackendBaseURL, logger)

	idpClient := idp.New(idp.Config{
		BaseURL:   appCfg.IDPBaseURL,
		APIKey:    appCfg.IDPAPIKey,
		ProjectID: appCfg.IDPProjectID,
	}, logger)

	fb := fallback.New(appCfg.DemoDataPath, logger)
	local := contactstore.NewLocal(fb, logger)

	deps := DBDeps{
		Backend:    api,
		IDP:        idpClient,
		Fallback:   fb,
		Contacts:   contactstore.NewSelector(api, local, logger),
		AuditFeed:  auditfeed.NewReader(api, logger),
		Resolver:   authflow.NewResolver(fb, api, idpClient, logger),
		Refreshers: authflow.NewRefresherSet(logger),
	}
	return deps, nil
}

// EnsureSchema prepares local storage. The only schema ContactHub owns is
// the demo data directory.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := os.MkdirAll(appCfg.DemoDataPath, 0o755); err != nil {
		return fmt.Errorf("create demo data dir %q: %w", appCfg.DemoDataPath, err)
	}
	return nil
}
