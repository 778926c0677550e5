// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down background work. The HTTP clients need no
// explicit teardown; the token refreshers do.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Refreshers != nil {
		logger.Info("stopping token refreshers")
		deps.Refreshers.StopAll()
	}
	return nil
}
