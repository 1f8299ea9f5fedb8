package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)

	// Cancel context to stop the refresher
	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Shutdown HTTP server first so no new queries arrive
	err := a.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	// Wait for the refresher and server goroutines
	a.wg.Wait()

	// Close cache layers last. The tiered store closes its remote, which is
	// the shared Redis client.
	err = a.toolCache.Close()
	if err != nil {
		a.logger.Error("cache-close-error", zap.Error(err))
	}

	a.logger.Info("application-shutdown-complete")

	return nil
}
