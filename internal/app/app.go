package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/trenchai/trench-agent/internal/agent"
	"github.com/trenchai/trench-agent/internal/refresher"
	"github.com/trenchai/trench-agent/pkg/cache"
	"github.com/trenchai/trench-agent/pkg/config"
	"github.com/trenchai/trench-agent/pkg/healthprobe"
	"github.com/trenchai/trench-agent/pkg/httpserver"
	"github.com/trenchai/trench-agent/pkg/types"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	redisStore    *cache.RedisStore
	toolCache     *cache.TieredStore
	agent         *agent.Agent
	refresher     *refresher.Refresher
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// RefreshOnce re-warms every refresh target once. Used by the one-shot CLI
// command; the background loop is not started.
func (a *App) RefreshOnce(ctx context.Context) error {
	return a.refresher.RunOnce(ctx)
}

// CachedArticles returns up to limit articles from the cached corpus.
func (a *App) CachedArticles(ctx context.Context, limit, hoursBack int) []types.Article {
	return a.redisStore.GetArticles(ctx, limit, hoursBack)
}

// Close releases resources without going through the full shutdown sequence.
// Used by one-shot CLI commands that never started components.
func (a *App) Close() error {
	a.cancel()
	return a.toolCache.Close()
}
