package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trenchai/trench-agent/internal/agent"
	"github.com/trenchai/trench-agent/internal/llm"
	"github.com/trenchai/trench-agent/internal/refresher"
	"github.com/trenchai/trench-agent/internal/tools"
	"github.com/trenchai/trench-agent/pkg/cache"
	"github.com/trenchai/trench-agent/pkg/config"
	"github.com/trenchai/trench-agent/pkg/healthprobe"
	"github.com/trenchai/trench-agent/pkg/httpserver"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	redisStore, toolCache, err := setupCache(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	newsTool := setupNewsTool(cfg, logger, redisStore)
	queryAgent := setupAgent(cfg, logger, newsTool, toolCache)
	refreshService := setupRefresher(cfg, logger, newsTool)

	healthChecker := setupHealthChecker(ctx, redisStore)
	httpServer := setupHTTPServer(cfg, logger, healthChecker, queryAgent)

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		redisStore:    redisStore,
		toolCache:     toolCache,
		agent:         queryAgent,
		refresher:     refreshService,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupCache(cfg *config.Config, logger *zap.Logger) (*cache.RedisStore, *cache.TieredStore, error) {
	redisStore := cache.NewRedisStore(&cache.RedisConfig{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
		Logger:   logger,
	})

	toolCache, err := cache.NewTieredStore(&cache.TieredConfig{
		Remote:      redisStore,
		NumCounters: 10_000,
		MaxCost:     1_000,
		LocalTTL:    5 * time.Minute,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create tiered store: %w", err)
	}

	return redisStore, toolCache, nil
}

func setupNewsTool(cfg *config.Config, logger *zap.Logger, store *cache.RedisStore) *tools.NewsTool {
	return tools.NewNewsTool(&tools.NewsConfig{
		APIKey:     cfg.RapidAPIKey,
		APIHost:    cfg.RapidAPIHost,
		Store:      store,
		StaleAfter: cfg.CronInterval,
		Logger:     logger,
	})
}

func setupAgent(cfg *config.Config, logger *zap.Logger, newsTool *tools.NewsTool, toolCache cache.Store) *agent.Agent {
	toolSet := []tools.Tool{
		newsTool,
		tools.NewSearchTool(&tools.SearchConfig{
			APIKey:   cfg.RapidAPIKey,
			APIHost:  cfg.RapidAPIHost,
			Store:    toolCache,
			CacheTTL: cfg.CacheTTL,
			Logger:   logger,
		}),
		tools.NewTwitterTool(&tools.TwitterConfig{
			APIKey: cfg.TweetScoutAPIKey,
			Store:  toolCache,
			Logger: logger,
		}),
		tools.NewDexTool(&tools.DexConfig{
			Store:  toolCache,
			Logger: logger,
		}),
	}

	// Web search tools are optional: they only join the registry when their
	// keys are configured, so the selection model never picks a dead tool.
	if cfg.TavilyAPIKey != "" {
		toolSet = append(toolSet, tools.NewTavilyTool(&tools.TavilyConfig{
			APIKey: cfg.TavilyAPIKey,
			Logger: logger,
		}))
	}
	if cfg.ExaAPIKey != "" {
		toolSet = append(toolSet, tools.NewExaTool(&tools.ExaConfig{
			APIKey: cfg.ExaAPIKey,
			Logger: logger,
		}))
	}

	selector := llm.NewClient(&llm.ClientConfig{
		APIKey: cfg.GoogleAPIKey,
		Model:  llm.GeminiFlashLite,
		Logger: logger,
	})
	analyst := llm.NewClient(&llm.ClientConfig{
		APIKey: cfg.GoogleAPIKey,
		Model:  llm.GeminiFlash,
		Logger: logger,
	})

	return agent.New(&agent.Config{
		Selector: selector,
		Analyst:  analyst,
		Tools:    toolSet,
		Logger:   logger,
	})
}

func setupRefresher(cfg *config.Config, logger *zap.Logger, newsTool *tools.NewsTool) *refresher.Refresher {
	return refresher.New(cfg.CronInterval, []refresher.Target{newsTool}, logger)
}

func setupHealthChecker(ctx context.Context, redisStore *cache.RedisStore) *healthprobe.HealthChecker {
	return healthprobe.New(healthprobe.Check{
		Name:  "redis",
		Probe: func() error { return redisStore.Ping(ctx) },
	})
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	queryAgent *agent.Agent,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		RateLimit:     cfg.APIRateLimit,
		Logger:        logger,
		HealthChecker: healthChecker,
		QueryHandler:  httpserver.NewQueryHandler(queryAgent, logger),
	})
}
