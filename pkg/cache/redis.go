package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/trenchai/trench-agent/pkg/types"
)

// Key scheme shared with the refresher and the news tools.
const (
	articleKeyPrefix = "crypto:news:articles:"
	lastUpdateKey    = "crypto:news:last_update"

	// SearchKeyPrefix prefixes cached keyword-search results.
	SearchKeyPrefix = "crypto:news:search:"
	// DataKeyPrefix prefixes generic per-tool cached payloads.
	DataKeyPrefix = "crypto:data:"
)

// RedisStore is a Store backed by Redis. It additionally maintains the news
// article corpus that the refresher re-warms on its interval.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // default entry lifetime
	Logger   *zap.Logger
}

// NewRedisStore creates a Redis-backed store. The connection is established
// lazily; an unreachable backend degrades every operation to a miss rather
// than failing construction.
func NewRedisStore(cfg *RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisStore{
		client: client,
		ttl:    cfg.TTL,
		logger: cfg.Logger,
	}
}

// Get retrieves a value. Backend failures and expired keys are misses.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			CacheErrorsTotal.Inc()
			r.logger.Warn("cache-get-failed", zap.String("key", key), zap.Error(err))
		}
		CacheMissesTotal.Inc()
		return nil, false
	}

	CacheHitsTotal.Inc()
	r.logger.Debug("cache-hit", zap.String("key", key))
	return raw, true
}

// Set stores a value with the given TTL. ttl <= 0 falls back to the
// store's default. Failures are logged and reported as false.
func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = r.ttl
	}

	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		CacheErrorsTotal.Inc()
		r.logger.Warn("cache-set-failed", zap.String("key", key), zap.Error(err))
		return false
	}

	CacheSetsTotal.Inc()
	r.logger.Debug("cache-set", zap.String("key", key), zap.Duration("ttl", ttl))
	return true
}

// Delete removes a value.
func (r *RedisStore) Delete(ctx context.Context, key string) {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		CacheErrorsTotal.Inc()
		r.logger.Warn("cache-delete-failed", zap.String("key", key), zap.Error(err))
		return
	}

	CacheDeletesTotal.Inc()
}

// Ping checks that the Redis backend is reachable.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// SetArticles stores the article corpus, one key per article keyed by a hash
// of its link, and stamps the last-update marker. Articles without a link are
// skipped. Returns the number of articles stored.
func (r *RedisStore) SetArticles(ctx context.Context, articles []types.Article) int {
	stored := 0

	for i := range articles {
		if articles[i].Link == "" {
			r.logger.Warn("skipping-article-without-link", zap.String("title", articles[i].Title))
			continue
		}

		raw, err := json.Marshal(&articles[i])
		if err != nil {
			continue
		}

		if r.Set(ctx, articleKeyPrefix+linkHash(articles[i].Link), raw, r.ttl) {
			stored++
		}
	}

	if stored > 0 {
		r.Set(ctx, lastUpdateKey, []byte(time.Now().Format(time.RFC3339)), r.ttl)
	}

	r.logger.Info("articles-cached", zap.Int("stored", stored), zap.Int("received", len(articles)))
	return stored
}

// GetArticles returns up to limit cached articles, newest first. When
// hoursBack > 0, articles published before the cutoff are filtered out.
// A backend failure yields an empty slice.
func (r *RedisStore) GetArticles(ctx context.Context, limit int, hoursBack int) []types.Article {
	var articles []types.Article
	cutoff := time.Now().Add(-time.Duration(hoursBack) * time.Hour)

	iter := r.client.Scan(ctx, 0, articleKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}

		var article types.Article
		if err := json.Unmarshal(raw, &article); err != nil {
			continue
		}

		if hoursBack > 0 {
			published := article.PublishedTime()
			if !published.IsZero() && published.Before(cutoff) {
				continue
			}
		}

		articles = append(articles, article)
	}
	if err := iter.Err(); err != nil {
		CacheErrorsTotal.Inc()
		r.logger.Warn("article-scan-failed", zap.Error(err))
		return nil
	}

	sort.Slice(articles, func(i, j int) bool {
		return articles[i].Published > articles[j].Published
	})

	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	return articles
}

// LastUpdate returns the time of the most recent corpus refresh.
func (r *RedisStore) LastUpdate(ctx context.Context) (time.Time, bool) {
	raw, ok := r.Get(ctx, lastUpdateKey)
	if !ok {
		return time.Time{}, false
	}

	t, err := time.Parse(time.RFC3339, string(raw))
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// Stale reports whether the article corpus is older than maxAge.
// An empty corpus (no last-update marker) is stale.
func (r *RedisStore) Stale(ctx context.Context, maxAge time.Duration) bool {
	last, ok := r.LastUpdate(ctx)
	if !ok {
		r.logger.Info("cache-empty-no-last-update")
		return true
	}

	age := time.Since(last)
	stale := age > maxAge
	r.logger.Debug("cache-age-checked",
		zap.Duration("age", age),
		zap.Duration("max-age", maxAge),
		zap.Bool("stale", stale))

	return stale
}

func linkHash(link string) string {
	sum := md5.Sum([]byte(link))
	return hex.EncodeToString(sum[:])
}
