package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
)

// TieredStore layers a Ristretto in-process cache in front of a remote Store.
// Reads hit the local layer first; remote hits are promoted locally with a
// short TTL so hot keys survive a Redis round trip only once per window.
// Writes go to the remote layer first so the durable copy is never behind.
type TieredStore struct {
	local    *ristretto.Cache
	remote   Store
	localTTL time.Duration
	logger   *zap.Logger
}

// TieredConfig holds configuration for the tiered store.
type TieredConfig struct {
	Remote      Store
	NumCounters int64         // keys tracked for admission (10x max items)
	MaxCost     int64         // max items in the local layer
	LocalTTL    time.Duration // lifetime of promoted local copies
	Logger      *zap.Logger
}

// NewTieredStore creates a tiered store over the given remote.
func NewTieredStore(cfg *TieredConfig) (*TieredStore, error) {
	local, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}

	localTTL := cfg.LocalTTL
	if localTTL <= 0 {
		localTTL = time.Minute
	}

	return &TieredStore{
		local:    local,
		remote:   cfg.Remote,
		localTTL: localTTL,
		logger:   cfg.Logger,
	}, nil
}

// Get checks the local layer, then the remote store.
func (t *TieredStore) Get(ctx context.Context, key string) ([]byte, bool) {
	if value, found := t.local.Get(key); found {
		if raw, ok := value.([]byte); ok {
			LocalHitsTotal.Inc()
			t.logger.Debug("local-cache-hit", zap.String("key", key))
			return raw, true
		}
	}

	raw, ok := t.remote.Get(ctx, key)
	if !ok {
		return nil, false
	}

	t.local.SetWithTTL(key, raw, 1, t.localTTL)
	return raw, true
}

// Set writes through to the remote store, then refreshes the local copy.
// The local promotion only happens when the remote write succeeded, so a
// degraded backend never leaves the local layer ahead of the durable one.
func (t *TieredStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	ok := t.remote.Set(ctx, key, value, ttl)
	if !ok {
		return false
	}

	localTTL := t.localTTL
	if ttl > 0 && ttl < localTTL {
		localTTL = ttl
	}
	t.local.SetWithTTL(key, value, 1, localTTL)

	return true
}

// Delete removes the key from both layers.
func (t *TieredStore) Delete(ctx context.Context, key string) {
	t.local.Del(key)
	t.remote.Delete(ctx, key)
}

// Close releases both layers.
func (t *TieredStore) Close() error {
	t.local.Close()
	return t.remote.Close()
}

// Wait blocks until pending local writes are applied. Test helper.
func (t *TieredStore) Wait() {
	t.local.Wait()
}
