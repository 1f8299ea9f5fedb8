package cache

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
)

// Store is the interface for the key-value result cache.
//
// Implementations must never serve expired entries and must treat backend
// failures as misses: Get returns (nil, false) and Set returns false instead
// of surfacing the error, so callers fall through to recomputation.
type Store interface {
	// Get retrieves a value. Returns (value, true) on a fresh hit,
	// (nil, false) on miss, expiry, or backend failure.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with expiration ttl from now, overwriting any
	// prior entry. Returns false if the value could not be stored.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool

	// Delete removes a value.
	Delete(ctx context.Context, key string)

	// Close releases backend resources.
	Close() error
}

// GetJSON retrieves and unmarshals a cached value into out.
// A corrupt entry counts as a miss.
func GetJSON(ctx context.Context, s Store, key string, out any) bool {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return false
	}

	err := json.Unmarshal(raw, out)
	return err == nil
}

// SetJSON marshals value and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, value any, ttl time.Duration) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}

	return s.Set(ctx, key, raw, ttl)
}
