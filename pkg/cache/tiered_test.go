package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"
)

func newTieredStore(t *testing.T) (*TieredStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	remote := NewRedisStore(&RedisConfig{
		Addr:   mr.Addr(),
		TTL:    time.Hour,
		Logger: zap.NewNop(),
	})

	tiered, err := NewTieredStore(&TieredConfig{
		Remote:      remote,
		NumCounters: 1000,
		MaxCost:     100,
		LocalTTL:    time.Minute,
		Logger:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("create tiered store: %v", err)
	}
	t.Cleanup(func() { _ = tiered.Close() })

	return tiered, mr
}

func TestTieredSetAndGet(t *testing.T) {
	store, _ := newTieredStore(t)
	ctx := context.Background()

	if !store.Set(ctx, "k", []byte("v"), time.Minute) {
		t.Fatal("set failed")
	}
	store.Wait()

	got, ok := store.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Errorf("expected hit with %q, got %q (ok=%v)", "v", got, ok)
	}
}

func TestTieredServesFromLocalWhenRemoteDown(t *testing.T) {
	store, mr := newTieredStore(t)
	ctx := context.Background()

	store.Set(ctx, "k", []byte("v"), time.Minute)
	store.Wait()

	mr.Close()

	got, ok := store.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Errorf("expected local layer to serve the hot key, got %q (ok=%v)", got, ok)
	}
}

func TestTieredPromotesRemoteHits(t *testing.T) {
	store, mr := newTieredStore(t)
	ctx := context.Background()

	// Value present remotely but not locally.
	mr.Set("k", "v")

	got, ok := store.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Fatalf("expected remote hit, got %q (ok=%v)", got, ok)
	}
	store.Wait()

	mr.Close()

	got, ok = store.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Errorf("expected promoted local copy after remote hit, got %q (ok=%v)", got, ok)
	}
}

func TestTieredSetFailsWhenRemoteDown(t *testing.T) {
	store, mr := newTieredStore(t)
	ctx := context.Background()

	mr.Close()

	if store.Set(ctx, "k", []byte("v"), time.Minute) {
		t.Error("expected set to fail when remote is down")
	}
	store.Wait()

	// The local layer must not be ahead of the remote.
	if _, ok := store.local.Get("k"); ok {
		t.Error("local layer must not hold a value the remote rejected")
	}
}

func TestTieredDelete(t *testing.T) {
	store, mr := newTieredStore(t)
	ctx := context.Background()

	store.Set(ctx, "k", []byte("v"), time.Minute)
	store.Wait()

	store.Delete(ctx, "k")
	store.Wait()

	if mr.Exists("k") {
		t.Error("expected remote delete")
	}
	if _, ok := store.local.Get("k"); ok {
		t.Error("expected local delete")
	}
}
