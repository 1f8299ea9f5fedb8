package tools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"github.com/trenchai/trench-agent/pkg/cache"
	"github.com/trenchai/trench-agent/pkg/types"
)

func newNewsStore(t *testing.T) *cache.RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	store := cache.NewRedisStore(&cache.RedisConfig{
		Addr:   mr.Addr(),
		TTL:    time.Hour,
		Logger: zap.NewNop(),
	})
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestNewsFetchArticles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-rapidapi-key") != "test-key" {
			t.Errorf("missing rapidapi key header")
		}
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("expected format=json, got %q", r.URL.Query().Get("format"))
		}

		_, _ = w.Write([]byte(`[
			{"title": "BTC rallies", "link": "https://news.example/btc", "published": "` +
			time.Now().UTC().Format(time.RFC3339) + `"}
		]`))
	}))
	defer server.Close()

	tool := NewNewsTool(&NewsConfig{
		APIKey:     "test-key",
		APIHost:    "crypto-news51.p.rapidapi.com",
		BaseURL:    server.URL,
		Store:      newNewsStore(t),
		StaleAfter: time.Hour,
		Logger:     zap.NewNop(),
	})

	articles, err := tool.FetchArticles(context.Background(), 1, 10, "24h")
	if err != nil {
		t.Fatalf("fetch articles: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "BTC rallies" {
		t.Errorf("unexpected articles %+v", articles)
	}
}

func TestNewsFetchArticlesWrappedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"articles": [{"title": "Wrapped", "link": "https://news.example/w"}]}`))
	}))
	defer server.Close()

	tool := NewNewsTool(&NewsConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Store:      newNewsStore(t),
		StaleAfter: time.Hour,
		Logger:     zap.NewNop(),
	})

	articles, err := tool.FetchArticles(context.Background(), 1, 10, "24h")
	if err != nil {
		t.Fatalf("fetch articles: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "Wrapped" {
		t.Errorf("unexpected articles %+v", articles)
	}
}

func TestNewsFetchArticlesMissingKey(t *testing.T) {
	tool := NewNewsTool(&NewsConfig{
		Store:      newNewsStore(t),
		StaleAfter: time.Hour,
		Logger:     zap.NewNop(),
	})

	_, err := tool.FetchArticles(context.Background(), 1, 10, "24h")

	var te *types.ToolError
	if !errors.As(err, &te) || te.Code != types.ErrCodeAuth {
		t.Errorf("expected AUTH tool error, got %v", err)
	}
}

func TestNewsRefreshSkipsFreshCache(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`[{"title": "a", "link": "https://news.example/a"}]`))
	}))
	defer server.Close()

	store := newNewsStore(t)
	tool := NewNewsTool(&NewsConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Store:      store,
		StaleAfter: time.Hour,
		Logger:     zap.NewNop(),
	})

	ctx := context.Background()

	err := tool.Refresh(ctx)
	if err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", calls)
	}

	// Corpus is fresh now, so a second refresh must not hit the API.
	err = tool.Refresh(ctx)
	if err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected refresh to skip fresh cache, got %d calls", calls)
	}
}

func TestNewsExecuteServesCache(t *testing.T) {
	store := newNewsStore(t)
	ctx := context.Background()

	store.SetArticles(ctx, []types.Article{
		{Title: "Cached", Link: "https://news.example/c", Published: time.Now().UTC().Format(time.RFC3339)},
	})

	tool := NewNewsTool(&NewsConfig{
		APIKey:     "test-key",
		BaseURL:    "http://127.0.0.1:0", // any upstream call would fail
		Store:      store,
		StaleAfter: time.Hour,
		Logger:     zap.NewNop(),
	})

	result, err := tool.Execute(ctx, Request{Query: "bitcoin today"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if result.Source != "Cache" {
		t.Errorf("expected cache source, got %q", result.Source)
	}
	if len(result.Articles) != 1 || result.Articles[0].Title != "Cached" {
		t.Errorf("unexpected articles %+v", result.Articles)
	}
	if result.TimeContext != "Past 24 hours" {
		t.Errorf("unexpected time context %q", result.TimeContext)
	}
}

func TestNewsExecuteFallsThroughToAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"title": "Fresh", "link": "https://news.example/f", "published": "` +
			time.Now().UTC().Format(time.RFC3339) + `"}]`))
	}))
	defer server.Close()

	store := newNewsStore(t)
	tool := NewNewsTool(&NewsConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Store:      store,
		StaleAfter: time.Hour,
		Logger:     zap.NewNop(),
	})

	result, err := tool.Execute(context.Background(), Request{Query: "bitcoin"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(result.Articles) != 1 || result.Articles[0].Title != "Fresh" {
		t.Errorf("unexpected articles %+v", result.Articles)
	}
}
