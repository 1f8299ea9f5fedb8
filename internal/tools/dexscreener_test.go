package tools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"github.com/trenchai/trench-agent/pkg/cache"
	"github.com/trenchai/trench-agent/pkg/types"
)

const dexSearchResponse = `{
	"pairs": [{
		"chainId": "solana",
		"dexId": "raydium",
		"url": "https://dexscreener.com/solana/abc",
		"pairAddress": "abc",
		"baseToken": {"address": "So111", "name": "Wrapped SOL", "symbol": "SOL"},
		"quoteToken": {"symbol": "USDC"},
		"priceUsd": "142.51",
		"liquidity": {"usd": 5000000},
		"volume": {"h24": 12000000},
		"priceChange": {"h24": -3.2}
	}]
}`

func newDexStore(t *testing.T) cache.Store {
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

func TestDexExecuteRendersPairsAsArticles(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/latest/dex/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("q") != "SOL" {
			t.Errorf("unexpected query %q", r.URL.Query().Get("q"))
		}
		_, _ = w.Write([]byte(dexSearchResponse))
	}))
	defer server.Close()

	tool := NewDexTool(&DexConfig{
		BaseURL: server.URL,
		Store:   newDexStore(t),
		Logger:  zap.NewNop(),
	})

	ctx := context.Background()

	result, err := tool.Execute(ctx, Request{Query: "SOL"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if result.Source != "API" {
		t.Errorf("expected API source, got %q", result.Source)
	}
	if len(result.Articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(result.Articles))
	}

	article := result.Articles[0]
	if article.Title != "SOL/USDC on solana (raydium)" {
		t.Errorf("unexpected title %q", article.Title)
	}
	if !strings.Contains(article.Summary, "$142.51") {
		t.Errorf("summary missing price: %q", article.Summary)
	}
	if article.Category != "DEX" || article.SubCategory != "Dexscreener" {
		t.Errorf("unexpected categorization %q/%q", article.Category, article.SubCategory)
	}

	// Second execution within the cache TTL is served locally.
	result, err = tool.Execute(ctx, Request{Query: "SOL"})
	if err != nil {
		t.Fatalf("cached execute: %v", err)
	}
	if result.Source != "Cache" {
		t.Errorf("expected cache source, got %q", result.Source)
	}
	if calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}
}

func TestDexExecuteEmptyQuery(t *testing.T) {
	tool := NewDexTool(&DexConfig{
		Store:  newDexStore(t),
		Logger: zap.NewNop(),
	})

	_, err := tool.Execute(context.Background(), Request{})

	var te *types.ToolError
	if !errors.As(err, &te) || te.Code != types.ErrCodeBadResponse {
		t.Errorf("expected bad response tool error, got %v", err)
	}
}

func TestDexTokenPools(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token-pairs/v1/solana/So111" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		// This endpoint returns a bare array.
		_, _ = w.Write([]byte(`[{"chainId": "solana", "dexId": "orca", "priceUsd": "141.98"}]`))
	}))
	defer server.Close()

	tool := NewDexTool(&DexConfig{
		BaseURL: server.URL,
		Store:   newDexStore(t),
		Logger:  zap.NewNop(),
	})

	pairs, err := tool.TokenPools(context.Background(), "solana", "So111")
	if err != nil {
		t.Fatalf("token pools: %v", err)
	}
	if len(pairs) != 1 || pairs[0].DexID != "orca" {
		t.Errorf("unexpected pairs %+v", pairs)
	}
}

func TestDexTopBoostedTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token-boosts/top/v1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"chainId": "solana", "tokenAddress": "abc", "totalAmount": 500}]`))
	}))
	defer server.Close()

	tool := NewDexTool(&DexConfig{
		BaseURL: server.URL,
		Store:   newDexStore(t),
		Logger:  zap.NewNop(),
	})

	tokens, err := tool.TopBoostedTokens(context.Background())
	if err != nil {
		t.Fatalf("top boosted tokens: %v", err)
	}
	if len(tokens) != 1 || tokens[0].TotalAmount != 500 {
		t.Errorf("unexpected tokens %+v", tokens)
	}
}

func TestDexExecuteRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	tool := NewDexTool(&DexConfig{
		BaseURL: server.URL,
		Store:   newDexStore(t),
		Logger:  zap.NewNop(),
	})

	_, err := tool.Execute(context.Background(), Request{Query: "SOL"})
	if !types.IsRateLimited(err) {
		t.Errorf("expected rate limit error, got %v", err)
	}
}
