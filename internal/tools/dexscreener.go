package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/trenchai/trench-agent/pkg/cache"
	"github.com/trenchai/trench-agent/pkg/types"
)

const dexCacheTTL = 5 * time.Minute

// DexPair is a trading pair as returned by the Dexscreener API.
type DexPair struct {
	ChainID     string `json:"chainId"`
	DexID       string `json:"dexId"`
	URL         string `json:"url"`
	PairAddress string `json:"pairAddress"`
	BaseToken   struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	QuoteToken struct {
		Symbol string `json:"symbol"`
	} `json:"quoteToken"`
	PriceUSD  string `json:"priceUsd"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	PriceChange struct {
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
}

// DexTool provides on-chain token analytics from the Dexscreener API.
// Dexscreener requires no API key.
type DexTool struct {
	baseURL    string
	store      cache.Store
	httpClient *http.Client
	logger     *zap.Logger
}

// DexConfig holds configuration for the Dexscreener tool.
type DexConfig struct {
	BaseURL string // defaults to https://api.dexscreener.com, override for tests
	Store   cache.Store
	Logger  *zap.Logger
}

// NewDexTool creates the Dexscreener tool.
func NewDexTool(cfg *DexConfig) *DexTool {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.dexscreener.com"
	}

	return &DexTool{
		baseURL:    baseURL,
		store:      cfg.Store,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     cfg.Logger,
	}
}

// Name implements Tool.
func (d *DexTool) Name() string { return "dexscreener" }

// Description implements Tool.
func (d *DexTool) Description() string {
	return "Get real-time token price, liquidity, volume, and trading data from Dexscreener. Use this for on-chain token analytics and DEX pair search."
}

// SearchPairs searches DEX pairs matching the query.
func (d *DexTool) SearchPairs(ctx context.Context, query string) ([]DexPair, error) {
	var resp struct {
		Pairs []DexPair `json:"pairs"`
	}

	endpoint := fmt.Sprintf("%s/latest/dex/search?q=%s", d.baseURL, url.QueryEscape(query))
	err := d.getJSON(ctx, endpoint, &resp)
	if err != nil {
		return nil, err
	}

	return resp.Pairs, nil
}

// TokenPools fetches the pools of a token on a chain.
func (d *DexTool) TokenPools(ctx context.Context, chainID, tokenAddress string) ([]DexPair, error) {
	var pairs []DexPair

	endpoint := fmt.Sprintf("%s/token-pairs/v1/%s/%s", d.baseURL, chainID, tokenAddress)
	err := d.getJSON(ctx, endpoint, &pairs)
	if err != nil {
		return nil, err
	}

	return pairs, nil
}

// BoostedToken is an entry from the token-boosts endpoints.
type BoostedToken struct {
	ChainID      string  `json:"chainId"`
	TokenAddress string  `json:"tokenAddress"`
	URL          string  `json:"url"`
	Description  string  `json:"description"`
	TotalAmount  float64 `json:"totalAmount"`
}

// TopBoostedTokens fetches the currently most boosted tokens.
func (d *DexTool) TopBoostedTokens(ctx context.Context) ([]BoostedToken, error) {
	var tokens []BoostedToken

	err := d.getJSON(ctx, d.baseURL+"/token-boosts/top/v1", &tokens)
	if err != nil {
		return nil, err
	}

	return tokens, nil
}

// Execute implements Tool: pair search formatted as article-shaped analytics
// summaries, cached briefly since DEX data moves fast.
func (d *DexTool) Execute(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	ExecutionsTotal.WithLabelValues(d.Name()).Inc()
	defer func() {
		ExecutionDurationSeconds.WithLabelValues(d.Name()).Observe(time.Since(start).Seconds())
	}()

	if req.Query == "" {
		return nil, types.NewToolError(d.Name(), types.ErrCodeBadResponse, "query is required")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultWebLimit
	}

	cacheKey := cache.DataKeyPrefix + "dexscreener:" + req.Query

	var pairs []DexPair
	source := "Cache"

	if !cache.GetJSON(ctx, d.store, cacheKey, &pairs) || len(pairs) == 0 {
		var err error
		pairs, err = d.SearchPairs(ctx, req.Query)
		if err != nil {
			ErrorsTotal.WithLabelValues(d.Name()).Inc()
			return nil, err
		}

		if len(pairs) > 0 {
			cache.SetJSON(ctx, d.store, cacheKey, pairs, dexCacheTTL)
		}
		source = "API"
	}

	if len(pairs) > limit {
		pairs = pairs[:limit]
	}

	articles := make([]types.Article, 0, len(pairs))
	for i := range pairs {
		articles = append(articles, pairArticle(&pairs[i]))
	}

	return &Result{Articles: articles, Source: source}, nil
}

// pairArticle renders a trading pair as an article so pair analytics flow
// through the same merge and LLM pipeline as news.
func pairArticle(p *DexPair) types.Article {
	return types.Article{
		Title: fmt.Sprintf("%s/%s on %s (%s)", p.BaseToken.Symbol, p.QuoteToken.Symbol, p.ChainID, p.DexID),
		Summary: fmt.Sprintf("%s is trading at $%s on %s. 24h volume $%.0f, liquidity $%.0f, 24h change %+.2f%%.",
			p.BaseToken.Name, p.PriceUSD, p.DexID, p.Volume.H24, p.Liquidity.USD, p.PriceChange.H24),
		Link:        p.URL,
		Published:   time.Now().UTC().Format(time.RFC3339),
		Category:    "DEX",
		SubCategory: "Dexscreener",
	}
}

func (d *DexTool) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return types.NewToolError(d.Name(), types.ErrCodeNetwork, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return types.NewToolError(d.Name(), types.ErrCodeRateLimit, "rate limited")
	}
	if resp.StatusCode != http.StatusOK {
		return types.NewToolError(d.Name(), types.ErrCodeBadResponse,
			fmt.Sprintf("unexpected status code %d", resp.StatusCode))
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return types.NewToolError(d.Name(), types.ErrCodeBadResponse, err.Error())
	}

	return nil
}
