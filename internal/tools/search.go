package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/trenchai/trench-agent/pkg/cache"
	"github.com/trenchai/trench-agent/pkg/types"
)

// SearchTool searches cryptocurrency news articles by keyword via the
// RapidAPI crypto-news upstream, with results cached under the query.
type SearchTool struct {
	apiKey     string
	apiHost    string
	baseURL    string
	store      cache.Store
	cacheTTL   time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// SearchConfig holds configuration for the search tool.
type SearchConfig struct {
	APIKey   string
	APIHost  string
	BaseURL  string // overrides the https://<APIHost> default, for tests
	Store    cache.Store
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// NewSearchTool creates the keyword search tool.
func NewSearchTool(cfg *SearchConfig) *SearchTool {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://" + cfg.APIHost
	}

	return &SearchTool{
		apiKey:     cfg.APIKey,
		apiHost:    cfg.APIHost,
		baseURL:    baseURL,
		store:      cfg.Store,
		cacheTTL:   cfg.CacheTTL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     cfg.Logger,
	}
}

// Name implements Tool.
func (s *SearchTool) Name() string { return "search" }

// Description implements Tool.
func (s *SearchTool) Description() string {
	return "Search for cryptocurrency news articles by keyword. Use this when looking for specific topics or cryptocurrencies."
}

// SearchArticles queries the upstream search endpoint by title keywords.
func (s *SearchTool) SearchArticles(ctx context.Context, keywords string, limit int) ([]types.Article, error) {
	if s.apiKey == "" {
		return nil, types.NewToolError(s.Name(), types.ErrCodeAuth, "RAPIDAPI_KEY is not set")
	}

	params := url.Values{}
	params.Add("title_keywords", keywords)
	params.Add("page", "1")
	params.Add("limit", strconv.Itoa(limit))
	params.Add("time_frame", "24h")
	params.Add("format", "json")

	requestURL := fmt.Sprintf("%s/api/v1/crypto/articles/search?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-rapidapi-host", s.apiHost)
	req.Header.Set("x-rapidapi-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, types.NewToolError(s.Name(), types.ErrCodeNetwork, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, types.NewToolError(s.Name(), types.ErrCodeRateLimit, string(body))
		}
		return nil, types.NewToolError(s.Name(), types.ErrCodeBadResponse,
			fmt.Sprintf("unexpected status code %d: %s", resp.StatusCode, string(body)))
	}

	articles, err := decodeArticles(resp.Body)
	if err != nil {
		return nil, types.NewToolError(s.Name(), types.ErrCodeBadResponse, err.Error())
	}

	return articles, nil
}

// Execute implements Tool: cached keyword search.
func (s *SearchTool) Execute(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	ExecutionsTotal.WithLabelValues(s.Name()).Inc()
	defer func() {
		ExecutionDurationSeconds.WithLabelValues(s.Name()).Observe(time.Since(start).Seconds())
	}()

	keywords := strings.ToLower(strings.TrimSpace(req.Query))
	if keywords == "" {
		return nil, types.NewToolError(s.Name(), types.ErrCodeBadResponse, "keywords are required")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	s.logger.Info("search-tool-executing", zap.String("keywords", keywords), zap.Int("limit", limit))

	cacheKey := cache.SearchKeyPrefix + keywords

	var articles []types.Article
	if cache.GetJSON(ctx, s.store, cacheKey, &articles) && len(articles) > 0 {
		s.logger.Info("search-cache-hit", zap.String("keywords", keywords), zap.Int("count", len(articles)))
		if len(articles) > limit {
			articles = articles[:limit]
		}
		return &Result{Articles: articles, Source: "Cache"}, nil
	}

	articles, err := s.SearchArticles(ctx, keywords, limit)
	if err != nil {
		ErrorsTotal.WithLabelValues(s.Name()).Inc()
		return nil, err
	}

	if len(articles) > 0 {
		cache.SetJSON(ctx, s.store, cacheKey, articles, s.cacheTTL)
	}

	if len(articles) > limit {
		articles = articles[:limit]
	}

	return &Result{Articles: articles, Source: "API"}, nil
}
