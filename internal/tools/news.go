package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/trenchai/trench-agent/pkg/types"
)

// ArticleStore is the cache surface the news tools re-warm and read.
// Implemented by cache.RedisStore.
type ArticleStore interface {
	SetArticles(ctx context.Context, articles []types.Article) int
	GetArticles(ctx context.Context, limit int, hoursBack int) []types.Article
	Stale(ctx context.Context, maxAge time.Duration) bool
}

// NewsTool serves the latest cryptocurrency news articles from the cached
// corpus, falling back to the RapidAPI crypto-news upstream on a cold cache.
type NewsTool struct {
	apiKey     string
	apiHost    string
	baseURL    string
	store      ArticleStore
	staleAfter time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewsConfig holds configuration for the news tool.
type NewsConfig struct {
	APIKey     string
	APIHost    string
	BaseURL    string // overrides the https://<APIHost> default, for tests
	Store      ArticleStore
	StaleAfter time.Duration // corpus age that triggers a refetch
	Logger     *zap.Logger
}

// NewNewsTool creates the news tool.
func NewNewsTool(cfg *NewsConfig) *NewsTool {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://" + cfg.APIHost
	}

	return &NewsTool{
		apiKey:     cfg.APIKey,
		apiHost:    cfg.APIHost,
		baseURL:    baseURL,
		store:      cfg.Store,
		staleAfter: cfg.StaleAfter,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     cfg.Logger,
	}
}

// Name implements Tool.
func (n *NewsTool) Name() string { return "news" }

// Description implements Tool.
func (n *NewsTool) Description() string {
	return "Get the latest cryptocurrency news articles. Use this for general market updates and trends."
}

// FetchArticles fetches articles from the upstream news API.
func (n *NewsTool) FetchArticles(ctx context.Context, page, limit int, timeFrame string) ([]types.Article, error) {
	if n.apiKey == "" {
		return nil, types.NewToolError(n.Name(), types.ErrCodeAuth, "RAPIDAPI_KEY is not set")
	}

	params := url.Values{}
	params.Add("page", strconv.Itoa(page))
	params.Add("limit", strconv.Itoa(limit))
	params.Add("time_frame", timeFrame)
	params.Add("format", "json")

	requestURL := fmt.Sprintf("%s/api/v1/crypto/articles?%s", n.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-rapidapi-host", n.apiHost)
	req.Header.Set("x-rapidapi-key", n.apiKey)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, types.NewToolError(n.Name(), types.ErrCodeNetwork, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, types.NewToolError(n.Name(), types.ErrCodeRateLimit, string(body))
		}
		return nil, types.NewToolError(n.Name(), types.ErrCodeBadResponse,
			fmt.Sprintf("unexpected status code %d: %s", resp.StatusCode, string(body)))
	}

	articles, err := decodeArticles(resp.Body)
	if err != nil {
		return nil, types.NewToolError(n.Name(), types.ErrCodeBadResponse, err.Error())
	}

	n.logger.Info("articles-fetched", zap.Int("count", len(articles)))
	return articles, nil
}

// Refresh re-warms the article corpus when it has gone stale.
// This is the refresh action driven by the background refresher.
func (n *NewsTool) Refresh(ctx context.Context) error {
	if !n.store.Stale(ctx, n.staleAfter) {
		n.logger.Info("cache-fresh-skipping-refresh")
		return nil
	}

	articles, err := n.FetchArticles(ctx, 1, 100, "24h")
	if err != nil {
		return fmt.Errorf("fetch articles: %w", err)
	}

	if len(articles) == 0 {
		return fmt.Errorf("upstream returned no articles")
	}

	n.store.SetArticles(ctx, articles)
	return nil
}

// Stale reports whether the article corpus needs a refresh.
func (n *NewsTool) Stale(ctx context.Context) bool {
	return n.store.Stale(ctx, n.staleAfter)
}

// Execute implements Tool: serve the cached corpus filtered to the query's
// time window, refreshing or falling through to the API when the cache is
// stale or empty.
func (n *NewsTool) Execute(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	ExecutionsTotal.WithLabelValues(n.Name()).Inc()
	defer func() {
		ExecutionDurationSeconds.WithLabelValues(n.Name()).Observe(time.Since(start).Seconds())
	}()

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultNewsLimit
	}

	hoursBack := HoursBack(req.Query)
	if hoursBack == 0 {
		hoursBack = DefaultHoursBack
	}

	n.logger.Info("news-tool-executing",
		zap.String("query", req.Query),
		zap.Int("hours-back", hoursBack),
		zap.Int("limit", limit))

	if n.store.Stale(ctx, n.staleAfter) {
		err := n.Refresh(ctx)
		if err != nil {
			ErrorsTotal.WithLabelValues(n.Name()).Inc()
			n.logger.Warn("pre-query-refresh-failed", zap.Error(err))
		}
	}

	source := "Cache"
	articles := n.store.GetArticles(ctx, limit, hoursBack)

	if len(articles) == 0 {
		n.logger.Warn("cache-empty-after-refresh-attempt")

		fetched, err := n.FetchArticles(ctx, 1, limit, "24h")
		if err != nil {
			ErrorsTotal.WithLabelValues(n.Name()).Inc()
			return nil, err
		}

		n.store.SetArticles(ctx, fetched)
		articles = fetched
		source = "API"
	}

	if len(articles) > limit {
		articles = articles[:limit]
	}

	return &Result{
		Articles:    articles,
		TimeContext: fmt.Sprintf("Past %d hours", hoursBack),
		Source:      source,
	}, nil
}

// decodeArticles handles both response shapes the upstream emits: a bare
// array, or an object with an "articles" field.
func decodeArticles(r io.Reader) ([]types.Article, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var articles []types.Article
	if err := json.Unmarshal(body, &articles); err == nil {
		return articles, nil
	}

	var wrapped struct {
		Articles []types.Article `json:"articles"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("unmarshal articles: %w", err)
	}

	return wrapped.Articles, nil
}
