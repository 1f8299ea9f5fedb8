package tools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/trenchai/trench-agent/pkg/types"
)

// TavilyTool searches the web in real time via the Tavily API.
type TavilyTool struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// TavilyConfig holds configuration for the Tavily tool.
type TavilyConfig struct {
	APIKey  string
	BaseURL string // defaults to https://api.tavily.com, override for tests
	Logger  *zap.Logger
}

// NewTavilyTool creates the Tavily web search tool.
func NewTavilyTool(cfg *TavilyConfig) *TavilyTool {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}

	return &TavilyTool{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     cfg.Logger,
	}
}

// Name implements Tool.
func (t *TavilyTool) Name() string { return "tavily" }

// Description implements Tool.
func (t *TavilyTool) Description() string {
	return "Search for real-time web results using the Tavily API. Use this for up-to-date information from the web."
}

// Execute implements Tool: web search with results rendered as articles.
func (t *TavilyTool) Execute(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	ExecutionsTotal.WithLabelValues(t.Name()).Inc()
	defer func() {
		ExecutionDurationSeconds.WithLabelValues(t.Name()).Observe(time.Since(start).Seconds())
	}()

	if req.Query == "" {
		return nil, types.NewToolError(t.Name(), types.ErrCodeBadResponse, "query is required")
	}

	if t.apiKey == "" {
		return nil, types.NewToolError(t.Name(), types.ErrCodeAuth, "TAVILY_API_KEY is not set")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultWebLimit
	}

	payload, err := json.Marshal(map[string]any{
		"api_key":     t.apiKey,
		"query":       req.Query,
		"max_results": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		ErrorsTotal.WithLabelValues(t.Name()).Inc()
		return nil, types.NewToolError(t.Name(), types.ErrCodeNetwork, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		ErrorsTotal.WithLabelValues(t.Name()).Inc()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, types.NewToolError(t.Name(), types.ErrCodeRateLimit, string(body))
		}
		return nil, types.NewToolError(t.Name(), types.ErrCodeBadResponse,
			fmt.Sprintf("unexpected status code %d: %s", resp.StatusCode, string(body)))
	}

	var parsed struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		ErrorsTotal.WithLabelValues(t.Name()).Inc()
		return nil, types.NewToolError(t.Name(), types.ErrCodeBadResponse, err.Error())
	}

	articles := make([]types.Article, 0, len(parsed.Results))
	for _, res := range parsed.Results {
		articles = append(articles, types.Article{
			Title:       res.Title,
			Summary:     res.Content,
			Link:        res.URL,
			Authors:     []types.Author{{Name: "Web Search"}},
			Category:    "Web Search",
			SubCategory: "Tavily",
		})
	}

	t.logger.Info("tavily-results", zap.String("query", req.Query), zap.Int("count", len(articles)))
	return &Result{Articles: articles, Source: "API"}, nil
}
