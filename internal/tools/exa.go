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

// ExaTool searches the web via the Exa neural search API.
type ExaTool struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// ExaConfig holds configuration for the Exa tool.
type ExaConfig struct {
	APIKey  string
	BaseURL string // defaults to https://api.exa.ai, override for tests
	Logger  *zap.Logger
}

// NewExaTool creates the Exa web search tool.
func NewExaTool(cfg *ExaConfig) *ExaTool {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.exa.ai"
	}

	return &ExaTool{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     cfg.Logger,
	}
}

// Name implements Tool.
func (e *ExaTool) Name() string { return "exa" }

// Description implements Tool.
func (e *ExaTool) Description() string {
	return "Search the web with Exa neural search. Use this as an alternative web source for niche or long-tail crypto topics."
}

// Execute implements Tool: neural web search rendered as articles.
func (e *ExaTool) Execute(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	ExecutionsTotal.WithLabelValues(e.Name()).Inc()
	defer func() {
		ExecutionDurationSeconds.WithLabelValues(e.Name()).Observe(time.Since(start).Seconds())
	}()

	if req.Query == "" {
		return nil, types.NewToolError(e.Name(), types.ErrCodeBadResponse, "query is required")
	}

	if e.apiKey == "" {
		return nil, types.NewToolError(e.Name(), types.ErrCodeAuth, "EXA_API_KEY is not set")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultWebLimit
	}

	payload, err := json.Marshal(map[string]any{
		"query":      req.Query,
		"numResults": limit,
		"contents":   map[string]any{"text": true},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", e.apiKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		ErrorsTotal.WithLabelValues(e.Name()).Inc()
		return nil, types.NewToolError(e.Name(), types.ErrCodeNetwork, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		ErrorsTotal.WithLabelValues(e.Name()).Inc()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, types.NewToolError(e.Name(), types.ErrCodeRateLimit, string(body))
		}
		return nil, types.NewToolError(e.Name(), types.ErrCodeBadResponse,
			fmt.Sprintf("unexpected status code %d: %s", resp.StatusCode, string(body)))
	}

	var parsed struct {
		Results []struct {
			Title         string `json:"title"`
			URL           string `json:"url"`
			PublishedDate string `json:"publishedDate"`
			Text          string `json:"text"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		ErrorsTotal.WithLabelValues(e.Name()).Inc()
		return nil, types.NewToolError(e.Name(), types.ErrCodeBadResponse, err.Error())
	}

	articles := make([]types.Article, 0, len(parsed.Results))
	for _, res := range parsed.Results {
		articles = append(articles, types.Article{
			Title:       res.Title,
			Summary:     res.Text,
			Link:        res.URL,
			Published:   res.PublishedDate,
			Authors:     []types.Author{{Name: "Web Search"}},
			Category:    "Web Search",
			SubCategory: "Exa",
		})
	}

	e.logger.Info("exa-results", zap.String("query", req.Query), zap.Int("count", len(articles)))
	return &Result{Articles: articles, Source: "API"}, nil
}
