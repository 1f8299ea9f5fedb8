package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Model identifiers and sampling temperatures.
const (
	GeminiFlash     = "gemini-2.0-flash"
	GeminiFlashLite = "gemini-2.0-flash-lite"

	AnalysisTemperature  = 0.2
	SelectionTemperature = 0.1
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Client calls the Google Generative Language API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// ClientConfig holds configuration for the LLM client.
type ClientConfig struct {
	BaseURL string // defaults to the public Generative Language endpoint
	APIKey  string
	Model   string // defaults to GeminiFlash
	Logger  *zap.Logger
}

// NewClient creates a Generative Language API client.
func NewClient(cfg *ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = GeminiFlash
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

type generateRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends a system+user prompt pair and returns the model's text.
func (c *Client) Generate(ctx context.Context, system, user string, temperature float64) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("GOOGLE_API_KEY is not set")
	}

	reqBody := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: user}}},
		},
		GenerationConfig: generationConfig{Temperature: temperature},
	}
	if system != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}

	raw, err := json.Marshal(&reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	RequestDurationSeconds.Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		RequestErrorsTotal.Inc()
		return "", fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var parsed generateResponse
	err = json.Unmarshal(body, &parsed)
	if err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if parsed.Error != nil {
		RequestErrorsTotal.Inc()
		return "", fmt.Errorf("api error %s: %s", parsed.Error.Status, parsed.Error.Message)
	}

	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}

	text := strings.TrimSpace(sb.String())
	c.logger.Debug("llm-response-received",
		zap.String("model", c.model),
		zap.Int("length", len(text)),
		zap.Duration("duration", time.Since(start)))

	return text, nil
}
