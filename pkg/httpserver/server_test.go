package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/trenchai/trench-agent/pkg/healthprobe"
	"github.com/trenchai/trench-agent/pkg/types"
)

type fakeProcessor struct {
	resp *types.AnalysisResponse
	err  error
	got  *types.QueryRequest
}

func (f *fakeProcessor) ProcessQuery(_ context.Context, req *types.QueryRequest) (*types.AnalysisResponse, error) {
	f.got = req
	return f.resp, f.err
}

func newTestServer(t *testing.T, processor QueryProcessor, rateLimit int) *Server {
	t.Helper()

	hc := healthprobe.New()
	hc.SetReady(true)

	return New(&Config{
		Port:          "0",
		RateLimit:     rateLimit,
		Logger:        zap.NewNop(),
		HealthChecker: hc,
		QueryHandler:  NewQueryHandler(processor, zap.NewNop()),
	})
}

func TestRoutes(t *testing.T) {
	processor := &fakeProcessor{resp: &types.AnalysisResponse{
		Query:     "bitcoin",
		Answer:    "all good",
		Sentiment: types.SentimentNeutral,
	}}
	srv := newTestServer(t, processor, 0)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"root", http.MethodGet, "/", "", http.StatusOK},
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"ready", http.MethodGet, "/ready", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"query", http.MethodPost, "/query", `{"query": "bitcoin"}`, http.StatusOK},
		{"query_wrong_method", http.MethodGet, "/query", "", http.StatusMethodNotAllowed},
		{"unknown_path", http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			srv.server.Handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestQueryRateLimit(t *testing.T) {
	processor := &fakeProcessor{resp: &types.AnalysisResponse{Query: "bitcoin"}}
	srv := newTestServer(t, processor, 2)

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"query": "bitcoin"}`))
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		srv.server.Handler.ServeHTTP(w, req)
		last = w.Code
	}

	if last != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want %d", last, http.StatusTooManyRequests)
	}
}

func TestHandleQuery(t *testing.T) {
	resp := &types.AnalysisResponse{
		Query:          "bitcoin outlook",
		Answer:         "BTC looks strong.",
		Sentiment:      types.SentimentBullish,
		TrendingTopics: []string{"Bitcoin"},
		Articles:       []types.Article{{Title: "BTC rallies"}},
		ProcessedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	processor := &fakeProcessor{resp: resp}
	handler := NewQueryHandler(processor, zap.NewNop())

	body := `{"query": "bitcoin outlook", "min_articles": 1, "additional_context": {"symbol": "BTC"}}`
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleQuery(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	if processor.got.Query != "bitcoin outlook" || processor.got.MinArticles != 1 {
		t.Errorf("unexpected request passed to processor %+v", processor.got)
	}
	if processor.got.AdditionalContext["symbol"] != "BTC" {
		t.Errorf("additional context not forwarded: %+v", processor.got.AdditionalContext)
	}

	var decoded types.AnalysisResponse
	if err := json.NewDecoder(w.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if decoded.Answer != resp.Answer || decoded.Sentiment != resp.Sentiment {
		t.Errorf("unexpected response %+v", decoded)
	}
}

func TestHandleQueryBadRequests(t *testing.T) {
	handler := NewQueryHandler(&fakeProcessor{}, zap.NewNop())

	tests := []struct {
		name string
		body string
	}{
		{"invalid_json", `{"query": `},
		{"empty_query", `{"query": ""}`},
		{"missing_query", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.HandleQuery(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}

			var resp errorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if resp.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestHandleQueryProcessorError(t *testing.T) {
	handler := NewQueryHandler(&fakeProcessor{err: errors.New("llm down")}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"query": "bitcoin"}`))
	w := httptest.NewRecorder()

	handler.HandleQuery(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
