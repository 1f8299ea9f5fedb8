package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("expected api key in query, got %q", r.URL.Query().Get("key"))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [
				{"content": {"parts": [{"text": "part one "}, {"text": "part two"}]}}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(&ClientConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Logger:  zap.NewNop(),
	})

	text, err := client.Generate(context.Background(), "system", "user", AnalysisTemperature)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if text != "part one part two" {
		t.Errorf("expected concatenated parts, got %q", text)
	}
}

func TestGenerateMissingAPIKey(t *testing.T) {
	client := NewClient(&ClientConfig{Logger: zap.NewNop()})

	_, err := client.Generate(context.Background(), "", "user", AnalysisTemperature)
	if err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestGenerateUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "quota", "status": "RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	client := NewClient(&ClientConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Logger:  zap.NewNop(),
	})

	_, err := client.Generate(context.Background(), "", "user", AnalysisTemperature)
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status code in error, got %v", err)
	}
}

func TestGenerateNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client := NewClient(&ClientConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Logger:  zap.NewNop(),
	})

	_, err := client.Generate(context.Background(), "", "user", AnalysisTemperature)
	if err == nil {
		t.Fatal("expected error for empty candidates")
	}
}
