package httpserver

import (
	"context"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/trenchai/trench-agent/pkg/types"
)

// QueryProcessor answers market intelligence queries.
// Implemented by agent.Agent.
type QueryProcessor interface {
	ProcessQuery(ctx context.Context, req *types.QueryRequest) (*types.AnalysisResponse, error)
}

// QueryHandler serves POST /query.
type QueryHandler struct {
	processor QueryProcessor
	logger    *zap.Logger
}

// NewQueryHandler creates the query handler.
func NewQueryHandler(processor QueryProcessor, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		processor: processor,
		logger:    logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleQuery decodes the request, runs the agent, and writes the analysis.
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req types.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}

	minArticles := req.MinArticles
	if minArticles <= 0 {
		minArticles = types.DefaultMinArticles
	}

	h.logger.Info("query-received",
		zap.String("query", req.Query),
		zap.Int("min-articles", minArticles))

	resp, err := h.processor.ProcessQuery(r.Context(), &req)
	if err != nil {
		h.logger.Error("query-processing-failed", zap.String("query", req.Query), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "query processing failed"})
		return
	}

	if len(resp.Articles) < minArticles {
		h.logger.Warn("fewer-articles-than-requested",
			zap.Int("got", len(resp.Articles)),
			zap.Int("requested", minArticles))
	}

	h.logger.Info("query-processed",
		zap.String("query", req.Query),
		zap.String("sentiment", resp.Sentiment),
		zap.Int("articles", len(resp.Articles)),
		zap.Duration("duration", time.Since(start)))

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
