package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/trenchai/trench-agent/internal/llm"
	"github.com/trenchai/trench-agent/internal/tools"
	"github.com/trenchai/trench-agent/pkg/types"
)

// Generator produces model text for a system+user prompt pair.
// Implemented by llm.Client.
type Generator interface {
	Generate(ctx context.Context, system, user string, temperature float64) (string, error)
}

// ToolCall is a single tool invocation chosen by the selection model.
type ToolCall struct {
	Name        string `json:"name"`
	CustomInput string `json:"custom_input"`
}

// Agent answers market intelligence queries: it selects data tools for the
// query, runs them concurrently, and synthesizes an analysis from the merged
// results.
type Agent struct {
	selector Generator
	analyst  Generator
	registry map[string]tools.Tool
	names    []string // registration order, for stable prompt rendering
	logger   *zap.Logger
}

// Config holds the agent's collaborators.
type Config struct {
	Selector Generator // fast model used for tool selection
	Analyst  Generator // model used for synthesis
	Tools    []tools.Tool
	Logger   *zap.Logger
}

// New creates an agent with the given tool set.
func New(cfg *Config) *Agent {
	registry := make(map[string]tools.Tool, len(cfg.Tools))
	names := make([]string, 0, len(cfg.Tools))
	for _, tool := range cfg.Tools {
		registry[tool.Name()] = tool
		names = append(names, tool.Name())
	}

	return &Agent{
		selector: cfg.Selector,
		analyst:  cfg.Analyst,
		registry: registry,
		names:    names,
		logger:   cfg.Logger,
	}
}

// defaultToolCalls covers selection failures: keyword search plus social
// sentiment gives broad coverage for an arbitrary query.
func (a *Agent) defaultToolCalls(query string) []ToolCall {
	calls := make([]ToolCall, 0, 2)
	for _, name := range []string{"search", "twitter"} {
		if _, ok := a.registry[name]; ok {
			calls = append(calls, ToolCall{Name: name, CustomInput: query})
		}
	}
	return calls
}

// SelectTools asks the selection model which tools fit the query. Unknown
// tool names are dropped; an unusable selection falls back to the defaults.
func (a *Agent) SelectTools(ctx context.Context, query string) []ToolCall {
	var descriptions strings.Builder
	for _, name := range a.names {
		fmt.Fprintf(&descriptions, "- %s: %s\n", name, a.registry[name].Description())
	}

	system := fmt.Sprintf(llm.ToolSelectionPrompt, descriptions.String())

	raw, err := a.selector.Generate(ctx, system, query, llm.SelectionTemperature)
	if err != nil {
		SelectionFallbacksTotal.Inc()
		a.logger.Warn("tool-selection-failed", zap.Error(err))
		return a.defaultToolCalls(query)
	}

	var parsed struct {
		ToolsNeeded []ToolCall `json:"tools_needed"`
	}
	if err := json.Unmarshal([]byte(llm.StripFences(raw)), &parsed); err != nil {
		SelectionFallbacksTotal.Inc()
		a.logger.Warn("tool-selection-unparseable", zap.String("raw", raw), zap.Error(err))
		return a.defaultToolCalls(query)
	}

	calls := parsed.ToolsNeeded[:0]
	for _, call := range parsed.ToolsNeeded {
		if _, ok := a.registry[call.Name]; !ok {
			a.logger.Warn("unknown-tool-selected", zap.String("tool", call.Name))
			continue
		}
		if call.CustomInput == "" {
			call.CustomInput = query
		}
		calls = append(calls, call)
	}

	if len(calls) == 0 {
		SelectionFallbacksTotal.Inc()
		return a.defaultToolCalls(query)
	}

	a.logger.Info("tools-selected", zap.Int("count", len(calls)))
	return calls
}

// gathered is the merged output of a tool fan-out.
type gathered struct {
	articles    []types.Article
	timeContext string
}

// runTools executes the selected tools concurrently and merges their results.
// Tweets are converted to articles so everything downstream handles one shape.
// Individual tool failures are logged and skipped.
func (a *Agent) runTools(ctx context.Context, calls []ToolCall) gathered {
	var mu sync.Mutex
	var out gathered

	g, ctx := errgroup.WithContext(ctx)

	for _, call := range calls {
		tool := a.registry[call.Name]
		input := call.CustomInput

		g.Go(func() error {
			result, err := tool.Execute(ctx, tools.Request{Query: input})
			if err != nil {
				a.logger.Warn("tool-execution-failed",
					zap.String("tool", tool.Name()),
					zap.Error(err))
				return nil
			}

			mu.Lock()
			defer mu.Unlock()

			out.articles = append(out.articles, result.Articles...)
			for i := range result.Tweets {
				out.articles = append(out.articles, result.Tweets[i].AsArticle())
			}
			if out.timeContext == "" && result.TimeContext != "" {
				out.timeContext = result.TimeContext
			}
			return nil
		})
	}

	_ = g.Wait()
	return out
}

// ProcessQuery answers a query end to end.
func (a *Agent) ProcessQuery(ctx context.Context, req *types.QueryRequest) (*types.AnalysisResponse, error) {
	start := time.Now()
	QueriesTotal.Inc()
	defer func() {
		QueryDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	minArticles := req.MinArticles
	if minArticles <= 0 {
		minArticles = types.DefaultMinArticles
	}

	calls := a.SelectTools(ctx, req.Query)
	result := a.runTools(ctx, calls)

	// Nothing came back from the selected tools. Walk the fallback chain
	// before degrading: social chatter first, then the news corpus.
	if len(result.articles) == 0 {
		result = a.fallbackTools(ctx, req.Query, calls)
	}

	if len(result.articles) == 0 {
		a.logger.Warn("no-data-for-query", zap.String("query", req.Query))
		return a.degradedResponse(req.Query), nil
	}

	if result.timeContext == "" {
		result.timeContext = fmt.Sprintf("Past %d hours", tools.DefaultHoursBack)
	}

	analysis, err := a.analyze(ctx, req, result)
	if err != nil {
		QueryErrorsTotal.Inc()
		return nil, fmt.Errorf("analyze query: %w", err)
	}

	return a.buildResponse(req.Query, minArticles, result.articles, analysis), nil
}

// fallbackTools retries with tools the selection skipped, in relevance order.
func (a *Agent) fallbackTools(ctx context.Context, query string, tried []ToolCall) gathered {
	attempted := make(map[string]bool, len(tried))
	for _, call := range tried {
		attempted[call.Name] = true
	}

	for _, name := range []string{"twitter", "news"} {
		if attempted[name] {
			continue
		}
		if _, ok := a.registry[name]; !ok {
			continue
		}

		a.logger.Info("fallback-tool-attempt", zap.String("tool", name))
		result := a.runTools(ctx, []ToolCall{{Name: name, CustomInput: query}})
		if len(result.articles) > 0 {
			return result
		}
	}

	return gathered{}
}

// analyze sends the merged articles to the synthesis model.
func (a *Agent) analyze(ctx context.Context, req *types.QueryRequest, result gathered) (*llm.Analysis, error) {
	query := req.Query
	if len(req.AdditionalContext) > 0 {
		extra, err := json.Marshal(req.AdditionalContext)
		if err == nil {
			query = fmt.Sprintf("%s\n\nAdditional token data: %s", query, string(extra))
		}
	}

	articlesJSON, err := json.Marshal(result.articles)
	if err != nil {
		return nil, fmt.Errorf("marshal articles: %w", err)
	}

	user := llm.AnalysisUserPrompt(query, result.timeContext, string(articlesJSON), len(result.articles))

	raw, err := a.analyst.Generate(ctx, llm.AnalysisSystemPrompt, user, llm.AnalysisTemperature)
	if err != nil {
		return nil, err
	}

	return llm.ParseAnalysis(raw), nil
}

// buildResponse assembles the response body. Articles the model analyzed are
// listed first; the list is then topped up to minArticles from the remainder.
func (a *Agent) buildResponse(query string, minArticles int, articles []types.Article, analysis *llm.Analysis) *types.AnalysisResponse {
	analyzed := make(map[string]bool, len(analysis.ArticleAnalysis))
	significances := make([]string, 0, 3)
	for _, aa := range analysis.ArticleAnalysis {
		analyzed[aa.Title] = true
		if len(significances) < 3 && aa.Significance != "" {
			significances = append(significances, aa.Significance)
		}
	}

	ordered := make([]types.Article, 0, len(articles))
	var rest []types.Article
	for _, article := range articles {
		if analyzed[article.Title] {
			ordered = append(ordered, article)
		} else {
			rest = append(rest, article)
		}
	}
	for _, article := range rest {
		if len(ordered) >= minArticles && len(ordered) >= len(analysis.ArticleAnalysis) {
			break
		}
		ordered = append(ordered, article)
	}

	sentiment := analysis.Sentiment
	if sentiment == "" {
		sentiment = types.SentimentNeutral
	}

	return &types.AnalysisResponse{
		Query:           query,
		Answer:          analysis.Answer,
		Sentiment:       sentiment,
		Context:         strings.Join(significances, " "),
		TrendingTopics:  analysis.TrendingTopics,
		Articles:        ordered,
		ArticleAnalysis: analysis.ArticleAnalysis,
		ProcessedAt:     time.Now().UTC().Format(time.RFC3339),
	}
}

// degradedResponse is returned when every data source came up empty.
func (a *Agent) degradedResponse(query string) *types.AnalysisResponse {
	return &types.AnalysisResponse{
		Query:     query,
		Answer:    "I could not retrieve any recent data for this query. Please try again shortly or rephrase the query.",
		Sentiment: types.SentimentNeutral,
		Context:   "No articles or social data were available.",
		TrendingTopics: []string{
			"Bitcoin", "Ethereum", "Cryptocurrency", "Market Analysis", "Trading",
		},
		Articles:        []types.Article{},
		ArticleAnalysis: []types.ArticleAnalysis{},
		ProcessedAt:     time.Now().UTC().Format(time.RFC3339),
	}
}
