package llm

import (
	"strings"

	json "github.com/goccy/go-json"

	"github.com/trenchai/trench-agent/pkg/types"
)

// Analysis is the structured result extracted from an LLM synthesis response.
type Analysis struct {
	Answer           string
	Sentiment        string
	TrendingTopics   []string
	ArticleAnalysis  []types.ArticleAnalysis
	NeedsMoreContext bool
}

// needsMoreContextPhrases flag free-text answers that ask for more data.
var needsMoreContextPhrases = []string{
	"need more context",
	"more information needed",
	"additional context",
	"more details required",
	"not enough information",
}

// StripFences removes a surrounding markdown code fence, if present.
// Models routinely wrap the requested JSON object in ```json fences.
func StripFences(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	}

	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// ParseAnalysis extracts an Analysis from raw model output. JSON is tried
// first; non-JSON output falls back to keyword extraction so a chatty model
// still yields a usable degraded result.
func ParseAnalysis(raw string) *Analysis {
	cleaned := StripFences(raw)

	var parsed struct {
		Answer           string                  `json:"answer"`
		Sentiment        string                  `json:"sentiment"`
		TrendingTopics   []string                `json:"trending_topics"`
		ArticleAnalysis  []types.ArticleAnalysis `json:"article_analysis"`
		NeedsMoreContext bool                    `json:"needs_more_context"`
	}

	err := json.Unmarshal([]byte(cleaned), &parsed)
	if err != nil {
		return extractFromText(raw)
	}

	analysis := &Analysis{
		Answer:           parsed.Answer,
		Sentiment:        normalizeSentiment(parsed.Sentiment),
		TrendingTopics:   parsed.TrendingTopics,
		ArticleAnalysis:  parsed.ArticleAnalysis,
		NeedsMoreContext: parsed.NeedsMoreContext,
	}

	if !analysis.NeedsMoreContext {
		analysis.NeedsMoreContext = containsNeedsMoreContext(parsed.Answer)
	}

	return analysis
}

// extractFromText builds a degraded Analysis from non-JSON output.
func extractFromText(raw string) *Analysis {
	lower := strings.ToLower(raw)

	sentiment := types.SentimentNeutral
	switch {
	case strings.Contains(lower, "bullish"):
		sentiment = types.SentimentBullish
	case strings.Contains(lower, "bearish"):
		sentiment = types.SentimentBearish
	case strings.Contains(lower, "mixed"):
		sentiment = types.SentimentMixed
	}

	return &Analysis{
		Answer:           strings.TrimSpace(raw),
		Sentiment:        sentiment,
		TrendingTopics:   []string{"Bitcoin", "Ethereum", "Cryptocurrency", "Market Analysis", "Trading"},
		NeedsMoreContext: containsNeedsMoreContext(raw),
	}
}

func containsNeedsMoreContext(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range needsMoreContextPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func normalizeSentiment(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bullish":
		return types.SentimentBullish
	case "bearish":
		return types.SentimentBearish
	case "mixed":
		return types.SentimentMixed
	case "neutral":
		return types.SentimentNeutral
	default:
		return types.SentimentNeutral
	}
}
