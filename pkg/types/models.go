package types

import "time"

// Sentiment labels returned by the analysis pipeline.
const (
	SentimentBullish = "Bullish"
	SentimentBearish = "Bearish"
	SentimentNeutral = "Neutral"
	SentimentMixed   = "Mixed"
)

// Author is an article author as provided by the upstream news API.
type Author struct {
	Name string `json:"name,omitempty"`
}

// Article is a news article in the normalized shape shared by all tools.
// Every field is pass-through data owned by the upstream provider.
type Article struct {
	Title       string   `json:"title,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Media       []string `json:"media,omitempty"`
	Link        string   `json:"link,omitempty"`
	Authors     []Author `json:"authors,omitempty"`
	Published   string   `json:"published,omitempty"`
	Category    string   `json:"category,omitempty"`
	SubCategory string   `json:"subCategory,omitempty"`
	Language    string   `json:"language,omitempty"`
	TimeZone    string   `json:"timeZone,omitempty"`
}

// PublishedTime parses the article's publication timestamp.
// Returns the zero time when the field is absent or unparseable.
func (a *Article) PublishedTime() time.Time {
	if a.Published == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		t, err := time.Parse(layout, a.Published)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}

// ArticleAnalysis is the LLM's per-article assessment.
type ArticleAnalysis struct {
	Title        string `json:"title"`
	KeyPoints    string `json:"key_points"`
	Significance string `json:"significance"`
}

// Tweet is a tweet in the normalized shape produced by the twitter tool.
type Tweet struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Author     string `json:"author"`
	AuthorName string `json:"author_name,omitempty"`
	CreatedAt  string `json:"created_at"`
	Likes      int    `json:"likes"`
	Retweets   int    `json:"retweets"`
}

// AsArticle converts a tweet into the article shape used for LLM input and
// API responses. Tweets and articles flow through the same merge pipeline.
func (t *Tweet) AsArticle() Article {
	author := t.Author
	if author == "" {
		author = "unknown"
	}
	return Article{
		Title:       "Tweet by @" + author,
		Summary:     t.Text,
		Link:        "https://twitter.com/" + author + "/status/" + t.ID,
		Published:   t.CreatedAt,
		Category:    "Social Media",
		SubCategory: "Twitter",
	}
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query             string         `json:"query"`
	MinArticles       int            `json:"min_articles,omitempty"`
	AdditionalContext map[string]any `json:"additional_context,omitempty"`
}

// DefaultMinArticles is applied when a request omits min_articles.
const DefaultMinArticles = 3

// AnalysisResponse is the body returned by POST /query.
type AnalysisResponse struct {
	Query           string            `json:"query"`
	Answer          string            `json:"answer"`
	Sentiment       string            `json:"sentiment"`
	Context         string            `json:"context"`
	TrendingTopics  []string          `json:"trending_topics"`
	Articles        []Article         `json:"articles"`
	ArticleAnalysis []ArticleAnalysis `json:"article_analysis"`
	ProcessedAt     string            `json:"processed_at"`
}
