package tools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/trenchai/trench-agent/pkg/cache"
	"github.com/trenchai/trench-agent/pkg/types"
)

const (
	twitterCachePrefix = "crypto:twitter:search:"
	twitterCacheTTL    = time.Hour
	maxTweetAgeDays    = 30

	// Twitter's created_at layout.
	tweetTimeLayout = "Mon Jan 02 15:04:05 -0700 2006"
)

// TwitterTool searches crypto-related tweets via the TweetScout API.
type TwitterTool struct {
	apiKey     string
	baseURL    string
	store      cache.Store
	httpClient *http.Client
	logger     *zap.Logger
}

// TwitterConfig holds configuration for the twitter tool.
type TwitterConfig struct {
	APIKey  string
	BaseURL string // defaults to the TweetScout endpoint, override for tests
	Store   cache.Store
	Logger  *zap.Logger
}

// NewTwitterTool creates the twitter search tool.
func NewTwitterTool(cfg *TwitterConfig) *TwitterTool {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.tweetscout.io"
	}

	return &TwitterTool{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		store:      cfg.Store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     cfg.Logger,
	}
}

// Name implements Tool.
func (t *TwitterTool) Name() string { return "twitter" }

// Description implements Tool.
func (t *TwitterTool) Description() string {
	return "Get cryptocurrency-related data from Twitter/X. Use this for real-time social media insights if twitter/X is specifically mentioned."
}

// rawTweet mirrors the TweetScout response shape.
type rawTweet struct {
	IDStr         string `json:"id_str"`
	FullText      string `json:"full_text"`
	CreatedAt     string `json:"created_at"`
	FavoriteCount int    `json:"favorite_count"`
	RetweetCount  int    `json:"retweet_count"`
	IsQuoteStatus bool   `json:"is_quote_status"`
	User          struct {
		ScreenName string `json:"screen_name"`
		Name       string `json:"name"`
	} `json:"user"`
	RetweetedStatus *rawTweet `json:"retweeted_status"`
	QuotedStatus    *rawTweet `json:"quoted_status"`
}

// searchTweets queries the TweetScout search endpoint. The query is enhanced
// with "crypto" when it carries no crypto term, matching upstream relevance.
func (t *TwitterTool) searchTweets(ctx context.Context, query string, order string) ([]rawTweet, error) {
	if t.apiKey == "" {
		return nil, types.NewToolError(t.Name(), types.ErrCodeAuth, "TWEETSCOUT_API_KEY is not set")
	}

	enhanced := query
	if !containsCryptoTerm(query) {
		enhanced = query + " crypto"
		t.logger.Debug("query-enhanced", zap.String("query", enhanced))
	}

	payload, err := json.Marshal(map[string]string{
		"query": enhanced,
		"order": order,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/v2/search-tweets", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("ApiKey", t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, types.NewToolError(t.Name(), types.ErrCodeNetwork, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusForbidden && strings.Contains(strings.ToLower(string(body)), "limit exceeded") {
			return nil, types.NewToolError(t.Name(), types.ErrCodeRateLimit, "rate limit exceeded, try again later")
		}
		return nil, types.NewToolError(t.Name(), types.ErrCodeBadResponse,
			fmt.Sprintf("unexpected status code %d: %s", resp.StatusCode, string(body)))
	}

	var parsed struct {
		Tweets []rawTweet `json:"tweets"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, types.NewToolError(t.Name(), types.ErrCodeBadResponse, err.Error())
	}

	t.logger.Info("tweets-fetched", zap.String("query", enhanced), zap.Int("count", len(parsed.Tweets)))
	return parsed.Tweets, nil
}

// Execute implements Tool: cached tweet search with a stale-cache fallback on
// upstream failure.
func (t *TwitterTool) Execute(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	ExecutionsTotal.WithLabelValues(t.Name()).Inc()
	defer func() {
		ExecutionDurationSeconds.WithLabelValues(t.Name()).Observe(time.Since(start).Seconds())
	}()

	query := req.Query
	if query == "" {
		query = "cryptocurrency"
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultTweetLimit
	}

	const order = "popular"
	cleanQuery := strings.ToLower(strings.TrimSpace(query))
	cacheKey := twitterCachePrefix + cleanQuery + ":" + order

	source := "Cache"
	var tweets []types.Tweet

	if !cache.GetJSON(ctx, t.store, cacheKey, &tweets) || len(tweets) == 0 {
		raw, err := t.searchTweets(ctx, cleanQuery, order)
		if err != nil {
			ErrorsTotal.WithLabelValues(t.Name()).Inc()
			t.logger.Warn("twitter-search-failed", zap.Error(err))

			// Fall back to the generic cached corpus before giving up.
			fallbackKey := twitterCachePrefix + "cryptocurrency:" + order
			if cache.GetJSON(ctx, t.store, fallbackKey, &tweets) && len(tweets) > 0 {
				source = "Fallback Cache"
			} else {
				return nil, err
			}
		} else {
			tweets = processTweets(raw)
			if len(tweets) > 0 {
				cache.SetJSON(ctx, t.store, cacheKey, tweets, twitterCacheTTL)
			}
			source = "API"
		}
	}

	tweets = filterRecentTweets(tweets, maxTweetAgeDays)

	sort.Slice(tweets, func(i, j int) bool {
		return tweetTime(tweets[i].CreatedAt).After(tweetTime(tweets[j].CreatedAt))
	})

	if len(tweets) > limit {
		tweets = tweets[:limit]
	}

	return &Result{Tweets: tweets, Source: source}, nil
}

// processTweets normalizes raw tweets, expanding retweets and quotes into the
// text so the LLM sees the full content.
func processTweets(raw []rawTweet) []types.Tweet {
	tweets := make([]types.Tweet, 0, len(raw))

	for i := range raw {
		rt := &raw[i]

		text := rt.FullText
		switch {
		case rt.RetweetedStatus != nil:
			text = fmt.Sprintf("RT @%s: %s", rt.RetweetedStatus.User.ScreenName, rt.RetweetedStatus.FullText)
		case rt.IsQuoteStatus && rt.QuotedStatus != nil:
			text = fmt.Sprintf("%s\n\nQuoting @%s: %s", text, rt.QuotedStatus.User.ScreenName, rt.QuotedStatus.FullText)
		}

		tweets = append(tweets, types.Tweet{
			ID:         rt.IDStr,
			Text:       text,
			Author:     rt.User.ScreenName,
			AuthorName: rt.User.Name,
			CreatedAt:  rt.CreatedAt,
			Likes:      rt.FavoriteCount,
			Retweets:   rt.RetweetCount,
		})
	}

	return tweets
}

// filterRecentTweets drops tweets older than maxAgeDays. Tweets with an
// unparseable timestamp are kept.
func filterRecentTweets(tweets []types.Tweet, maxAgeDays int) []types.Tweet {
	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)

	filtered := tweets[:0]
	for _, tw := range tweets {
		ts := tweetTime(tw.CreatedAt)
		if ts.IsZero() || ts.After(cutoff) {
			filtered = append(filtered, tw)
		}
	}

	return filtered
}

func tweetTime(createdAt string) time.Time {
	if createdAt == "" {
		return time.Time{}
	}
	for _, layout := range []string{tweetTimeLayout, time.RFC3339} {
		ts, err := time.Parse(layout, createdAt)
		if err == nil {
			return ts
		}
	}
	return time.Time{}
}

func containsCryptoTerm(query string) bool {
	lower := strings.ToLower(query)
	for _, term := range []string{"crypto", "bitcoin", "btc", "eth"} {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
