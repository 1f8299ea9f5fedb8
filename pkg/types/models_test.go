package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishedTime(t *testing.T) {
	tests := []struct {
		name      string
		published string
		wantZero  bool
		wantYear  int
	}{
		{
			name:      "rfc3339",
			published: "2026-08-29T10:30:00Z",
			wantYear:  2026,
		},
		{
			name:      "no-timezone",
			published: "2026-08-29T10:30:00",
			wantYear:  2026,
		},
		{
			name:      "space-separated",
			published: "2026-08-29 10:30:00",
			wantYear:  2026,
		},
		{
			name:      "empty",
			published: "",
			wantZero:  true,
		},
		{
			name:      "garbage",
			published: "yesterday-ish",
			wantZero:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Article{Published: tt.published}
			got := a.PublishedTime()

			if tt.wantZero {
				assert.True(t, got.IsZero())
				return
			}
			require.False(t, got.IsZero())
			assert.Equal(t, tt.wantYear, got.Year())
		})
	}
}

func TestTweetAsArticle(t *testing.T) {
	tweet := Tweet{
		ID:        "12345",
		Text:      "BTC breaking out",
		Author:    "whale",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	article := tweet.AsArticle()

	assert.Equal(t, "Tweet by @whale", article.Title)
	assert.Equal(t, "BTC breaking out", article.Summary)
	assert.Equal(t, "https://twitter.com/whale/status/12345", article.Link)
	assert.Equal(t, "Social Media", article.Category)
	assert.Equal(t, "Twitter", article.SubCategory)
}

func TestTweetAsArticleUnknownAuthor(t *testing.T) {
	tweet := Tweet{ID: "1", Text: "gm"}

	article := tweet.AsArticle()

	assert.Equal(t, "Tweet by @unknown", article.Title)
	assert.Equal(t, "https://twitter.com/unknown/status/1", article.Link)
}

func TestToolError(t *testing.T) {
	err := NewToolError("twitter", ErrCodeRateLimit, "try again later")

	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "twitter", te.Tool)
	assert.Equal(t, ErrCodeRateLimit, te.Code)
	assert.Contains(t, err.Error(), "twitter")

	assert.True(t, IsRateLimited(err))
	assert.False(t, IsRateLimited(NewToolError("news", ErrCodeNetwork, "timeout")))
	assert.False(t, IsRateLimited(errors.New("plain error")))
	assert.False(t, IsRateLimited(nil))
}
