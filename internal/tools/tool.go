package tools

import (
	"context"

	"github.com/trenchai/trench-agent/pkg/types"
)

// Tool is a single external data source the agent can query.
type Tool interface {
	// Name is the identifier used in LLM tool selection.
	Name() string

	// Description is the one-line capability summary fed to the selection
	// prompt.
	Description() string

	// Execute runs the tool. Upstream failures are returned as
	// *types.ToolError; a nil error with an empty result means the source
	// had nothing relevant.
	Execute(ctx context.Context, req Request) (*Result, error)
}

// Request carries the tool input.
type Request struct {
	Query string
	Limit int
}

// Result is the normalized tool output consumed by the agent.
type Result struct {
	Articles    []types.Article
	Tweets      []types.Tweet
	TimeContext string // human-readable window, e.g. "Past 24 hours"
	Source      string // "Cache", "API", or variant
}

// Default per-tool result limits.
const (
	DefaultNewsLimit   = 25
	DefaultSearchLimit = 10
	DefaultTweetLimit  = 10
	DefaultWebLimit    = 5
)
