package types

import (
	"errors"
	"fmt"
)

// ToolError represents a failure reported by an upstream data tool.
type ToolError struct {
	Tool    string // tool name (news, twitter, ...)
	Code    string // one of the ErrCode constants
	Message string // human-readable description
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s tool failed: %s (%s)", e.Tool, e.Message, e.Code)
}

// Upstream failure classes.
const (
	ErrCodeAuth        = "AUTH"         // missing or rejected API key
	ErrCodeRateLimit   = "RATE_LIMIT"   // upstream quota exhausted
	ErrCodeNetwork     = "NETWORK"      // transport-level failure
	ErrCodeBadResponse = "BAD_RESPONSE" // unexpected status or body
)

// NewToolError builds a ToolError for the given tool and class.
func NewToolError(tool, code, message string) *ToolError {
	return &ToolError{Tool: tool, Code: code, Message: message}
}

// IsRateLimited reports whether err is an upstream rate-limit rejection.
func IsRateLimited(err error) bool {
	var te *ToolError
	return errors.As(err, &te) && te.Code == ErrCodeRateLimit
}
