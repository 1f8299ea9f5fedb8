package tools

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultHoursBack is the article window applied when a query carries no
// recognizable time reference.
const DefaultHoursBack = 24

// timeKeywords maps query phrases to a lookback window in hours. Longer
// phrases are matched first so "last week" wins over "week".
var timeKeywords = []struct {
	phrase string
	hours  int
}{
	{"right now", 12},
	{"last month", 1440},
	{"this month", 720},
	{"last week", 336},
	{"this week", 168},
	{"this year", 8760},
	{"yesterday", 48},
	{"currently", 12},
	{"today", 24},
	{"recent", 72},
	{"latest", 24},
	{"now", 12},
	{"hours", 1},
	{"hour", 1},
}

var relativeWindow = regexp.MustCompile(`(?:past|last)\s+(\d+)\s*(hour|day|week)`)

// HoursBack extracts a lookback window in hours from free-form query text.
// Returns 0 when the query carries no time reference.
func HoursBack(query string) int {
	lower := strings.ToLower(query)

	// Explicit "past N hours/days/weeks" takes precedence.
	if m := relativeWindow.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			switch m[2] {
			case "hour":
				return n
			case "day":
				return n * 24
			case "week":
				return n * 168
			}
		}
	}

	for _, kw := range timeKeywords {
		if strings.Contains(lower, kw.phrase) {
			return kw.hours
		}
	}

	return 0
}
