package tools

import "testing"

func TestHoursBack(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"what happened today in crypto", 24},
		{"bitcoin news from yesterday", 48},
		{"eth this week", 168},
		{"solana last week", 336},
		{"memecoins this month", 720},
		{"top movers last month", 1440},
		{"recent rug pulls", 72},
		{"latest BTC ETF flows", 24},
		{"what is pumping right now", 12},
		{"price action in the past 6 hours", 6},
		{"news from the last 3 days", 72},
		{"past 2 weeks of regulation news", 336},
		{"bitcoin halving", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := HoursBack(tt.query)
			if got != tt.want {
				t.Errorf("HoursBack(%q) = %d, want %d", tt.query, got, tt.want)
			}
		})
	}
}
