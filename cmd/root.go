package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "trench-agent",
	Short: "Crypto market intelligence agent",
	Long: `Crypto market intelligence agent that answers natural language queries
about tokens and markets.

For each query an LLM selects data tools (news, keyword search, Twitter,
Dexscreener, web search), the tools run concurrently against cached or live
data, and a second LLM pass synthesizes the answer, sentiment, and trending
topics. A background refresher keeps the Redis-backed news corpus warm.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
