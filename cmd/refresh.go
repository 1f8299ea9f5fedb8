package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/trenchai/trench-agent/internal/app"
	"github.com/trenchai/trench-agent/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-warm the cached news corpus once and exit",
	Long: `Fetches the latest news articles from the upstream API and stores them
in Redis, regardless of the corpus age. Useful for priming a cold cache
before starting the server, or from an external scheduler.

Examples:
  # Prime the cache
  trench-agent refresh`,
	Args: cobra.NoArgs,
	RunE: runRefresh,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}
	defer func() {
		_ = application.Close()
	}()

	err = application.RefreshOnce(cmd.Context())
	if err != nil {
		return fmt.Errorf("refresh cache: %w", err)
	}

	fmt.Println("cache refreshed")
	return nil
}
