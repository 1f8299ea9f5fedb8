package cmd

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/trenchai/trench-agent/internal/app"
	"github.com/trenchai/trench-agent/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Dump the cached news corpus as JSON",
	Long: `Prints the cached news articles to stdout, newest first.

Examples:
  # Show the 10 most recent cached articles
  trench-agent articles --limit 10

  # Only articles published in the past 6 hours
  trench-agent articles --hours-back 6`,
	Args: cobra.NoArgs,
	RunE: runArticles,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(articlesCmd)
	articlesCmd.Flags().IntP("limit", "l", 25, "Maximum number of articles to print")
	articlesCmd.Flags().Int("hours-back", 0, "Only include articles published within the past N hours (0 = all)")
}

func runArticles(cmd *cobra.Command, args []string) error {
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

	limit, _ := cmd.Flags().GetInt("limit")
	hoursBack, _ := cmd.Flags().GetInt("hours-back")

	articles := application.CachedArticles(cmd.Context(), limit, hoursBack)
	if len(articles) == 0 {
		fmt.Println("no cached articles")
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(articles)
}
