// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-repo-analyzer/internal/activity"
	"github.com/naka-gawa/github-repo-analyzer/internal/config"
	"github.com/naka-gawa/github-repo-analyzer/internal/gateway"
	"github.com/naka-gawa/github-repo-analyzer/internal/tagging"
	"github.com/naka-gawa/github-repo-analyzer/internal/usecase"
)

var rootCmd = &cobra.Command{
	Use:   "github-repo-analyzer",
	Short: "A CLI tool to analyze a public GitHub repository.",
	Long: `github-repo-analyzer fetches a GitHub repository's statistics, builds a
weekly commit-frequency histogram for the last 52 weeks and extracts
technology tags from its README.

Results are printed as JSON (analyze) or served as a dashboard (serve).
A token is read from GITHUB_API_TOKEN (or GITHUB_TOKEN), optionally from a .env file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("commit-source", string(gateway.CommitSourceREST), "API used for commit history (rest or graphql)")
	rootCmd.PersistentFlags().String("ner", "prose", "Named-entity recognizer used for README tags (prose or none)")
	rootCmd.PersistentFlags().Duration("secondary-limit-wait", 0, "Longest single wait on a secondary rate limit (0 reports it immediately)")
}

// newLogger writes to w; debug output is only enabled with --verbose.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// buildAnalyzer wires the gateway, aggregator and extractor from flags and config.
func buildAnalyzer(cmd *cobra.Command, logger *log.Logger) (*usecase.Analyzer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	sourceFlag, _ := cmd.Flags().GetString("commit-source")
	source, err := gateway.ParseCommitSource(sourceFlag)
	if err != nil {
		return nil, err
	}
	nerFlag, _ := cmd.Flags().GetString("ner")
	recognizer, err := tagging.NewRecognizer(nerFlag)
	if err != nil {
		return nil, err
	}
	wait, _ := cmd.Flags().GetDuration("secondary-limit-wait")

	githubGateway, err := gateway.NewGitHubGateway(gateway.Options{
		Token:              cfg.Token,
		CommitSource:       source,
		SecondaryLimitWait: wait,
	}, logger)
	if err != nil {
		return nil, err
	}
	return usecase.NewAnalyzer(
		githubGateway,
		activity.NewAggregator(time.Now, logger),
		tagging.NewExtractor(recognizer, logger),
		logger,
	), nil
}
