package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <repository-url>",
	Short: "Analyzes a GitHub repository and outputs the result as JSON",
	Long: `Fetches statistics, the 52-week commit frequency and README tags for a
repository such as https://github.com/facebook/react, and prints the result in JSON format.
The command exits with status 1 when the result is an error record.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger := newLogger(os.Stderr, verbose)

		analyzer, err := buildAnalyzer(cmd, logger)
		if err != nil {
			return errors.Wrap(err, "failed to set up analyzer")
		}

		result := analyzer.Analyze(cmd.Context(), args[0])

		// Marshal the result into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal result to JSON")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))

		if result.Failed() {
			return errors.Newf("analysis failed: %s", result.Error)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
