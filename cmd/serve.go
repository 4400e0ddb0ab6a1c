package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-repo-analyzer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the analysis dashboard and JSON API over HTTP",
	Long: `Starts an HTTP server with a single-page dashboard at / and a JSON API at
/api/analyze?url=<repository-url>. The server stops on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger := newLogger(os.Stderr, verbose)
		addr, _ := cmd.Flags().GetString("addr")

		analyzer, err := buildAnalyzer(cmd, logger)
		if err != nil {
			return errors.Wrap(err, "failed to set up analyzer")
		}
		srv, err := server.New(analyzer, logger)
		if err != nil {
			return errors.Wrap(err, "failed to create server")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := srv.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server stopped")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8050", "Address to listen on")
}
