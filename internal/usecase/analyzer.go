// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/github-repo-analyzer/internal/activity"
	"github.com/naka-gawa/github-repo-analyzer/internal/domain"
	"github.com/naka-gawa/github-repo-analyzer/internal/gateway"
	"github.com/naka-gawa/github-repo-analyzer/internal/tagging"
)

// MsgRateLimited is reported when the API quota is exhausted.
const MsgRateLimited = "GitHub API rate limit exceeded. Please wait and try again."

// Analyzer is the use case for analysing a single repository.
// It orchestrates the fetching, aggregation and tagging steps.
type Analyzer struct {
	fetcher    gateway.Fetcher
	aggregator *activity.Aggregator
	extractor  *tagging.Extractor
	logger     *log.Logger
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer(fetcher gateway.Fetcher, aggregator *activity.Aggregator, extractor *tagging.Extractor, logger *log.Logger) *Analyzer {
	return &Analyzer{
		fetcher:    fetcher,
		aggregator: aggregator,
		extractor:  extractor,
		logger:     logger,
	}
}

// Analyze performs the main business logic.
// It never returns a Go error: every failure becomes an error record.
func (a *Analyzer) Analyze(ctx context.Context, repoURL string) *domain.AnalysisResult {
	id := domain.ParseRepoURL(repoURL)
	a.logger.Debug("Usecase: Starting analysis...", "url", repoURL, "repo", id.String())

	repo, err := a.fetcher.FetchRepository(ctx, id)
	if err != nil {
		a.logger.Warn("Usecase: Repository lookup failed.", "repo", id.String(), "err", err)
		return domain.NewErrorResult(failureMessage(err, id, repoURL))
	}

	var (
		readme    string
		hasReadme bool
		history   domain.CommitHistory
	)
	// Both sub-fetches fall back to "no data" instead of failing the analysis.
	var eg errgroup.Group
	eg.Go(func() error {
		text, err := a.fetcher.FetchReadme(ctx, repo)
		if err != nil {
			a.logger.Warn("Usecase: README unavailable.", "repo", repo.FullName, "err", err)
			return nil
		}
		readme, hasReadme = text, true
		return nil
	})
	eg.Go(func() error {
		fetched, err := a.fetcher.FetchCommits(ctx, repo)
		if err != nil {
			a.logger.Warn("Usecase: Commit history unavailable.", "repo", repo.FullName, "err", err)
			return nil
		}
		history = fetched
		return nil
	})
	_ = eg.Wait()
	a.logger.Debug("Usecase: All data fetched.", "readme", hasReadme, "commits", len(history.Commits))

	freq := a.aggregator.Aggregate(history.Commits)
	// A history of exactly SampleSize commits is complete unless the gateway saw more.
	sampled := history.Truncated || len(history.Commits) > activity.SampleSize
	report := &domain.Report{
		Repository:      repo.FullName,
		Stats:           domain.StatsFromRepository(repo),
		CommitFrequency: freq,
		CommitActivity:  activity.Summarize(freq, sampled),
		ReadmeTags:      a.extractor.Extract(ctx, readme, hasReadme),
	}

	a.logger.Debug("Usecase: Analysis complete.", "repo", repo.FullName, "tags", len(report.ReadmeTags))
	return domain.NewReportResult(report)
}

// failureMessage maps a classified lookup failure to the user-visible message.
func failureMessage(err error, id domain.RepoID, repoURL string) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Sprintf("Repository not found: %s", id)
	case errors.Is(err, domain.ErrRateLimited):
		return MsgRateLimited
	default:
		return fmt.Sprintf("Invalid repository URL: %s", repoURL)
	}
}
