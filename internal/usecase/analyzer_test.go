package usecase

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/github-repo-analyzer/internal/activity"
	"github.com/naka-gawa/github-repo-analyzer/internal/domain"
	"github.com/naka-gawa/github-repo-analyzer/internal/tagging"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchRepository(ctx context.Context, id domain.RepoID) (*domain.Repository, error) {
	args := m.Called(ctx, id)
	// We need to handle the case where the returned snapshot is nil (e.g., when an error occurs).
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Repository), args.Error(1)
}

func (m *mockFetcher) FetchReadme(ctx context.Context, repo *domain.Repository) (string, error) {
	args := m.Called(ctx, repo)
	return args.String(0), args.Error(1)
}

func (m *mockFetcher) FetchCommits(ctx context.Context, repo *domain.Repository) (domain.CommitHistory, error) {
	args := m.Called(ctx, repo)
	return args.Get(0).(domain.CommitHistory), args.Error(1)
}

var today = time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)

func newTestAnalyzer(fetcher *mockFetcher) *Analyzer {
	logger := log.New(io.Discard)
	return NewAnalyzer(
		fetcher,
		activity.NewAggregator(func() time.Time { return today }, logger),
		tagging.NewExtractor(tagging.NopRecognizer{}, logger),
		logger,
	)
}

func demoRepository() *domain.Repository {
	return &domain.Repository{
		ID:         domain.RepoID{Owner: "octo", Name: "demo"},
		FullName:   "octo/demo",
		Stars:      1500,
		Forks:      12,
		Watchers:   40,
		OpenIssues: 3,
		Language:   ptr("TypeScript"),
	}
}

func ptr(s string) *string { return &s }

func TestAnalyzer_AnalyzeFailures(t *testing.T) {
	testCases := []struct {
		name            string
		url             string
		expectedID      domain.RepoID
		fetchErr        error
		expectedMessage string
	}{
		{
			name:            "not found reports the identifier",
			url:             "https://github.com/octo/missing",
			expectedID:      domain.RepoID{Owner: "octo", Name: "missing"},
			fetchErr:        errors.Mark(errors.New("404 Not Found"), domain.ErrNotFound),
			expectedMessage: "Repository not found: octo/missing",
		},
		{
			name:            "rate limit has a fixed message",
			url:             "https://github.com/octo/demo",
			expectedID:      domain.RepoID{Owner: "octo", Name: "demo"},
			fetchErr:        errors.Mark(errors.New("403 API rate limit exceeded"), domain.ErrRateLimited),
			expectedMessage: MsgRateLimited,
		},
		{
			name:            "malformed URL reports the raw input",
			url:             "not a url",
			expectedID:      domain.RepoID{Owner: "not a url"},
			fetchErr:        errors.Mark(errors.New("malformed"), domain.ErrInvalidReference),
			expectedMessage: "Invalid repository URL: not a url",
		},
		{
			name:            "unclassified failures are reported as invalid URLs",
			url:             "https://github.com/octo/demo",
			expectedID:      domain.RepoID{Owner: "octo", Name: "demo"},
			fetchErr:        errors.New("connection reset"),
			expectedMessage: "Invalid repository URL: https://github.com/octo/demo",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			fetcher.On("FetchRepository", mock.Anything, tc.expectedID).Return(nil, tc.fetchErr)

			result := newTestAnalyzer(fetcher).Analyze(context.Background(), tc.url)

			require.NotNil(t, result)
			assert.True(t, result.Failed())
			assert.Equal(t, tc.expectedMessage, result.Error)
			assert.Nil(t, result.Report)
			fetcher.AssertExpectations(t)
			fetcher.AssertNotCalled(t, "FetchReadme", mock.Anything, mock.Anything)
			fetcher.AssertNotCalled(t, "FetchCommits", mock.Anything, mock.Anything)
		})
	}
}

func TestAnalyzer_AnalyzeSuccess(t *testing.T) {
	recent := []domain.Commit{
		{SHA: "c3", AuthoredAt: today.Add(-time.Hour)},
		{SHA: "c2", AuthoredAt: today.Add(-2 * time.Hour)},
		{SHA: "c1", AuthoredAt: today.AddDate(0, 0, -7)},
	}
	testCases := []struct {
		name            string
		readme          string
		readmeErr       error
		commits         []domain.Commit
		commitsErr      error
		expectedTags    []string
		expectedCommits int
	}{
		{
			name:            "happy path - README and commits are both available",
			readme:          "We use React and Django with PostgreSQL for our GraphQL API.",
			commits:         recent,
			expectedTags:    []string{"api", "django", "go", "graphql", "postgresql", "react"},
			expectedCommits: 3,
		},
		{
			name:            "missing README yields no tags and no error",
			readmeErr:       errors.New("404 Not Found"),
			commits:         recent,
			expectedTags:    []string{},
			expectedCommits: 3,
		},
		{
			name:            "commit failure yields an all-zero histogram",
			readme:          "Built with Docker.",
			commitsErr:      errors.New("409 Git Repository is empty"),
			expectedTags:    []string{"docker"},
			expectedCommits: 0,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := demoRepository()
			fetcher := new(mockFetcher)
			fetcher.On("FetchRepository", mock.Anything, domain.RepoID{Owner: "octo", Name: "demo"}).Return(repo, nil)
			fetcher.On("FetchReadme", mock.Anything, repo).Return(tc.readme, tc.readmeErr)
			fetcher.On("FetchCommits", mock.Anything, repo).Return(domain.CommitHistory{Commits: tc.commits}, tc.commitsErr)

			result := newTestAnalyzer(fetcher).Analyze(context.Background(), "https://github.com/octo/demo")

			require.False(t, result.Failed(), "unexpected error: %s", result.Error)
			assert.Empty(t, result.Error)
			assert.Equal(t, "octo/demo", result.Repository)
			assert.Equal(t, domain.Stats{Stars: 1500, Forks: 12, Watchers: 40, OpenIssues: 3, Language: ptr("TypeScript")}, result.Stats)
			assert.Equal(t, tc.expectedTags, result.ReadmeTags)
			assert.Len(t, result.CommitFrequency, activity.Weeks)
			assert.Equal(t, tc.expectedCommits, result.CommitFrequency.Total())
			assert.Equal(t, tc.expectedCommits, result.CommitActivity.Total)
			assert.False(t, result.CommitActivity.Sampled)
			fetcher.AssertExpectations(t)
		})
	}
}

func minuteCommits(n int) []domain.Commit {
	commits := make([]domain.Commit, n)
	for i := range commits {
		commits[i] = domain.Commit{AuthoredAt: today.Add(-time.Duration(i) * time.Minute)}
	}
	return commits
}

func TestAnalyzer_AnalyzeMarksSampledHistory(t *testing.T) {
	testCases := []struct {
		name            string
		history         domain.CommitHistory
		expectedTotal   int
		expectedSampled bool
	}{
		{
			name:            "truncated history is sampled",
			history:         domain.CommitHistory{Commits: minuteCommits(activity.SampleSize), Truncated: true},
			expectedTotal:   activity.SampleSize,
			expectedSampled: true,
		},
		{
			name:            "history of exactly the sample size is complete",
			history:         domain.CommitHistory{Commits: minuteCommits(activity.SampleSize)},
			expectedTotal:   activity.SampleSize,
			expectedSampled: false,
		},
		{
			name:            "oversized history is capped and sampled",
			history:         domain.CommitHistory{Commits: minuteCommits(500)},
			expectedTotal:   activity.SampleSize,
			expectedSampled: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := demoRepository()
			fetcher := new(mockFetcher)
			fetcher.On("FetchRepository", mock.Anything, mock.Anything).Return(repo, nil)
			fetcher.On("FetchReadme", mock.Anything, repo).Return("", errors.New("no readme"))
			fetcher.On("FetchCommits", mock.Anything, repo).Return(tc.history, nil)

			result := newTestAnalyzer(fetcher).Analyze(context.Background(), "https://github.com/octo/demo")

			require.False(t, result.Failed())
			assert.Equal(t, tc.expectedTotal, result.CommitFrequency.Total())
			assert.Equal(t, tc.expectedSampled, result.CommitActivity.Sampled)
		})
	}
}

func TestAnalyzer_AnalyzeIsIdempotent(t *testing.T) {
	repo := demoRepository()
	fetcher := new(mockFetcher)
	fetcher.On("FetchRepository", mock.Anything, mock.Anything).Return(repo, nil)
	fetcher.On("FetchReadme", mock.Anything, repo).Return("Kubernetes operator written in Go.", nil)
	fetcher.On("FetchCommits", mock.Anything, repo).Return(domain.CommitHistory{Commits: []domain.Commit{{AuthoredAt: today}}}, nil)
	analyzer := newTestAnalyzer(fetcher)

	first := analyzer.Analyze(context.Background(), "https://github.com/octo/demo")
	second := analyzer.Analyze(context.Background(), "https://github.com/octo/demo")

	assert.Equal(t, first, second)
	fetcher.AssertNumberOfCalls(t, "FetchRepository", 2)
}
