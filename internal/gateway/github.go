// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/google/go-github/v84/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/github-repo-analyzer/internal/domain"
)

// MaxCommits bounds the commit sample fetched per repository.
const MaxCommits = 200

const commitPageSize = 100

// CommitSource selects which API serves commit history.
type CommitSource string

const (
	CommitSourceREST    CommitSource = "rest"
	CommitSourceGraphQL CommitSource = "graphql"
)

// ParseCommitSource validates a --commit-source value.
func ParseCommitSource(s string) (CommitSource, error) {
	switch CommitSource(s) {
	case CommitSourceREST, CommitSourceGraphQL:
		return CommitSource(s), nil
	case "":
		return CommitSourceREST, nil
	}
	return "", errors.Newf("unknown commit source %q (want rest or graphql)", s)
}

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchRepository(ctx context.Context, id domain.RepoID) (*domain.Repository, error)
	FetchReadme(ctx context.Context, repo *domain.Repository) (string, error)
	FetchCommits(ctx context.Context, repo *domain.Repository) (domain.CommitHistory, error)
}

// Options configures NewGitHubGateway.
type Options struct {
	Token        string
	CommitSource CommitSource
	// SecondaryLimitWait is the longest single sleep the secondary rate limit
	// middleware may take. Zero passes every secondary limit response through.
	SecondaryLimitWait time.Duration
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	commitSource  CommitSource
	logger        *log.Logger
}

// commitHistoryQuery walks the default branch history, newest first.
type commitHistoryQuery struct {
	Repository struct {
		DefaultBranchRef struct {
			Target struct {
				Commit struct {
					History struct {
						PageInfo struct {
							HasNextPage bool
							EndCursor   githubv4.String
						}
						Nodes []struct {
							Oid          githubv4.GitObjectID
							AuthoredDate githubv4.DateTime
						}
					} `graphql:"history(first: $pageSize, after: $cursor)"`
				} `graphql:"... on Commit"`
			}
		}
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(opts Options, logger *log.Logger) (*GitHubGateway, error) {
	if opts.Token == "" {
		return nil, errors.New("a GitHub token is required")
	}
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(opts.SecondaryLimitWait, nil))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create rate limit waiter")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	source := opts.CommitSource
	if source == "" {
		source = CommitSourceREST
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		commitSource:  source,
		logger:        logger,
	}, nil
}

// FetchRepository resolves id and returns its metadata snapshot.
// Every error is marked with exactly one of the domain failure kinds.
func (g *GitHubGateway) FetchRepository(ctx context.Context, id domain.RepoID) (*domain.Repository, error) {
	g.logger.Debug("[1/3] Fetching repository metadata...", "repo", id.String())
	if !id.Valid() {
		return nil, errors.Mark(errors.Newf("malformed repository identifier %q", id.String()), domain.ErrInvalidReference)
	}
	repo, _, err := g.restClient.Repositories.Get(ctx, id.Owner, id.Name)
	if err != nil {
		return nil, classify(errors.Wrapf(err, "failed to get repository %s", id))
	}

	snapshot := &domain.Repository{
		ID:            domain.RepoID{Owner: repo.GetOwner().GetLogin(), Name: repo.GetName()},
		FullName:      repo.GetFullName(),
		DefaultBranch: repo.GetDefaultBranch(),
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		Watchers:      repo.GetSubscribersCount(),
		OpenIssues:    repo.GetOpenIssuesCount(),
		Language:      repo.Language,
	}
	if snapshot.ID.Owner == "" || snapshot.ID.Name == "" {
		snapshot.ID = id
	}
	if snapshot.FullName == "" {
		snapshot.FullName = id.String()
	}
	g.logger.Debug("Completed fetching repository metadata.", "repo", snapshot.FullName)
	return snapshot, nil
}

// classify marks err with the failure kind the orchestrator reports to users.
func classify(err error) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var respErr *github.ErrorResponse
	switch {
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		return errors.Mark(err, domain.ErrRateLimited)
	case errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode == http.StatusNotFound:
		return errors.Mark(err, domain.ErrNotFound)
	default:
		return errors.Mark(err, domain.ErrInvalidReference)
	}
}

// FetchReadme returns the decoded README of repo.
func (g *GitHubGateway) FetchReadme(ctx context.Context, repo *domain.Repository) (string, error) {
	g.logger.Debug("[2/3] Fetching README...", "repo", repo.FullName)
	content, _, err := g.restClient.Repositories.GetReadme(ctx, repo.ID.Owner, repo.ID.Name, nil)
	if err != nil {
		return "", errors.Wrapf(err, "failed to get README for %s", repo.FullName)
	}
	text, err := content.GetContent()
	if err != nil {
		return "", errors.Wrapf(err, "failed to decode README for %s", repo.FullName)
	}
	if !utf8.ValidString(text) {
		return "", errors.Newf("README for %s is not valid UTF-8", repo.FullName)
	}
	g.logger.Debug("Completed fetching README.", "bytes", len(text))
	return text, nil
}

// FetchCommits returns at most MaxCommits commits of the default branch, newest
// first. The history is marked truncated when older commits were left unfetched.
func (g *GitHubGateway) FetchCommits(ctx context.Context, repo *domain.Repository) (domain.CommitHistory, error) {
	g.logger.Debug("[3/3] Fetching commit history...", "repo", repo.FullName, "source", string(g.commitSource))
	var (
		history domain.CommitHistory
		err     error
	)
	switch g.commitSource {
	case CommitSourceGraphQL:
		history, err = g.fetchCommitsGraphQL(ctx, repo)
	default:
		history, err = g.fetchCommitsREST(ctx, repo)
	}
	if err != nil {
		return domain.CommitHistory{}, err
	}
	g.logger.Debug("Completed fetching commit history.", "commits", len(history.Commits), "truncated", history.Truncated)
	return history, nil
}

// capHistory trims commits to MaxCommits. more reports whether the API had
// another page after the last one fetched.
func capHistory(commits []domain.Commit, more bool) domain.CommitHistory {
	if len(commits) > MaxCommits {
		return domain.CommitHistory{Commits: commits[:MaxCommits], Truncated: true}
	}
	return domain.CommitHistory{Commits: commits, Truncated: more}
}

func (g *GitHubGateway) fetchCommitsREST(ctx context.Context, repo *domain.Repository) (domain.CommitHistory, error) {
	opts := &github.CommitsListOptions{ListOptions: github.ListOptions{PerPage: commitPageSize}}
	commits := make([]domain.Commit, 0, MaxCommits)
	more := false
	for len(commits) < MaxCommits {
		page, resp, err := g.restClient.Repositories.ListCommits(ctx, repo.ID.Owner, repo.ID.Name, opts)
		if err != nil {
			return domain.CommitHistory{}, errors.Wrapf(err, "failed to list commits for %s", repo.FullName)
		}
		for _, c := range page {
			commits = append(commits, domain.Commit{
				SHA:        c.GetSHA(),
				AuthoredAt: c.GetCommit().GetAuthor().GetDate().Time,
			})
		}
		more = resp.NextPage != 0
		if !more {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug("  Fetching next page of commits...")
	}
	return capHistory(commits, more), nil
}

func (g *GitHubGateway) fetchCommitsGraphQL(ctx context.Context, repo *domain.Repository) (domain.CommitHistory, error) {
	variables := map[string]interface{}{
		"owner":    githubv4.String(repo.ID.Owner),
		"name":     githubv4.String(repo.ID.Name),
		"pageSize": githubv4.Int(commitPageSize),
		"cursor":   (*githubv4.String)(nil),
	}
	commits := make([]domain.Commit, 0, MaxCommits)
	more := false
	for len(commits) < MaxCommits {
		var q commitHistoryQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return domain.CommitHistory{}, errors.Wrapf(err, "failed to execute GraphQL query for commit history of %s", repo.FullName)
		}
		history := q.Repository.DefaultBranchRef.Target.Commit.History
		for _, node := range history.Nodes {
			commits = append(commits, domain.Commit{
				SHA:        string(node.Oid),
				AuthoredAt: node.AuthoredDate.Time,
			})
		}
		more = history.PageInfo.HasNextPage
		if !more {
			break
		}
		variables["cursor"] = githubv4.NewString(history.PageInfo.EndCursor)
		g.logger.Debug("  Fetching next page of commit history...")
	}
	return capHistory(commits, more), nil
}

func (s CommitSource) String() string { return string(s) }

var _ Fetcher = (*GitHubGateway)(nil)
