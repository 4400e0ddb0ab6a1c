package domain

import (
	"strings"
	"time"
)

// repoURLPrefixes are stripped from user input, longest first.
var repoURLPrefixes = []string{
	"https://www.github.com/",
	"http://www.github.com/",
	"https://github.com/",
	"http://github.com/",
	"www.github.com/",
	"github.com/",
}

// RepoID identifies a repository as an owner/name pair.
type RepoID struct {
	Owner string
	Name  string
}

// ParseRepoURL turns a repository URL into a RepoID by stripping the host prefix
// and any query string or fragment.
// Nothing beyond the prefix is validated; a malformed identifier is left for the
// gateway to reject.
func ParseRepoURL(rawURL string) RepoID {
	s := strings.TrimSpace(rawURL)
	for _, prefix := range repoURLPrefixes {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			break
		}
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")

	owner, name, found := strings.Cut(s, "/")
	if !found {
		return RepoID{Owner: s}
	}
	return RepoID{Owner: owner, Name: name}
}

// String returns the owner/name form.
func (id RepoID) String() string {
	if id.Name == "" {
		return id.Owner
	}
	return id.Owner + "/" + id.Name
}

// Valid reports whether both halves are present and neither contains a path separator.
func (id RepoID) Valid() bool {
	return id.Owner != "" && id.Name != "" &&
		!strings.ContainsAny(id.Owner, "/ ") && !strings.ContainsAny(id.Name, "/ ")
}

// Repository is the metadata snapshot fetched for one repository.
type Repository struct {
	ID            RepoID
	FullName      string
	DefaultBranch string
	Stars         int
	Forks         int
	Watchers      int
	OpenIssues    int
	Language      *string
}

// Commit is the part of a commit the frequency histogram needs.
type Commit struct {
	SHA        string
	AuthoredAt time.Time
}

// CommitHistory is a bounded sample of the most recent commits, newest first.
type CommitHistory struct {
	Commits []Commit
	// Truncated is set when older commits exist beyond the sample.
	Truncated bool
}
