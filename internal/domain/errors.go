package domain

import "github.com/cockroachdb/errors"

// Failure kinds for a repository lookup. Gateway errors carry exactly one of
// these as a mark, so callers classify with errors.Is.
var (
	ErrNotFound         = errors.New("repository not found")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrInvalidReference = errors.New("invalid repository reference")
)
