package update

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoRelease indicates the repository has no published release.
	ErrNoRelease = errors.New("no published release")
	// ErrInvalidRepository indicates a repository string not in owner/repo form.
	ErrInvalidRepository = errors.New("invalid repository")
)

// NetworkError indicates a transport failure or a server-side error.
type NetworkError struct {
	URL     string
	Wrapped error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Wrapped)
}

func (e *NetworkError) Unwrap() error { return e.Wrapped }

// RateLimitError indicates the GitHub API rate limit was hit.
type RateLimitError struct {
	Limit   int
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	if e.ResetAt.IsZero() {
		return fmt.Sprintf("GitHub rate limit exceeded (limit %d)", e.Limit)
	}
	return fmt.Sprintf("GitHub rate limit exceeded (limit %d), resets at %s", e.Limit, e.ResetAt.Format(time.RFC3339))
}
