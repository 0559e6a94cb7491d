// Package update checks GitHub for a newer gamescout release.
package update

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/fulmenhq/gamescout/pkg/logger"
)

// DefaultRepository is the repository checked when none is configured.
const DefaultRepository = "fulmenhq/gamescout"

const apiBase = "https://api.github.com"

// Status is the outcome of an update check.
type Status struct {
	Current         string    `json:"current"`
	Latest          string    `json:"latest"`
	UpdateAvailable bool      `json:"update_available"`
	Comparable      bool      `json:"comparable"`
	URL             string    `json:"url,omitempty"`
	PublishedAt     time.Time `json:"published_at,omitempty"`
}

// Checker queries the latest GitHub release of a repository.
type Checker struct {
	httpFetcher HTTPFetcher
	repository  string
	token       string
}

// NewChecker creates a checker with a TLS 1.2+ client bounded by timeout.
func NewChecker(repository, token string, timeout time.Duration) *Checker {
	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
		},
	}
	return NewCheckerWithHTTP(NewRealHTTPFetcher(client), repository, token)
}

// NewCheckerWithHTTP creates a checker with injectable HTTP for testing
func NewCheckerWithHTTP(fetcher HTTPFetcher, repository, token string) *Checker {
	if repository == "" {
		repository = DefaultRepository
	}
	return &Checker{httpFetcher: fetcher, repository: repository, token: token}
}

type releaseResponse struct {
	TagName     string    `json:"tag_name"`
	HTMLURL     string    `json:"html_url"`
	PublishedAt time.Time `json:"published_at"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
}

// normalizeRepository accepts "owner/repo", "github.com/owner/repo" and URLs.
func normalizeRepository(repo string) (string, error) {
	repo = strings.TrimPrefix(repo, "https://")
	repo = strings.TrimPrefix(repo, "http://")
	repo = strings.TrimPrefix(repo, "github.com/")
	repo = strings.TrimSuffix(repo, ".git")
	repo = strings.Trim(repo, "/")

	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("%w: %q (expected owner/repo)", ErrInvalidRepository, repo)
	}
	return repo, nil
}

// Check compares current against the latest published release.
func (c *Checker) Check(ctx context.Context, current string) (*Status, error) {
	repo, err := normalizeRepository(c.repository)
	if err != nil {
		return nil, err
	}

	apiURL := fmt.Sprintf("%s/repos/%s/releases/latest", apiBase, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
	req.Header.Set("User-Agent", "gamescout-update-check")
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpFetcher.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: apiURL, Wrapped: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNoRelease, repo)
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusTooManyRequests:
		return nil, rateLimitError(resp)
	case resp.StatusCode >= 500:
		return nil, &NetworkError{URL: apiURL, Wrapped: fmt.Errorf("GitHub server error: HTTP %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("GitHub API error: HTTP %d", resp.StatusCode)
	}

	var release releaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to parse release response: %w", err)
	}
	if release.TagName == "" || release.Draft {
		return nil, fmt.Errorf("%w: %s", ErrNoRelease, repo)
	}

	status := &Status{
		Current:     current,
		Latest:      release.TagName,
		URL:         release.HTMLURL,
		PublishedAt: release.PublishedAt,
	}
	status.UpdateAvailable, status.Comparable = newer(current, release.TagName)

	logger.Debug("Update check completed",
		logger.String("current", current),
		logger.String("latest", release.TagName),
		logger.Bool("update_available", status.UpdateAvailable))
	return status, nil
}

// newer reports whether latest is greater than current. comparable is false
// when either side is not a semantic version (e.g. "dev").
func newer(current, latest string) (isNewer, comparable bool) {
	cur, err := semver.NewVersion(current)
	if err != nil {
		return false, false
	}
	lat, err := semver.NewVersion(latest)
	if err != nil {
		return false, false
	}
	return lat.GreaterThan(cur), true
}

func rateLimitError(resp *http.Response) error {
	e := &RateLimitError{Limit: 60}
	if v, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit")); err == nil {
		e.Limit = v
	}
	if v, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		e.ResetAt = time.Unix(v, 0).UTC()
	}
	return e
}
