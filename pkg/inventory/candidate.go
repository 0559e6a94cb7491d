package inventory

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptyName is returned for records whose name is blank after trimming.
	ErrEmptyName = errors.New("record name is empty")
	// ErrUnknownPlatform is returned for records tagged with an unknown platform.
	ErrUnknownPlatform = errors.New("unknown platform")
)

// Candidate is an unreconciled record produced by a source scanner.
type Candidate struct {
	AppID          string   `json:"appId" yaml:"appId" toml:"appId"`
	Name           string   `json:"name" yaml:"name" toml:"name"`
	Platform       Platform `json:"platform" yaml:"platform" toml:"platform"`
	ExecutablePath string   `json:"executablePath,omitempty" yaml:"executablePath,omitempty" toml:"executablePath,omitempty"`
	LaunchID       string   `json:"launchId,omitempty" yaml:"launchId,omitempty" toml:"launchId,omitempty"`
	// InstallDir is the folder the record was read from. It identifies an
	// install within one scan and is never persisted.
	InstallDir string `json:"-" yaml:"-" toml:"-"`
}

// Entry is a reconciled inventory record. It has the same shape as Candidate
// and is unique under the identity rule applied by Deduplicate.
type Entry Candidate

// NewCandidate builds a trimmed candidate and validates it.
func NewCandidate(platform Platform, appID, name string) (Candidate, error) {
	c := Candidate{
		Platform: platform,
		AppID:    strings.TrimSpace(appID),
		Name:     strings.TrimSpace(name),
	}
	return c, c.Validate()
}

// Validate checks the record invariants: a non-blank name and a known platform.
func (c Candidate) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Platform.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPlatform, c.Platform)
	}
	return nil
}

// Stats summarizes one completed scan. ScanTime is Elapsed in seconds,
// rounded to the millisecond.
type Stats struct {
	Total     int           `json:"totalGames" yaml:"totalGames"`
	Elapsed   time.Duration `json:"-" yaml:"-"`
	ScanTime  float64       `json:"scanTime" yaml:"scanTime"`
	Platforms int           `json:"platformsFound" yaml:"platformsFound"`
}

// ComputeStats derives the aggregate counters for a final inventory.
func ComputeStats(entries []Entry, elapsed time.Duration) Stats {
	seen := make(map[Platform]struct{})
	for _, e := range entries {
		seen[e.Platform] = struct{}{}
	}
	return Stats{
		Total:     len(entries),
		Elapsed:   elapsed,
		ScanTime:  elapsed.Round(time.Millisecond).Seconds(),
		Platforms: len(seen),
	}
}

// CountByPlatform returns the number of entries per platform.
func CountByPlatform(entries []Entry) map[Platform]int {
	counts := make(map[Platform]int)
	for _, e := range entries {
		counts[e.Platform]++
	}
	return counts
}
