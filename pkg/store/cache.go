package store

import (
	"fmt"
	"time"

	"github.com/fulmenhq/gamescout/pkg/safeio"
	"github.com/fulmenhq/gamescout/pkg/sources"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// PlatformCache is the persisted result of platform detection.
type PlatformCache struct {
	DetectedAt time.Time          `yaml:"detectedAt"`
	Platforms  []sources.Presence `yaml:"platforms"`
}

// Fresh reports whether the cache is younger than maxAge at now.
func (c *PlatformCache) Fresh(now time.Time, maxAge time.Duration) bool {
	return c != nil && !c.DetectedAt.IsZero() && now.Sub(c.DetectedAt) < maxAge
}

// SaveDetection writes the detection cache atomically.
func SaveDetection(fsys afero.Fs, path string, cache PlatformCache) error {
	data, err := yaml.Marshal(cache)
	if err != nil {
		return fmt.Errorf("failed to encode detection cache: %w", err)
	}
	return safeio.WriteFileAtomic(fsys, path, data)
}

// LoadDetection reads the detection cache.
func LoadDetection(fsys afero.Fs, path string) (*PlatformCache, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}
	var cache PlatformCache
	if err := yaml.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("failed to parse detection cache %s: %w", path, err)
	}
	return &cache, nil
}
