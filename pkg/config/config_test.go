package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fulmenhq/gamescout/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the home and working directory at a temp dir so no user
// config leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("GAMESCOUT_HOME", filepath.Join(dir, "home"))
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, TierConcurrency{Fast: 4, Medium: 2, Slow: 1}, config.Scan.TierConcurrency)
	assert.Equal(t, 2*time.Minute, config.Scan.AdapterTimeout)
	assert.Equal(t, "games.json", config.Output.Path)
	assert.Equal(t, "json", config.Output.Format)
	assert.False(t, config.Output.Progress)
	assert.Equal(t, "fulmenhq/gamescout", config.Update.Repository)
	assert.Equal(t, 10*time.Second, config.Update.Timeout)
	assert.Equal(t, 24*time.Hour, config.Detect.CacheTTL)
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	yaml := `scan:
  tier_concurrency:
    fast: 8
  adapter_timeout: 30s
  priority_volumes: ["D:", "E:"]
output:
  format: yaml
  path: out/inventory.yaml
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gamescout.yaml"), []byte(yaml), 0o644))

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8, config.Scan.TierConcurrency.Fast)
	assert.Equal(t, 2, config.Scan.TierConcurrency.Medium)
	assert.Equal(t, 30*time.Second, config.Scan.AdapterTimeout)
	assert.Equal(t, []string{"D:", "E:"}, config.Scan.PriorityVolumes)
	assert.Equal(t, "yaml", config.Output.Format)
	assert.Equal(t, "out/inventory.yaml", config.Output.Path)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("GAMESCOUT_SCAN_TIER_CONCURRENCY_SLOW", "3")
	t.Setenv("GAMESCOUT_OUTPUT_PROGRESS", "true")
	t.Setenv("GAMESCOUT_UPDATE_TIMEOUT", "3s")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, config.Scan.TierConcurrency.Slow)
	assert.True(t, config.Output.Progress)
	assert.Equal(t, 3*time.Second, config.Update.Timeout)
}

func TestLoadConfigRejectsBrokenFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gamescout.yaml"), []byte("scan: [unterminated"), 0o644))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  path: custom.toml\n"), 0o644))

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom.toml", config.Output.Path)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestTierCaps(t *testing.T) {
	caps := Default().TierCaps()
	assert.Equal(t, map[sources.Tier]int{sources.TierFast: 4, sources.TierMedium: 2, sources.TierSlow: 1}, caps)
}

func TestHomeDirectories(t *testing.T) {
	dir := isolate(t)
	home := filepath.Join(dir, "home")

	got, err := GetGamescoutHome()
	require.NoError(t, err)
	assert.Equal(t, home, got)

	cachePath, err := DetectionCachePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "cache", "platforms.yaml"), cachePath)
	assert.DirExists(t, filepath.Join(home, "cache"))

	configDir, err := GetConfigDir()
	require.NoError(t, err)
	assert.DirExists(t, configDir)
}

func TestDefaultIsACopy(t *testing.T) {
	a := Default()
	a.Scan.PriorityVolumes = append(a.Scan.PriorityVolumes, "Z:")
	a.Output.Path = "changed"
	assert.Empty(t, Default().Scan.PriorityVolumes)
	assert.Equal(t, "games.json", Default().Output.Path)
}
