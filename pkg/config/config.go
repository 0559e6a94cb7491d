package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fulmenhq/gamescout/pkg/sources"
	"github.com/spf13/viper"
)

// Config holds all configuration for gamescout
type Config struct {
	Scan   ScanConfig   `mapstructure:"scan"`
	Output OutputConfig `mapstructure:"output"`
	Update UpdateConfig `mapstructure:"update"`
	Detect DetectConfig `mapstructure:"detect"`
}

// ScanConfig holds scan scheduling options
type ScanConfig struct {
	TierConcurrency TierConcurrency `mapstructure:"tier_concurrency"`
	AdapterTimeout  time.Duration   `mapstructure:"adapter_timeout"` // 0 disables
	PriorityVolumes []string        `mapstructure:"priority_volumes"`
}

// TierConcurrency caps the scanners running at once per tier
type TierConcurrency struct {
	Fast   int `mapstructure:"fast"`
	Medium int `mapstructure:"medium"`
	Slow   int `mapstructure:"slow"`
}

// OutputConfig holds inventory output options
type OutputConfig struct {
	Path     string `mapstructure:"path"`
	Format   string `mapstructure:"format"` // "json", "yaml", "toml"
	Progress bool   `mapstructure:"progress"`
}

// UpdateConfig holds update check options
type UpdateConfig struct {
	Repository string        `mapstructure:"repository"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Token      string        `mapstructure:"token"`
}

// DetectConfig holds platform detection options
type DetectConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

var defaultConfig = Config{
	Scan: ScanConfig{
		TierConcurrency: TierConcurrency{Fast: 4, Medium: 2, Slow: 1},
		AdapterTimeout:  parseDurationDefault("2m"),
		PriorityVolumes: []string{},
	},
	Output: OutputConfig{
		Path:     "games.json",
		Format:   "json",
		Progress: false,
	},
	Update: UpdateConfig{
		Repository: "fulmenhq/gamescout",
		Timeout:    parseDurationDefault("10s"),
	},
	Detect: DetectConfig{
		CacheTTL: parseDurationDefault("24h"),
	},
}

// Default returns a copy of the built-in configuration.
func Default() *Config {
	c := defaultConfig
	c.Scan.PriorityVolumes = append([]string{}, defaultConfig.Scan.PriorityVolumes...)
	return &c
}

// LoadConfig loads configuration from defaults, an optional gamescout.yaml and
// GAMESCOUT_* environment variables, in increasing precedence.
func LoadConfig() (*Config, error) {
	return Load("")
}

// Load is LoadConfig with an explicit config file. An empty path searches
// the default locations; a named file must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("scan.tier_concurrency.fast", defaultConfig.Scan.TierConcurrency.Fast)
	v.SetDefault("scan.tier_concurrency.medium", defaultConfig.Scan.TierConcurrency.Medium)
	v.SetDefault("scan.tier_concurrency.slow", defaultConfig.Scan.TierConcurrency.Slow)
	v.SetDefault("scan.adapter_timeout", defaultConfig.Scan.AdapterTimeout)
	v.SetDefault("scan.priority_volumes", defaultConfig.Scan.PriorityVolumes)

	v.SetDefault("output.path", defaultConfig.Output.Path)
	v.SetDefault("output.format", defaultConfig.Output.Format)
	v.SetDefault("output.progress", defaultConfig.Output.Progress)

	v.SetDefault("update.repository", defaultConfig.Update.Repository)
	v.SetDefault("update.timeout", defaultConfig.Update.Timeout)
	v.SetDefault("update.token", "")

	v.SetDefault("detect.cache_ttl", defaultConfig.Detect.CacheTTL)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		// Configuration file search paths
		v.SetConfigName("gamescout")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")     // Current directory
		v.AddConfigPath("$HOME") // Home directory
		if configDir, err := GetConfigDir(); err == nil {
			v.AddConfigPath(configDir)
		}
	}

	v.SetEnvPrefix("GAMESCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// TierCaps returns the per-tier concurrency caps keyed by tier.
func (c *Config) TierCaps() map[sources.Tier]int {
	return map[sources.Tier]int{
		sources.TierFast:   c.Scan.TierConcurrency.Fast,
		sources.TierMedium: c.Scan.TierConcurrency.Medium,
		sources.TierSlow:   c.Scan.TierConcurrency.Slow,
	}
}

// parseDurationDefault is a helper to create default duration values from string literal
func parseDurationDefault(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// GetGamescoutHome returns the gamescout home directory
func GetGamescoutHome() (string, error) {
	if home := os.Getenv("GAMESCOUT_HOME"); home != "" {
		return home, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".gamescout"), nil
}

// EnsureGamescoutHome creates the gamescout home directory if it doesn't exist
func EnsureGamescoutHome() (string, error) {
	homeDir, err := GetGamescoutHome()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(homeDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create gamescout home directory: %w", err)
	}
	return homeDir, nil
}

func ensureSubdir(name string) (string, error) {
	homeDir, err := EnsureGamescoutHome()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(homeDir, name)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", name, err)
	}
	return dir, nil
}

// GetCacheDir returns the cache directory
func GetCacheDir() (string, error) { return ensureSubdir("cache") }

// GetConfigDir returns the config directory
func GetConfigDir() (string, error) { return ensureSubdir("config") }

// DetectionCachePath returns the platform detection cache file path
func DetectionCachePath() (string, error) {
	dir, err := GetCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "platforms.yaml"), nil
}
