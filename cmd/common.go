package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fulmenhq/gamescout/pkg/config"
	"github.com/fulmenhq/gamescout/pkg/exitcode"
	"github.com/fulmenhq/gamescout/pkg/sources"
	"github.com/fulmenhq/gamescout/pkg/update"
	"github.com/fulmenhq/gamescout/pkg/volume"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// releaseChecker is the part of update.Checker the version command uses.
type releaseChecker interface {
	Check(ctx context.Context, current string) (*update.Status, error)
}

// Host access used by the commands; tests swap these for fixtures.
var (
	newEnv             = sources.SystemEnv
	outputFs           = afero.NewOsFs()
	detectionCachePath = config.DetectionCachePath
	now                = time.Now
)

var newEnumerator = func(roots, priority []string) volume.Enumerator {
	if len(roots) > 0 {
		return volume.Static{Roots: roots, Priority: priority}
	}
	return volume.NewSystem(priority...)
}

var newReleaseChecker = func(cfg config.UpdateConfig) releaseChecker {
	return update.NewChecker(cfg.Repository, cfg.Token, cfg.Timeout)
}

// loadConfig reads configuration honoring the persistent --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, exitcode.New(exitcode.ConfigError, err)
	}
	return cfg, nil
}

// addVolumeFlags registers the flags selecting which roots are probed.
func addVolumeFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("volume", nil, "Probe only these roots (repeatable, e.g. --volume D: --volume /mnt/games)")
	cmd.Flags().StringSlice("priority", nil, "Roots scanned first (default: the system drive)")
}

// enumeratorFor builds the volume enumerator from flags and configuration.
func enumeratorFor(cmd *cobra.Command, cfg *config.Config) volume.Enumerator {
	roots, _ := cmd.Flags().GetStringSlice("volume")
	priority, _ := cmd.Flags().GetStringSlice("priority")
	if len(priority) == 0 {
		priority = cfg.Scan.PriorityVolumes
	}
	if len(priority) == 0 {
		if drive := os.Getenv("SystemDrive"); drive != "" {
			priority = []string{drive}
		}
	}
	return newEnumerator(trimAll(roots), trimAll(priority))
}

func trimAll(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// contextOf returns the command context, falling back to Background for
// commands run outside Execute.
func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
