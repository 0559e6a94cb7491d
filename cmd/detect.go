package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/fulmenhq/gamescout/pkg/exitcode"
	"github.com/fulmenhq/gamescout/pkg/logger"
	"github.com/fulmenhq/gamescout/pkg/report"
	"github.com/fulmenhq/gamescout/pkg/sources"
	"github.com/fulmenhq/gamescout/pkg/store"
	"github.com/fulmenhq/gamescout/pkg/volume"
	"github.com/spf13/cobra"
)

func newDetectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Show which game launchers are installed",
		Long: `Check every volume for the install roots and manifest directories of each
supported launcher, and the registry for launcher marker keys. No games are
enumerated.

Results are cached in ~/.gamescout/cache/platforms.yaml and reused while the
cache is younger than detect.cache_ttl (default 24h).`,
		Args: cobra.NoArgs,
		RunE: runDetect,
	}
	cmd.Flags().Bool("json", false, "Output detection results in JSON format")
	cmd.Flags().Bool("refresh", false, "Ignore the detection cache")
	cmd.Flags().Bool("no-cache", false, "Neither read nor write the detection cache")
	addVolumeFlags(cmd)
	return cmd
}

func runDetect(cmd *cobra.Command, _ []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	refresh, _ := cmd.Flags().GetBool("refresh")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := contextOf(cmd)

	var cachePath string
	if !noCache {
		if cachePath, err = detectionCachePath(); err != nil {
			logger.Warn("Detection cache unavailable", logger.Err(err))
			cachePath = ""
		}
	}

	var presence []sources.Presence
	if cachePath != "" && !refresh {
		cache, err := store.LoadDetection(outputFs, cachePath)
		switch {
		case err == nil && cache.Fresh(now(), cfg.Detect.CacheTTL):
			logger.Debug("Using cached detection", logger.String("path", cachePath))
			presence = cache.Platforms
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			logger.Warn("Ignoring unreadable detection cache", logger.String("path", cachePath), logger.Err(err))
		}
	}

	if presence == nil {
		volumes, err := enumeratorFor(cmd, cfg).ListAccessibleVolumes(ctx)
		if err != nil {
			logger.Warn("Volume enumeration failed, checking the registry only", logger.Err(err))
			volumes = nil
		}
		logger.Debug("Detecting platforms", logger.Strings("roots", volume.Roots(volumes)))

		presence, err = sources.Detect(ctx, newEnv(volumes))
		if err != nil {
			return exitcode.New(exitcode.Interrupted, fmt.Errorf("detection interrupted: %w", err))
		}
		if cachePath != "" {
			if err := store.SaveDetection(outputFs, cachePath, store.PlatformCache{DetectedAt: now(), Platforms: presence}); err != nil {
				logger.Warn("Failed to write detection cache", logger.String("path", cachePath), logger.Err(err))
			}
		}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, presence)
	}
	_, err = fmt.Fprint(out, report.Detection(presence))
	if err == nil {
		_, err = fmt.Fprintf(out, "\n%d of %d launchers installed\n", len(sources.InstalledPlatforms(presence)), len(presence))
	}
	return err
}
