package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fulmenhq/gamescout/pkg/config"
	"github.com/fulmenhq/gamescout/pkg/exitcode"
	"github.com/fulmenhq/gamescout/pkg/logger"
	"github.com/fulmenhq/gamescout/pkg/progress"
	"github.com/fulmenhq/gamescout/pkg/report"
	"github.com/fulmenhq/gamescout/pkg/safeio"
	"github.com/fulmenhq/gamescout/pkg/scan"
	"github.com/fulmenhq/gamescout/pkg/sources"
	"github.com/fulmenhq/gamescout/pkg/store"
	"github.com/spf13/cobra"
)

func newScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan all launchers and write the game inventory",
		Long: `Scan every supported launcher on every accessible volume, merge the results
into one deduplicated inventory and write it to a file.

Sources run in three tiers (fast, medium, slow); each tier finishes before the
next one starts. A failing source is reported and skipped; the scan itself
only fails when it is interrupted or the inventory cannot be written.

With --progress, one PROGRESS:<json> line per scan event is written to stdout
and the summary goes to stderr.`,
		Args: cobra.NoArgs,
		RunE: runScan,
	}
	addScanFlags(cmd)
	return cmd
}

func addScanFlags(cmd *cobra.Command) {
	var format store.Format
	cmd.Flags().StringP("output", "o", "", "Inventory file (default from config: games.json)")
	cmd.Flags().Var(&format, "format", "Inventory format: json, yaml or toml (default: from the output extension)")
	cmd.Flags().Bool("progress", false, "Write PROGRESS:<json> lines to stdout")
	cmd.Flags().Bool("table", false, "Print every found game after the summary")
	cmd.Flags().Duration("adapter-timeout", 0, "Per-source probe timeout (0 keeps the configured value)")
	cmd.Flags().Int("tier-fast", 0, "Concurrent fast-tier sources (0 keeps the configured value)")
	cmd.Flags().Int("tier-medium", 0, "Concurrent medium-tier sources (0 keeps the configured value)")
	cmd.Flags().Int("tier-slow", 0, "Concurrent slow-tier sources (0 keeps the configured value)")
	addVolumeFlags(cmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	output, format, err := resolveOutput(cmd, cfg)
	if err != nil {
		return err
	}

	showProgress := cfg.Output.Progress
	if cmd.Flags().Changed("progress") {
		showProgress, _ = cmd.Flags().GetBool("progress")
	}
	timeout := cfg.Scan.AdapterTimeout
	if t, _ := cmd.Flags().GetDuration("adapter-timeout"); t > 0 {
		timeout = t
	}

	summaryOut := cmd.OutOrStdout()
	var sink progress.Sink = progress.Func(func(e progress.Event) {
		logger.Trace("Scan progress",
			logger.String("stage", string(e.Stage)),
			logger.Int("percent", e.Percent),
			logger.Int("found", e.TotalFound))
	})
	if showProgress {
		sink = progress.Multi(progress.NewLineSink(cmd.OutOrStdout()), sink)
		summaryOut = cmd.ErrOrStderr()
	}

	orchestrator := scan.New(enumeratorFor(cmd, cfg),
		scan.WithScanners(sources.NewScanners(sources.Options{AdapterTimeout: timeout})...),
		scan.WithEnv(newEnv(nil)),
		scan.WithTierCaps(tierCaps(cmd, cfg)),
		scan.WithProgress(sink),
	)

	logger.Info("Starting scan", logger.String("output", output), logger.String("format", string(format)))
	result, err := orchestrator.ScanAll(contextOf(cmd))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return exitcode.New(exitcode.TimeoutError, err)
		}
		return exitcode.New(exitcode.Interrupted, fmt.Errorf("scan interrupted: %w", err))
	}
	if failures := result.Diagnostics.Err(); failures != nil {
		logger.Warn("Some sources failed", logger.Err(failures))
	}

	if err := store.Save(outputFs, output, format, result.Entries); err != nil {
		return exitcode.New(exitcode.FileSystemError, fmt.Errorf("failed to write inventory: %w", err))
	}

	return printScanSummary(cmd, summaryOut, result, output)
}

func printScanSummary(cmd *cobra.Command, w io.Writer, result *scan.Result, output string) error {
	summary, err := report.Summary(result, output)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, summary); err != nil {
		return err
	}
	if table, _ := cmd.Flags().GetBool("table"); table && len(result.Entries) > 0 {
		_, err = fmt.Fprint(w, "\n"+report.Games(result.Entries))
	}
	return err
}

// resolveOutput picks the inventory path and format. An explicit --format
// wins, then the output file extension, then the configured format.
func resolveOutput(cmd *cobra.Command, cfg *config.Config) (string, store.Format, error) {
	path := cfg.Output.Path
	if p, _ := cmd.Flags().GetString("output"); p != "" {
		path = p
	}
	output, err := safeio.CleanUserPath(path)
	if err != nil {
		return "", "", exitcode.New(exitcode.ValidationError, fmt.Errorf("invalid output path %q: %w", path, err))
	}

	if f := cmd.Flags().Lookup("format"); f != nil && f.Changed {
		return output, store.Format(f.Value.String()), nil
	}
	if format, ok := store.FormatForPath(output); ok {
		return output, format, nil
	}
	format, err := store.ParseFormat(cfg.Output.Format)
	if err != nil {
		return "", "", exitcode.New(exitcode.UnsupportedFormat, err)
	}
	return output, format, nil
}

// tierCaps merges configured tier caps with non-zero flag overrides.
func tierCaps(cmd *cobra.Command, cfg *config.Config) map[sources.Tier]int {
	caps := cfg.TierCaps()
	for tier, flag := range map[sources.Tier]string{
		sources.TierFast:   "tier-fast",
		sources.TierMedium: "tier-medium",
		sources.TierSlow:   "tier-slow",
	} {
		if n, _ := cmd.Flags().GetInt(flag); n > 0 {
			caps[tier] = n
		}
	}
	return caps
}
