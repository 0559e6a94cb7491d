package cmd

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/fulmenhq/gamescout/pkg/buildinfo"
	"github.com/fulmenhq/gamescout/pkg/exitcode"
	"github.com/fulmenhq/gamescout/pkg/update"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show the gamescout version. With --check, ask GitHub whether a newer
release is published (update.repository, default fulmenhq/gamescout).`,
		Args: cobra.NoArgs,
		RunE: runVersion,
	}
	cmd.Flags().Bool("extended", false, "Show detailed build information")
	cmd.Flags().Bool("json", false, "Output version information in JSON format")
	cmd.Flags().Bool("check", false, "Check for a newer release")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	check, _ := cmd.Flags().GetBool("check")

	out := cmd.OutOrStdout()
	version := buildinfo.Version()

	var status *update.Status
	if check {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		status, err = newReleaseChecker(cfg.Update).Check(contextOf(cmd), version)
		if err != nil {
			return checkError(err)
		}
	}

	if jsonOutput {
		versionInfo := map[string]interface{}{
			"version":   version,
			"goVersion": runtime.Version(),
			"platform":  runtime.GOOS,
			"arch":      runtime.GOARCH,
		}
		if extended {
			versionInfo["commit"] = valueOrUnknown(buildinfo.Commit)
			versionInfo["buildDate"] = valueOrUnknown(buildinfo.BuildDate)
			versionInfo["moduleVersion"] = valueOrUnknown(buildinfo.ModuleVersion())
		}
		if status != nil {
			versionInfo["update"] = status
		}
		return writeJSON(out, versionInfo)
	}

	fmt.Fprintf(out, "gamescout %s\n", version)
	if extended {
		fmt.Fprintf(out, "Commit: %s\n", valueOrUnknown(buildinfo.Commit))
		fmt.Fprintf(out, "Build date: %s\n", valueOrUnknown(buildinfo.BuildDate))
		fmt.Fprintf(out, "Module version: %s\n", valueOrUnknown(buildinfo.ModuleVersion()))
	}
	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	if status != nil {
		switch {
		case !status.Comparable:
			fmt.Fprintf(out, "Latest release: %s (this build's version cannot be compared)\n", status.Latest)
		case status.UpdateAvailable:
			fmt.Fprintf(out, "Update available: %s -> %s\n", status.Current, status.Latest)
			if status.URL != "" {
				fmt.Fprintf(out, "Download: %s\n", status.URL)
			}
		default:
			fmt.Fprintf(out, "Up to date (latest release %s)\n", status.Latest)
		}
	}
	return nil
}

// checkError maps update check failures to exit codes.
func checkError(err error) error {
	var netErr *update.NetworkError
	var rateErr *update.RateLimitError
	switch {
	case errors.As(err, &netErr), errors.As(err, &rateErr):
		return exitcode.New(exitcode.NetworkError, fmt.Errorf("update check failed: %w", err))
	case errors.Is(err, update.ErrInvalidRepository):
		return exitcode.New(exitcode.ConfigError, err)
	default:
		return fmt.Errorf("update check failed: %w", err)
	}
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
