package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/fulmenhq/gamescout/pkg/buildinfo"
	"github.com/fulmenhq/gamescout/pkg/exitcode"
	"github.com/fulmenhq/gamescout/pkg/logger"
	"github.com/spf13/cobra"
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gamescout",
		Short: "Find the PC games installed on this machine",
		Long: `Gamescout inventories installed PC games across Steam, Epic Games Store,
EA, Ubisoft Connect, Battle.net, GOG Galaxy, Microsoft Store, Riot Games,
Star Citizen and Rockstar Games, and writes one deduplicated list.

Examples:
   gamescout scan                      # Scan all volumes, write games.json
   gamescout scan -o games.yaml        # Write YAML instead
   gamescout scan --progress           # Emit PROGRESS:<json> lines on stdout
   gamescout detect                    # Show which launchers are installed
   gamescout volumes                   # Show volumes in scan order
   gamescout version --check           # Check for a newer release`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	// Add global flags
	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json-logs", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().String("config", "", "Config file (default: gamescout.yaml in ., $HOME or ~/.gamescout/config)")

	// Wire Cobra's built-in --version
	cmd.Version = buildinfo.Version()
	cmd.SetVersionTemplate("gamescout {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newScanCommand())
	cmd.AddCommand(newDetectCommand())
	cmd.AddCommand(newVolumesCommand())
	cmd.AddCommand(newVersionCommand())
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

func init() {
	registerSubcommands(rootCmd)
}

// Execute runs the root command and exits with the mapped exit code on failure.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		code := exitCodeFor(err)
		logger.Error("Command execution failed", logger.Err(err), logger.String("exit", exitcode.String(code)))
		stop()
		os.Exit(code)
	}
}

// exitCodeFor maps a command error to a process exit code.
func exitCodeFor(err error) int {
	var coded *exitcode.Error
	switch {
	case err == nil:
		return exitcode.Success
	case errors.As(err, &coded):
		return coded.Code
	case errors.Is(err, context.Canceled):
		return exitcode.Interrupted
	case errors.Is(err, context.DeadlineExceeded):
		return exitcode.TimeoutError
	default:
		return exitcode.GeneralError
	}
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	noColor, _ := cmd.Flags().GetBool("no-color")

	config := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor && os.Getenv("NO_COLOR") == "",
		JSON:      jsonLogs,
		Component: "gamescout",
	}

	if err := logger.Initialize(config); err != nil {
		// Fallback to stderr
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.ConfigError)
	}
}
