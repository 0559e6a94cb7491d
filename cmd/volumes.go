package cmd

import (
	"fmt"

	"github.com/fulmenhq/gamescout/pkg/exitcode"
	"github.com/fulmenhq/gamescout/pkg/report"
	"github.com/spf13/cobra"
)

func newVolumesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volumes",
		Short: "List the volumes a scan would probe, in scan order",
		Args:  cobra.NoArgs,
		RunE:  runVolumes,
	}
	cmd.Flags().Bool("json", false, "Output volumes in JSON format")
	addVolumeFlags(cmd)
	return cmd
}

func runVolumes(cmd *cobra.Command, _ []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	volumes, err := enumeratorFor(cmd, cfg).ListAccessibleVolumes(contextOf(cmd))
	if err != nil {
		return exitcode.New(exitcode.FileSystemError, err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, volumes)
	}
	if len(volumes) == 0 {
		_, err = fmt.Fprintln(out, "No accessible volumes found")
		return err
	}
	_, err = fmt.Fprint(out, report.Volumes(volumes))
	return err
}
