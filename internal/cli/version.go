package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-pos-offline/models"
)

func versionCmd(info models.AppBuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Build version: %s\n", valueOrNA(info.BuildVersion()))
			fmt.Fprintf(out, "Build date: %s\n", valueOrNA(info.BuildDate()))
			fmt.Fprintf(out, "Build commit: %s\n", valueOrNA(info.BuildCommit()))
		},
	}
}
