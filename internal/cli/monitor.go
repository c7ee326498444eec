package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-pos-offline/internal/tui"
)

func monitorCmd(opts *options) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch the gateway in an interactive terminal view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			ui, err := tui.New(client, interval, opts.logger)
			if err != nil {
				return err
			}
			return ui.Run(cmd.Context())
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", 2*time.Second, "refresh interval")

	return cmd
}
