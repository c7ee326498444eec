package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-pos-offline/internal/adapter"
	"github.com/MKhiriev/go-pos-offline/internal/app"
)

func syncCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay queued writes now",
		Long: `Run one reconciliation pass. Writes are replayed oldest first and the
pass stops at the first failure, leaving it and everything after it queued.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			report, err := client.TriggerSync(cmd.Context())
			if errors.Is(err, adapter.ErrConflict) {
				return errors.New(app.MsgSyncInProgress)
			}
			if err != nil {
				return explain("sync", err)
			}

			out := cmd.OutOrStdout()
			if done, err := printStructured(out, opts.output, report); done {
				return err
			}
			fmt.Fprintf(out, "Sync pass: %s\n", describeReport(report))
			return nil
		},
	}
}
