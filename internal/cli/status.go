package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-pos-offline/internal/app"
	"github.com/MKhiriev/go-pos-offline/models"
)

func statusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connectivity, cache generation and queue size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			status, err := client.Status(cmd.Context())
			if err != nil {
				return explain("status", err)
			}

			out := cmd.OutOrStdout()
			if done, err := printStructured(out, opts.output, status); done {
				return err
			}
			printStatus(out, status)
			return nil
		},
	}
}

func printStatus(w io.Writer, s models.GatewayStatus) {
	if s.Online {
		fmt.Fprintf(w, "Upstream:    %s  %s\n", okColor.Sprint("ONLINE"), app.MsgUpstreamOnline)
	} else {
		fmt.Fprintf(w, "Upstream:    %s  %s\n", warnColor.Sprint("OFFLINE"), app.MsgUpstreamOffline)
	}
	fmt.Fprintf(w, "Version:     %s\n", valueOrNA(s.Version))

	if s.ActiveGeneration == 0 {
		fmt.Fprintf(w, "Generation:  %s\n", failColor.Sprint("none active"))
	} else {
		fmt.Fprintf(w, "Generation:  %d\n", s.ActiveGeneration)
	}
	if len(s.Partitions) > 0 {
		fmt.Fprintf(w, "Partitions:  %s\n", strings.Join(s.Partitions, ", "))
	}

	queue := fmt.Sprintf("%d total, %d unsynced", s.Queue.Total, s.Queue.Unsynced)
	if s.Queue.Unsynced > 0 {
		queue = warnColor.Sprint(queue) + dimColor.Sprintf(" (oldest %s)", formatTime(s.Queue.Oldest))
	}
	fmt.Fprintf(w, "Queue:       %s\n", queue)

	switch {
	case s.Sync.Running:
		fmt.Fprintln(w, "Sync:        running")
	case s.Sync.LastReport != nil:
		fmt.Fprintf(w, "Sync:        last pass %s\n", describeReport(*s.Sync.LastReport))
	default:
		fmt.Fprintln(w, "Sync:        no pass yet")
	}
}

func describeReport(r models.SyncReport) string {
	text := fmt.Sprintf("%d attempted, %d synced, %d remaining", r.Attempted, r.Synced, r.Remaining)
	if r.StoppedAt != 0 {
		text += failColor.Sprintf(", stopped at #%d", r.StoppedAt)
		if r.Error != "" {
			text += failColor.Sprintf(": %s", r.Error)
		}
	}
	return text
}
