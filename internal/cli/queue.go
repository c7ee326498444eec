package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-pos-offline/models"
)

var errInvalidKind = errors.New("invalid write kind")

func queueCmd(opts *options) *cobra.Command {
	var (
		kind     string
		unsynced bool
		synced   bool
		limit    uint64
	)

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "List queued writes",
		Long: `List the writes recorded while the POS API was unreachable, oldest
first. Synced writes stay listed for audit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := models.QueueFilter{Kind: models.WriteKind(kind), Limit: limit}
			if kind != "" && !filter.Kind.Valid() {
				return fmt.Errorf("%w: %q", errInvalidKind, kind)
			}
			if unsynced && synced {
				return errors.New("--synced and --unsynced are mutually exclusive")
			}
			if unsynced || synced {
				filter.Synced = &synced
			}

			client, err := opts.client()
			if err != nil {
				return err
			}

			writes, err := client.Queue(cmd.Context(), filter)
			if err != nil {
				return explain("queue", err)
			}

			out := cmd.OutOrStdout()
			if done, err := printStructured(out, opts.output, writes); done {
				return err
			}
			printQueue(out, writes)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "only writes of this kind (transaction, receipt)")
	cmd.Flags().BoolVarP(&unsynced, "unsynced", "u", false, "only writes still waiting for sync")
	cmd.Flags().BoolVar(&synced, "synced", false, "only writes already synced")
	cmd.Flags().Uint64VarP(&limit, "limit", "n", 0, "maximum number of writes")

	return cmd
}

func printQueue(w io.Writer, writes []models.QueuedWrite) {
	if len(writes) == 0 {
		fmt.Fprintln(w, "Queue is empty")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tREQUEST\tCREATED\tATTEMPTS\tSTATE")
	for _, q := range writes {
		fmt.Fprintf(tw, "%d\t%s\t%s %s\t%s\t%d\t%s\n",
			q.ID, q.Kind, q.Method, q.Path, formatTime(&q.CreatedAt), q.Attempts, writeState(q))
	}
	_ = tw.Flush()
}

func writeState(q models.QueuedWrite) string {
	switch {
	case q.Synced:
		return okColor.Sprint("synced")
	case q.LastError != "":
		return failColor.Sprint("failing: " + q.LastError)
	default:
		return warnColor.Sprint("pending")
	}
}
