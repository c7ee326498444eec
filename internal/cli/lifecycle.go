package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-pos-offline/internal/adapter"
	"github.com/MKhiriev/go-pos-offline/models"
)

func installCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Precache the configured manifest into a new generation",
		Long: `Install precaches every manifest URL into fresh partitions. The active
generation keeps serving until the new one is activated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLifecycle(cmd, opts, "install", adapter.ControlClient.Install)
		},
	}
}

func activateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "activate",
		Short: "Switch to the installed generation and drop older partitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLifecycle(cmd, opts, "activate", adapter.ControlClient.Activate)
		},
	}
}

func runLifecycle(cmd *cobra.Command, opts *options, op string, call func(adapter.ControlClient, context.Context) (models.Generation, error)) error {
	client, err := opts.client()
	if err != nil {
		return err
	}

	generation, err := call(client, cmd.Context())
	if err != nil {
		return explain(op, err)
	}

	out := cmd.OutOrStdout()
	if done, err := printStructured(out, opts.output, generation); done {
		return err
	}
	fmt.Fprintf(out, "Generation %d %s (manifest %s)\n",
		generation.Generation, okColor.Sprint(generation.Status), shortHash(generation.ManifestHash))
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return valueOrNA(h)
}
