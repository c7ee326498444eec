// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package cli implements offlinectl, the operator CLI of the offline
// gateway. Every command talks to a running gateway through its /_offline
// API.
package cli

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-pos-offline/internal/adapter"
	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/models"
)

// ClientFactory opens a control client for the gateway at address.
type ClientFactory func(address string, timeout time.Duration) (adapter.ControlClient, error)

// ctlEnv holds the environment defaults of the global flags.
type ctlEnv struct {
	Gateway string        `env:"OFFLINECTL_GATEWAY" envDefault:"http://localhost:8090"`
	Timeout time.Duration `env:"OFFLINECTL_TIMEOUT" envDefault:"30s"`
}

type options struct {
	gateway string
	timeout time.Duration
	output  string
	noColor bool

	newClient ClientFactory
	logger    *logger.Logger
}

func (o *options) client() (adapter.ControlClient, error) {
	return o.newClient(o.gateway, o.timeout)
}

// NewRootCmd builds the offlinectl command tree. A nil factory uses the
// HTTP control client.
func NewRootCmd(info models.AppBuildInfo, newClient ClientFactory, log *logger.Logger) *cobra.Command {
	if newClient == nil {
		newClient = adapter.NewHTTPControlClient
	}

	defaults, err := env.ParseAs[ctlEnv]()
	if err != nil {
		log.Warn().Err(err).Msg("ignoring invalid OFFLINECTL_* environment")
		defaults = ctlEnv{Gateway: "http://localhost:8090", Timeout: 30 * time.Second}
	}

	opts := &options{newClient: newClient, logger: log}

	rootCmd := &cobra.Command{
		Use:   "offlinectl",
		Short: "Operate a POS offline gateway",
		Long: `offlinectl inspects and drives a running POS offline gateway:
connectivity, the active cache generation and the queue of writes
recorded while the POS API was unreachable.`,
		Version:       valueOrNA(info.BuildVersion()),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.gateway, "gateway", "g", defaults.Gateway, "gateway address (env OFFLINECTL_GATEWAY)")
	flags.DurationVar(&opts.timeout, "timeout", defaults.Timeout, "request timeout (env OFFLINECTL_TIMEOUT)")
	flags.StringVarP(&opts.output, "output", "o", outputText, "output format: text, json or yaml")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(statusCmd(opts))
	rootCmd.AddCommand(queueCmd(opts))
	rootCmd.AddCommand(syncCmd(opts))
	rootCmd.AddCommand(installCmd(opts))
	rootCmd.AddCommand(activateCmd(opts))
	rootCmd.AddCommand(monitorCmd(opts))
	rootCmd.AddCommand(versionCmd(info))

	return rootCmd
}
