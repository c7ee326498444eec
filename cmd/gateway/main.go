package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-pos-offline/internal/adapter"
	"github.com/MKhiriev/go-pos-offline/internal/config"
	"github.com/MKhiriev/go-pos-offline/internal/events"
	"github.com/MKhiriev/go-pos-offline/internal/handler"
	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/internal/server"
	"github.com/MKhiriev/go-pos-offline/internal/service"
	"github.com/MKhiriev/go-pos-offline/internal/store"
	"github.com/MKhiriev/go-pos-offline/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("pos-offline-gateway")
	cfg, err := config.GetGatewayConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.App.Version == config.DefaultAppVersion && buildVersion != "N/A" {
		cfg.App.Version = buildVersion
	}

	log.Debug().Any("server", cfg.Server).Any("adapter", cfg.Adapter).Any("workers", cfg.Workers).Msg("received configs")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()
	ctx = log.WithContext(ctx)

	storages, err := store.NewStorages(ctx, cfg.Storage.DSN, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	upstream, err := adapter.NewHTTPUpstreamAdapter(cfg.Adapter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating upstream adapter")
	}

	bus := events.NewBus(log)
	defer bus.Close()

	services, err := service.NewServices(storages, upstream, bus, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	if err = services.Bootstrap(ctx); err != nil {
		log.Fatal().Err(err).Msg("error restoring cache generation")
	}

	handlers, err := handler.NewHandlers(services, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})
	g.Go(func() error {
		return workers.NewWorkers(services, cfg.Workers, log).Run(ctx)
	})

	if err = g.Wait(); err != nil {
		log.Error().Err(err).Msg("gateway stopped with error")
		return
	}
	log.Info().Msg("gateway stopped")
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
