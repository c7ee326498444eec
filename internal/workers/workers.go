package workers

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-pos-offline/internal/config"
	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/internal/service"
)

type Workers struct {
	workers []Worker
}

// NewWorkers builds the gateway's periodic jobs. A zero interval disables
// the job.
func NewWorkers(services *service.Services, cfg config.GatewayWorkers, logger *logger.Logger) *Workers {
	w := &Workers{}

	if cfg.ProbeInterval > 0 {
		w.workers = append(w.workers, &Periodic{
			Name:      "probe",
			Interval:  cfg.ProbeInterval,
			Immediate: true,
			Job: func(ctx context.Context) error {
				services.ConnectivityService.Probe(ctx)
				return nil
			},
			Logger: logger,
		})
	}
	if cfg.SyncInterval > 0 {
		w.workers = append(w.workers, &Periodic{
			Name:     service.TagQueueSync,
			Interval: cfg.SyncInterval,
			Job:      periodicSync(services, service.TagQueueSync),
			Logger:   logger,
		})
	}
	if cfg.RefreshInterval > 0 {
		w.workers = append(w.workers, &Periodic{
			Name:     service.TagDataRefresh,
			Interval: cfg.RefreshInterval,
			Job:      periodicSync(services, service.TagDataRefresh),
			Logger:   logger,
		})
	}

	return w
}

func periodicSync(services *service.Services, tag string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := services.Dispatcher.Dispatch(ctx, service.Event{Kind: service.EventPeriodicSync, Tag: tag})
		return err
	}
}

// Len reports the number of configured workers.
func (w *Workers) Len() int {
	return len(w.workers)
}

// Run starts every worker and waits for all of them. The first worker
// error cancels the rest and is returned.
func (w *Workers) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, worker := range w.workers {
		g.Go(func() error {
			return worker.Run(ctx)
		})
	}
	return g.Wait()
}
