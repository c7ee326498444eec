package workers

import (
	"context"
	"errors"
	"time"

	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/internal/service"
)

// Periodic runs Job every Interval until the context is done. Job errors
// are logged and do not stop the worker.
type Periodic struct {
	Name     string
	Interval time.Duration
	// Immediate runs Job once before the first tick.
	Immediate bool
	Job       func(ctx context.Context) error

	Logger *logger.Logger
}

func (p *Periodic) Run(ctx context.Context) error {
	log := p.Logger.With().Str("worker", p.Name).Logger()
	log.Info().Dur("interval", p.Interval).Msg("worker started")

	if p.Immediate {
		p.runOnce(ctx)
	}

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("worker stopped")
			return nil
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *Periodic) runOnce(ctx context.Context) {
	err := p.Job(ctx)
	switch {
	case err == nil:
	case ctx.Err() != nil:
	case errors.Is(err, service.ErrSyncInProgress):
		p.Logger.Debug().Str("worker", p.Name).Msg("sync already running, tick skipped")
	default:
		p.Logger.Warn().Err(err).Str("worker", p.Name).Msg("periodic job failed")
	}
}
