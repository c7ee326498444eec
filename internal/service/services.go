// Package service holds the offline gateway's behaviour: cache strategies,
// the durable write queue, reconciliation, cache generations and
// notifications.
package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-pos-offline/internal/adapter"
	"github.com/MKhiriev/go-pos-offline/internal/config"
	"github.com/MKhiriev/go-pos-offline/internal/events"
	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/internal/store"
	"github.com/MKhiriev/go-pos-offline/models"
)

// Services is the explicit runtime context of the gateway. It is built
// once in main and shared by handlers and workers.
type Services struct {
	CacheService        CacheService
	QueueService        QueueService
	RouterService       RouterService
	SyncService         SyncService
	LifecycleService    LifecycleService
	NotificationService NotificationService
	ConnectivityService ConnectivityService
	StatusService       StatusService
	AppInfoService      AppInfoService

	Dispatcher *EventDispatcher
	Bus        *events.Bus
	Manifest   models.Manifest
}

func NewServices(storages *store.Storages, upstream adapter.UpstreamAdapter, bus *events.Bus, cfg *config.GatewayConfig, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	var queue QueueService = NewQueueService(storages.QueueRepository, storages.ErrorClassificator, logger)
	if cfg.Queue.ValidatePayload {
		validation, err := NewQueueValidationService(cfg.Queue.ValidationRule)
		if err != nil {
			return nil, err
		}
		queue = validation.Wrap(queue)
	}

	active := &ActiveGeneration{}
	cache := NewCacheService(storages.CacheRepository, storages.ErrorClassificator, active, logger)
	connectivity := NewConnectivityService(upstream, bus, logger)
	sync := NewSyncService(queue, upstream, bus, logger)
	lifecycle := NewLifecycleService(storages.GenerationRepository, storages.ErrorClassificator, cache, upstream, bus, active, cfg.Manifest, logger)

	s := &Services{
		CacheService:        cache,
		QueueService:        queue,
		RouterService:       NewRouterService(NewClassifier(DefaultClassifierRules()), upstream, cache, queue, connectivity, cfg.Manifest.FallbackPage, logger),
		SyncService:         sync,
		LifecycleService:    lifecycle,
		NotificationService: NewNotificationService(bus, logger),
		ConnectivityService: connectivity,
		StatusService:       NewStatusService(queue, cache, sync, lifecycle, connectivity, appInfo),
		AppInfoService:      appInfo,
		Bus:                 bus,
		Manifest:            cfg.Manifest,
	}
	s.Dispatcher = NewEventDispatcher(s)

	connectivity.Watch(func(ctx context.Context, online bool) {
		if !online {
			return
		}
		// Replays must not hold up the request or probe that observed the
		// transition.
		go func() {
			ctx := context.WithoutCancel(ctx)
			if _, err := s.Dispatcher.Dispatch(ctx, Event{Kind: EventOnline}); err != nil {
				logger.Err(err).Str("func", "Services.onOnline").Msg("reconnect handling failed")
			}
		}()
	})

	return s, nil
}

// Bootstrap restores the active generation and, when none is active or the
// manifest changed, installs and activates the configured manifest. A
// failed install while offline is not fatal: lookups miss until the next
// attempt.
func (s *Services) Bootstrap(ctx context.Context) error {
	log := logger.FromContext(ctx)

	_, err := s.LifecycleService.Restore(ctx)
	if err != nil && !errors.Is(err, ErrNoActiveGeneration) {
		return err
	}

	if _, err = s.Dispatcher.Dispatch(ctx, Event{Kind: EventInstall}); err != nil {
		if errors.Is(err, ErrPrecacheFailed) {
			log.Warn().Err(err).Str("func", "Services.Bootstrap").Msg("precache failed, keeping current generation")
			return nil
		}
		return err
	}

	_, err = s.Dispatcher.Dispatch(ctx, Event{Kind: EventActivate})
	if err != nil && !errors.Is(err, ErrNoInstalledGeneration) {
		return err
	}

	return nil
}

// installIfInactive installs and activates the configured manifest when no
// generation is active, which is the state left by a boot during an outage.
// It reports whether it did.
func (s *Services) installIfInactive(ctx context.Context) (bool, error) {
	if s.LifecycleService.Active() != 0 {
		return false, nil
	}

	if _, err := s.LifecycleService.Install(ctx, s.Manifest); err != nil {
		return false, err
	}
	// A concurrent caller may have activated it already.
	_, err := s.LifecycleService.Activate(ctx)
	if err != nil && !errors.Is(err, ErrNoInstalledGeneration) {
		return false, err
	}

	logger.FromContext(ctx).Info().
		Str("func", "Services.installIfInactive").
		Int64("generation", s.LifecycleService.Active()).
		Msg("cache generation installed after offline start")

	return true, nil
}
