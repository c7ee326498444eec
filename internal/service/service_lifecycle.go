package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-pos-offline/internal/adapter"
	"github.com/MKhiriev/go-pos-offline/internal/events"
	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/internal/store"
	"github.com/MKhiriev/go-pos-offline/internal/utils"
	"github.com/MKhiriev/go-pos-offline/models"
)

// Lifecycle phases published with [models.EventLifecycle].
const (
	PhaseInstalling = "installing"
	PhaseInstalled  = "installed"
	PhaseActivated  = "activated"
	PhaseRefreshed  = "refreshed"
)

// Entity cache paths used by cache-entity messages.
const (
	ProductEntityPath  = "/api/v1/products/"
	CustomerEntityPath = "/api/v1/customers/"
)

// LifecycleEvent is the payload of [models.EventLifecycle].
type LifecycleEvent struct {
	Generation int64  `json:"generation"`
	Phase      string `json:"phase"`
}

type lifecycleService struct {
	generations store.GenerationRepository
	cache       CacheService
	upstream    adapter.UpstreamAdapter
	publisher   events.Publisher
	active      *ActiveGeneration
	retrier     storageRetrier
	manifest    models.Manifest

	// mu serializes install, activate and refresh.
	mu  sync.Mutex
	now func() time.Time

	logger *logger.Logger
}

// NewLifecycleService constructs the [LifecycleService]. manifest is the
// one RefreshData re-fetches API URLs from.
func NewLifecycleService(
	generations store.GenerationRepository,
	classifier store.ErrorClassificator,
	cache CacheService,
	upstream adapter.UpstreamAdapter,
	publisher events.Publisher,
	active *ActiveGeneration,
	manifest models.Manifest,
	logger *logger.Logger,
) LifecycleService {
	return &lifecycleService{
		generations: generations,
		cache:       cache,
		upstream:    upstream,
		publisher:   publisher,
		active:      active,
		retrier:     newStorageRetrier(classifier),
		manifest:    manifest,
		now:         time.Now,
		logger:      logger,
	}
}

func (l *lifecycleService) Active() int64 {
	return l.active.Load()
}

// Install precaches manifest into a new generation. The active generation
// keeps serving until Activate. A manifest equal to the active or already
// installed one is a no-op.
func (l *lifecycleService) Install(ctx context.Context, manifest models.Manifest) (models.Generation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	log := logger.FromContext(ctx)

	hash, err := utils.HashJSON(manifest)
	if err != nil {
		return models.Generation{}, fmt.Errorf("hash manifest: %w", err)
	}

	latest, found, err := l.latest(ctx)
	if err != nil {
		return models.Generation{}, err
	}
	if found && latest.ManifestHash == hash &&
		(latest.Status == models.GenerationActive || latest.Status == models.GenerationInstalled) {
		log.Debug().Str("func", "lifecycleService.Install").Int64("generation", latest.Generation).Msg("manifest unchanged")
		return latest, nil
	}

	next := models.Generation{
		Generation:   latest.Generation + 1,
		ManifestHash: hash,
		Status:       models.GenerationInstalling,
		CreatedAt:    l.now().UTC(),
	}
	err = l.retrier.do(ctx, func(ctx context.Context) error {
		return l.generations.Create(ctx, next)
	})
	if err != nil {
		return models.Generation{}, fmt.Errorf("create generation %d: %w", next.Generation, err)
	}
	l.publish(next.Generation, PhaseInstalling)

	if err = l.precache(ctx, next.Generation, manifest); err != nil {
		log.Err(err).Str("func", "lifecycleService.Install").Int64("generation", next.Generation).Msg("install failed")
		l.abandon(ctx, next.Generation)
		return models.Generation{}, err
	}

	err = l.retrier.do(ctx, func(ctx context.Context) error {
		return l.generations.SetStatus(ctx, next.Generation, models.GenerationInstalled)
	})
	if err != nil {
		return models.Generation{}, fmt.Errorf("mark generation %d installed: %w", next.Generation, err)
	}
	next.Status = models.GenerationInstalled
	l.publish(next.Generation, PhaseInstalled)

	log.Info().Str("func", "lifecycleService.Install").Int64("generation", next.Generation).Msg("generation installed")

	return next, nil
}

func (l *lifecycleService) precache(ctx context.Context, generation int64, manifest models.Manifest) error {
	groups := []struct {
		bucket models.Bucket
		urls   []string
	}{
		{bucket: models.BucketStatic, urls: manifest.StaticURLs},
		{bucket: models.BucketAPI, urls: manifest.APIURLs},
	}
	if manifest.FallbackPage != "" {
		groups = append(groups, struct {
			bucket models.Bucket
			urls   []string
		}{bucket: models.BucketOffline, urls: []string{manifest.FallbackPage}})
	}

	for _, group := range groups {
		partition := models.PartitionName(group.bucket, generation)
		for _, u := range group.urls {
			if err := l.fetchInto(ctx, partition, u); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrPrecacheFailed, u, err)
			}
		}
	}

	return nil
}

// fetchInto stores a fresh copy of url in partition. Only 2xx answers are
// stored.
func (l *lifecycleService) fetchInto(ctx context.Context, partition, url string) error {
	req := models.Request{Method: http.MethodGet, URL: url, Header: http.Header{}}

	resp, err := l.upstream.Do(ctx, req)
	if err != nil {
		return err
	}
	if err = adapter.CheckResponse(resp); err != nil {
		return err
	}

	return l.cache.PutPartition(ctx, partition, models.CacheKey(http.MethodGet, url), entryFromResponse(req, resp))
}

// abandon retires a generation whose install failed and drops whatever it
// precached.
func (l *lifecycleService) abandon(ctx context.Context, generation int64) {
	log := logger.FromContext(ctx)

	if err := l.generations.SetStatus(ctx, generation, models.GenerationRetired); err != nil {
		log.Err(err).Str("func", "lifecycleService.abandon").Int64("generation", generation).Msg("failed to retire generation")
	}
	for _, bucket := range models.Buckets {
		if err := l.cache.DeletePartition(ctx, models.PartitionName(bucket, generation)); err != nil {
			log.Err(err).Str("func", "lifecycleService.abandon").Int64("generation", generation).Msg("failed to drop partition")
		}
	}
}

// Activate switches to the latest installed generation and drops every
// other generation's partitions.
func (l *lifecycleService) Activate(ctx context.Context) (models.Generation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.activate(ctx)
}

func (l *lifecycleService) activate(ctx context.Context) (models.Generation, error) {
	latest, found, err := l.latest(ctx)
	if err != nil {
		return models.Generation{}, err
	}
	if !found || latest.Status != models.GenerationInstalled {
		return models.Generation{}, ErrNoInstalledGeneration
	}

	at := l.now().UTC()
	err = l.retrier.do(ctx, func(ctx context.Context) error {
		return l.generations.Activate(ctx, latest.Generation, at)
	})
	if err != nil {
		return models.Generation{}, fmt.Errorf("activate generation %d: %w", latest.Generation, err)
	}

	// Lookups move to the new partitions before the old ones are dropped.
	l.active.Store(latest.Generation)
	latest.Status = models.GenerationActive
	latest.ActivatedAt = &at

	if err = l.dropStalePartitions(ctx, latest.Generation); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "lifecycleService.activate").
			Int64("generation", latest.Generation).
			Msg("failed to drop stale partitions")
	}

	l.publish(latest.Generation, PhaseActivated)
	logger.FromContext(ctx).Info().
		Str("func", "lifecycleService.activate").
		Int64("generation", latest.Generation).
		Msg("generation activated")

	return latest, nil
}

// SkipWaiting activates an installed generation right away. Without one it
// returns the active generation unchanged.
func (l *lifecycleService) SkipWaiting(ctx context.Context) (models.Generation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	generation, err := l.activate(ctx)
	if !errors.Is(err, ErrNoInstalledGeneration) {
		return generation, err
	}

	return l.current(ctx)
}

// Restore loads the active generation after a restart and finishes any
// cleanup an interrupted activation left behind.
func (l *lifecycleService) Restore(ctx context.Context) (models.Generation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	generation, err := l.current(ctx)
	if err != nil {
		return models.Generation{}, err
	}

	l.active.Store(generation.Generation)

	// A fully installed generation waiting for activation keeps its
	// partitions: Install treats it as done and Activate switches to it.
	keep := []int64{generation.Generation}
	latest, found, err := l.latest(ctx)
	if err != nil {
		return models.Generation{}, err
	}
	if found && latest.Status == models.GenerationInstalled {
		keep = append(keep, latest.Generation)
	}

	if err = l.dropStalePartitions(ctx, keep...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "lifecycleService.Restore").
			Msg("failed to drop stale partitions")
	}

	return generation, nil
}

// RefreshData re-fetches the API precache URLs into the active api
// partition. Every URL is tried; failures are joined.
func (l *lifecycleService) RefreshData(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	generation := l.active.Load()
	if generation == 0 {
		return ErrNoActiveGeneration
	}

	partition := models.PartitionName(models.BucketAPI, generation)
	var errs []error
	for _, u := range l.manifest.APIURLs {
		if err := l.fetchInto(ctx, partition, u); err != nil {
			if errors.Is(err, adapter.ErrNetworkUnavailable) {
				return fmt.Errorf("refresh %s: %w", u, err)
			}
			errs = append(errs, fmt.Errorf("refresh %s: %w", u, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	l.publish(generation, PhaseRefreshed)
	return nil
}

// CacheEntity stores a product or customer pushed by the UI so it can be
// served while offline.
func (l *lifecycleService) CacheEntity(ctx context.Context, entity models.CacheEntityPayload) error {
	var prefix string
	switch strings.ToLower(entity.Entity) {
	case "product":
		prefix = ProductEntityPath
	case "customer":
		prefix = CustomerEntityPath
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEntity, entity.Entity)
	}

	id := strings.TrimSpace(entity.ID)
	if id == "" || strings.Contains(id, "/") {
		return fmt.Errorf("%w: entity id %q", ErrInvalidPayload, entity.ID)
	}
	if len(entity.Data) == 0 || !json.Valid(entity.Data) {
		return fmt.Errorf("%w: entity data must be JSON", ErrInvalidPayload)
	}

	url := prefix + id
	header := http.Header{}
	header.Set("Content-Type", "application/json")

	return l.cache.Put(ctx, models.BucketAPI, models.CacheKey(http.MethodGet, url), models.CacheEntry{
		Method:  http.MethodGet,
		URL:     url,
		Status:  http.StatusOK,
		Headers: header,
		Body:    entity.Data,
	})
}

func (l *lifecycleService) current(ctx context.Context) (models.Generation, error) {
	var generation models.Generation
	err := l.retrier.do(ctx, func(ctx context.Context) error {
		var err error
		generation, err = l.generations.Active(ctx)
		return err
	})
	if errors.Is(err, store.ErrGenerationNotFound) {
		return models.Generation{}, ErrNoActiveGeneration
	}
	if err != nil {
		return models.Generation{}, fmt.Errorf("load active generation: %w", err)
	}

	return generation, nil
}

func (l *lifecycleService) latest(ctx context.Context) (models.Generation, bool, error) {
	var generation models.Generation
	err := l.retrier.do(ctx, func(ctx context.Context) error {
		var err error
		generation, err = l.generations.Latest(ctx)
		return err
	})
	if errors.Is(err, store.ErrGenerationNotFound) {
		return models.Generation{}, false, nil
	}
	if err != nil {
		return models.Generation{}, false, fmt.Errorf("load latest generation: %w", err)
	}

	return generation, true, nil
}

// dropStalePartitions deletes every partition not owned by one of keep.
func (l *lifecycleService) dropStalePartitions(ctx context.Context, keep ...int64) error {
	partitions, err := l.cache.ListPartitions(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, name := range partitions {
		_, generation, err := models.ParsePartitionName(name)
		if err == nil && slices.Contains(keep, generation) {
			continue
		}
		if err = l.cache.DeletePartition(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (l *lifecycleService) publish(generation int64, phase string) {
	if l.publisher != nil {
		l.publisher.Publish(models.EventLifecycle, LifecycleEvent{Generation: generation, Phase: phase})
	}
}
