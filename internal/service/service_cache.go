package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/internal/store"
	"github.com/MKhiriev/go-pos-offline/internal/utils"
	"github.com/MKhiriev/go-pos-offline/models"
)

type cacheService struct {
	cacheRepository store.CacheRepository
	active          *ActiveGeneration
	retrier         storageRetrier
	now             func() time.Time

	logger *logger.Logger
}

// NewCacheService constructs a [CacheService] resolving buckets through
// active.
func NewCacheService(cacheRepository store.CacheRepository, classifier store.ErrorClassificator, active *ActiveGeneration, logger *logger.Logger) CacheService {
	return &cacheService{
		cacheRepository: cacheRepository,
		active:          active,
		retrier:         newStorageRetrier(classifier),
		now:             time.Now,
		logger:          logger,
	}
}

func (c *cacheService) Get(ctx context.Context, bucket models.Bucket, key string) (models.CacheEntry, error) {
	generation := c.active.Load()
	if generation == 0 {
		return models.CacheEntry{}, ErrCacheMiss
	}

	return c.get(ctx, models.PartitionName(bucket, generation), key)
}

func (c *cacheService) Match(ctx context.Context, key string) (models.CacheEntry, error) {
	for _, bucket := range models.Buckets {
		entry, err := c.Get(ctx, bucket, key)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			return models.CacheEntry{}, err
		}
	}

	return models.CacheEntry{}, ErrCacheMiss
}

func (c *cacheService) get(ctx context.Context, partition, key string) (models.CacheEntry, error) {
	var entry models.CacheEntry
	err := c.retrier.do(ctx, func(ctx context.Context) error {
		var err error
		entry, err = c.cacheRepository.Get(ctx, partition, key)
		return err
	})
	if errors.Is(err, store.ErrCacheEntryNotFound) {
		return models.CacheEntry{}, ErrCacheMiss
	}
	if err != nil {
		return models.CacheEntry{}, fmt.Errorf("get %q from %s: %w", key, partition, err)
	}

	if !utils.VerifyDigest(entry.Body, entry.Digest) {
		logger.FromContext(ctx).Error().
			Str("func", "cacheService.get").
			Str("partition", partition).
			Str("key", key).
			Msg("cached body does not match its digest")
		return models.CacheEntry{}, fmt.Errorf("%w: %w: %s in %s", ErrStorageFailure, ErrDigestMismatch, key, partition)
	}

	return entry, nil
}

func (c *cacheService) Put(ctx context.Context, bucket models.Bucket, key string, entry models.CacheEntry) error {
	generation, release := c.active.Pin()
	defer release()
	if generation == 0 {
		return ErrNoActiveGeneration
	}

	return c.PutPartition(ctx, models.PartitionName(bucket, generation), key, entry)
}

func (c *cacheService) PutPartition(ctx context.Context, partition, key string, entry models.CacheEntry) error {
	entry.Key = key
	entry.Partition = partition
	entry.Digest = utils.Digest(entry.Body)
	if entry.StoredAt.IsZero() {
		entry.StoredAt = c.now().UTC()
	}

	err := c.retrier.do(ctx, func(ctx context.Context) error {
		return c.cacheRepository.Put(ctx, entry)
	})
	if err != nil {
		return fmt.Errorf("put %q into %s: %w", key, partition, err)
	}

	return nil
}

func (c *cacheService) DeletePartition(ctx context.Context, partition string) error {
	var deleted int64
	err := c.retrier.do(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = c.cacheRepository.DeletePartition(ctx, partition)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete partition %s: %w", partition, err)
	}

	logger.FromContext(ctx).Debug().
		Str("func", "cacheService.DeletePartition").
		Str("partition", partition).
		Int64("deleted", deleted).
		Msg("partition deleted")

	return nil
}

func (c *cacheService) ListPartitions(ctx context.Context) ([]string, error) {
	var partitions []string
	err := c.retrier.do(ctx, func(ctx context.Context) error {
		var err error
		partitions, err = c.cacheRepository.ListPartitions(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}

	return partitions, nil
}

// entryFromResponse builds the cache entry mirroring a network response.
func entryFromResponse(req models.Request, resp models.Response) models.CacheEntry {
	return models.CacheEntry{
		Method:  req.Method,
		URL:     req.URL,
		Status:  resp.Status,
		Headers: resp.Header.Clone(),
		Body:    resp.Body,
	}
}

// responseFromEntry rebuilds a response from a cached entry.
func responseFromEntry(entry models.CacheEntry) models.Response {
	header := entry.Headers.Clone()
	if header == nil {
		header = http.Header{}
	}
	return models.Response{
		Status: entry.Status,
		Header: header,
		Body:   entry.Body,
		Source: models.SourceCache,
	}
}
