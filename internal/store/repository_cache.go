package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/models"
)

type cacheRepository struct {
	*DB
	logger *logger.Logger
}

// NewCacheRepository constructs a [CacheRepository] over db.
func NewCacheRepository(db *DB, logger *logger.Logger) CacheRepository {
	return &cacheRepository{
		DB:     db,
		logger: logger,
	}
}

func (c *cacheRepository) Get(ctx context.Context, partition, key string) (models.CacheEntry, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetCacheEntryQuery(c.builder(), partition, key)
	if err != nil {
		return models.CacheEntry{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		entry   models.CacheEntry
		headers string
	)
	err = c.DB.QueryRowContext(ctx, query, args...).Scan(
		&entry.Partition,
		&entry.Key,
		&entry.Method,
		&entry.URL,
		&entry.Status,
		&headers,
		&entry.Body,
		&entry.Digest,
		&entry.StoredAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CacheEntry{}, ErrCacheEntryNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "cacheRepository.Get").
			Str("partition", partition).
			Str("key", key).
			Msg("failed to read cache entry")
		return models.CacheEntry{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if entry.Headers, err = decodeHeaders(headers); err != nil {
		return models.CacheEntry{}, err
	}

	return entry, nil
}

// Put upserts entry into entry.Partition.
func (c *cacheRepository) Put(ctx context.Context, entry models.CacheEntry) error {
	log := logger.FromContext(ctx)

	query, args, err := buildPutCacheEntryQuery(c.builder(), entry)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = c.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "cacheRepository.Put").
			Str("partition", entry.Partition).
			Str("key", entry.Key).
			Msg("failed to upsert cache entry")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// DeletePartition removes every entry of partition and returns how many
// were removed.
func (c *cacheRepository) DeletePartition(ctx context.Context, partition string) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildDeletePartitionQuery(c.builder(), partition)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := c.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "cacheRepository.DeletePartition").Str("partition", partition).Msg("failed to delete partition")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return result.RowsAffected()
}

// ListPartitions returns the names of all non-empty partitions.
func (c *cacheRepository) ListPartitions(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListPartitionsQuery(c.builder())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "cacheRepository.ListPartitions").Msg("failed to list partitions")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	partitions := make([]string, 0, len(models.Buckets))
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		partitions = append(partitions, name)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return partitions, nil
}
