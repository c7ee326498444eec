package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-pos-offline/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// CacheRepository persists cached responses grouped in named partitions.
// Writes are upserts keyed by (partition, key) and never touch another
// partition.
type CacheRepository interface {
	Get(ctx context.Context, partition, key string) (models.CacheEntry, error)
	Put(ctx context.Context, entry models.CacheEntry) error
	DeletePartition(ctx context.Context, partition string) (int64, error)
	ListPartitions(ctx context.Context) ([]string, error)
}

// QueueRepository persists writes that could not reach the server. Rows
// are append-only apart from the sync bookkeeping columns.
type QueueRepository interface {
	Enqueue(ctx context.Context, write models.QueuedWrite) (int64, error)
	ListUnsynced(ctx context.Context) ([]models.QueuedWrite, error)
	MarkSynced(ctx context.Context, id int64, at time.Time) (bool, error)
	RecordAttempt(ctx context.Context, id int64, lastError string) error
	Get(ctx context.Context, id int64) (models.QueuedWrite, error)
	List(ctx context.Context, filter models.QueueFilter) ([]models.QueuedWrite, error)
	Stats(ctx context.Context) (models.QueueStats, error)
}

// GenerationRepository persists cache generations so the active one
// survives restarts.
type GenerationRepository interface {
	Create(ctx context.Context, generation models.Generation) error
	Get(ctx context.Context, generation int64) (models.Generation, error)
	Active(ctx context.Context) (models.Generation, error)
	Latest(ctx context.Context) (models.Generation, error)
	SetStatus(ctx context.Context, generation int64, status models.GenerationStatus) error
	Activate(ctx context.Context, generation int64, at time.Time) error
}

// ErrorClassificator decides whether a database error is transient.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
