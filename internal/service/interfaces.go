package service

import (
	"context"

	"github.com/MKhiriev/go-pos-offline/models"
)

// CacheService reads and writes cached responses through the active
// generation.
type CacheService interface {
	// Get looks key up in the active partition of bucket.
	Get(ctx context.Context, bucket models.Bucket, key string) (models.CacheEntry, error)
	// Match looks key up in every active partition, static first.
	Match(ctx context.Context, key string) (models.CacheEntry, error)
	// Put stores entry under key in the active partition of bucket.
	Put(ctx context.Context, bucket models.Bucket, key string, entry models.CacheEntry) error
	// PutPartition stores entry in an explicitly named partition.
	PutPartition(ctx context.Context, partition, key string, entry models.CacheEntry) error
	DeletePartition(ctx context.Context, partition string) error
	ListPartitions(ctx context.Context) ([]string, error)
}

// QueueService is the durable write queue.
type QueueService interface {
	Enqueue(ctx context.Context, kind models.WriteKind, req models.Request) (models.QueuedWrite, error)
	ListUnsynced(ctx context.Context) ([]models.QueuedWrite, error)
	MarkSynced(ctx context.Context, id int64) error
	RecordAttempt(ctx context.Context, id int64, cause error) error
	Get(ctx context.Context, id int64) (models.QueuedWrite, error)
	List(ctx context.Context, filter models.QueueFilter) ([]models.QueuedWrite, error)
	Stats(ctx context.Context) (models.QueueStats, error)
}

// QueueServiceWrapper decorates a QueueService, e.g. with payload
// validation.
type QueueServiceWrapper interface {
	Wrap(QueueService) QueueService
}

// RouterService resolves an intercepted request to a response.
type RouterService interface {
	Route(ctx context.Context, req models.Request) (models.Response, error)
}

// SyncService replays queued writes.
type SyncService interface {
	// Sync runs one reconciliation pass. It returns ErrSyncInProgress when
	// another pass is running.
	Sync(ctx context.Context) (models.SyncReport, error)
	State() models.SyncState
}

// LifecycleService manages cache generations.
type LifecycleService interface {
	Install(ctx context.Context, manifest models.Manifest) (models.Generation, error)
	Activate(ctx context.Context) (models.Generation, error)
	SkipWaiting(ctx context.Context) (models.Generation, error)
	Restore(ctx context.Context) (models.Generation, error)
	RefreshData(ctx context.Context) error
	CacheEntity(ctx context.Context, entity models.CacheEntityPayload) error
	Active() int64
}

// NotificationService turns server pushes into notification intents.
type NotificationService interface {
	Push(ctx context.Context, event models.PushEvent) (models.NotificationIntent, error)
	Act(ctx context.Context, intentID string, action models.NotificationAction) error
	Pending() []models.NotificationIntent
}

// ConnectivityService tracks upstream reachability.
type ConnectivityService interface {
	// Probe checks upstream and reports the observed state. A transition
	// from offline to online triggers a sync pass.
	Probe(ctx context.Context) bool
	// ReportOffline marks upstream unreachable after a failed request.
	ReportOffline(ctx context.Context)
	// ReportOnline marks upstream reachable after a successful request.
	ReportOnline(ctx context.Context)
	Online() bool
	// Watch registers fn to be called synchronously on every state
	// change.
	Watch(fn func(ctx context.Context, online bool))
}

// AppInfoService reports build information.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// StatusService assembles the operator status view.
type StatusService interface {
	Status(ctx context.Context) (models.GatewayStatus, error)
}
