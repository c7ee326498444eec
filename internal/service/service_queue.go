package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/internal/store"
	"github.com/MKhiriev/go-pos-offline/internal/utils"
	"github.com/MKhiriev/go-pos-offline/models"
)

// IdempotencyKeyHeader is forwarded with every replayed write.
const IdempotencyKeyHeader = "Idempotency-Key"

// maxLastErrorLen bounds the error text stored with a failed attempt.
const maxLastErrorLen = 1024

type idGenerator interface {
	Generate() string
}

type queueService struct {
	queueRepository store.QueueRepository
	retrier         storageRetrier
	ids             idGenerator
	now             func() time.Time

	logger *logger.Logger
}

// NewQueueService constructs the durable [QueueService].
func NewQueueService(queueRepository store.QueueRepository, classifier store.ErrorClassificator, logger *logger.Logger) QueueService {
	return &queueService{
		queueRepository: queueRepository,
		retrier:         newStorageRetrier(classifier),
		ids:             utils.NewUUIDGenerator(),
		now:             time.Now,
		logger:          logger,
	}
}

// newQueuedWrite builds the row persisted for req. A missing idempotency
// key is generated so replays can be deduplicated upstream.
func newQueuedWrite(kind models.WriteKind, req models.Request, ids idGenerator, now time.Time) models.QueuedWrite {
	headers := utils.EndToEndHeaders(req.Header, "Content-Length", "Host", "Accept-Encoding")

	key := strings.TrimSpace(headers.Get(IdempotencyKeyHeader))
	if key == "" {
		key = ids.Generate()
	}
	headers.Set(IdempotencyKeyHeader, key)

	return models.QueuedWrite{
		Kind:           kind,
		Method:         strings.ToUpper(req.Method),
		Path:           req.URL,
		Headers:        headers,
		Payload:        req.Body,
		IdempotencyKey: key,
		CreatedAt:      now.UTC(),
	}
}

// Enqueue returns once the write is committed.
func (q *queueService) Enqueue(ctx context.Context, kind models.WriteKind, req models.Request) (models.QueuedWrite, error) {
	write := newQueuedWrite(kind, req, q.ids, q.now())

	err := q.retrier.do(ctx, func(ctx context.Context) error {
		var err error
		write.ID, err = q.queueRepository.Enqueue(ctx, write)
		return err
	})
	if errors.Is(err, store.ErrDuplicateIdempotencyKey) {
		return models.QueuedWrite{}, fmt.Errorf("%w: %s", ErrAlreadyQueued, write.IdempotencyKey)
	}
	if err != nil {
		return models.QueuedWrite{}, fmt.Errorf("enqueue %s %s: %w", write.Method, write.Path, err)
	}

	logger.FromContext(ctx).Info().
		Str("func", "queueService.Enqueue").
		Int64("id", write.ID).
		Str("kind", string(kind)).
		Str("path", write.Path).
		Msg("write queued")

	return write, nil
}

func (q *queueService) ListUnsynced(ctx context.Context) ([]models.QueuedWrite, error) {
	var writes []models.QueuedWrite
	err := q.retrier.do(ctx, func(ctx context.Context) error {
		var err error
		writes, err = q.queueRepository.ListUnsynced(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list unsynced: %w", err)
	}

	return writes, nil
}

// MarkSynced is idempotent: marking an already synced write is a no-op.
func (q *queueService) MarkSynced(ctx context.Context, id int64) error {
	var changed bool
	err := q.retrier.do(ctx, func(ctx context.Context) error {
		var err error
		changed, err = q.queueRepository.MarkSynced(ctx, id, q.now().UTC())
		return err
	})
	if err != nil {
		return fmt.Errorf("mark %d synced: %w", id, err)
	}

	if !changed {
		logger.FromContext(ctx).Debug().
			Str("func", "queueService.MarkSynced").
			Int64("id", id).
			Msg("write already synced")
	}

	return nil
}

func (q *queueService) RecordAttempt(ctx context.Context, id int64, cause error) error {
	lastError := ""
	if cause != nil {
		lastError = cause.Error()
	}
	if len(lastError) > maxLastErrorLen {
		lastError = lastError[:maxLastErrorLen]
	}

	err := q.retrier.do(ctx, func(ctx context.Context) error {
		return q.queueRepository.RecordAttempt(ctx, id, lastError)
	})
	if err != nil {
		return fmt.Errorf("record attempt of %d: %w", id, err)
	}

	return nil
}

func (q *queueService) Get(ctx context.Context, id int64) (models.QueuedWrite, error) {
	var write models.QueuedWrite
	err := q.retrier.do(ctx, func(ctx context.Context) error {
		var err error
		write, err = q.queueRepository.Get(ctx, id)
		return err
	})
	if err != nil {
		return models.QueuedWrite{}, fmt.Errorf("get queued write %d: %w", id, err)
	}

	return write, nil
}

func (q *queueService) List(ctx context.Context, filter models.QueueFilter) ([]models.QueuedWrite, error) {
	var writes []models.QueuedWrite
	err := q.retrier.do(ctx, func(ctx context.Context) error {
		var err error
		writes, err = q.queueRepository.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list queued writes: %w", err)
	}

	return writes, nil
}

func (q *queueService) Stats(ctx context.Context) (models.QueueStats, error) {
	var stats models.QueueStats
	err := q.retrier.do(ctx, func(ctx context.Context) error {
		var err error
		stats, err = q.queueRepository.Stats(ctx)
		return err
	})
	if err != nil {
		return models.QueueStats{}, fmt.Errorf("queue stats: %w", err)
	}

	return stats, nil
}
