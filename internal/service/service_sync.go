package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/MKhiriev/go-pos-offline/internal/adapter"
	"github.com/MKhiriev/go-pos-offline/internal/events"
	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/models"
)

type syncService struct {
	queue     QueueService
	upstream  adapter.UpstreamAdapter
	publisher events.Publisher

	// pass serializes reconciliation passes.
	pass sync.Mutex

	mu    sync.RWMutex
	state models.SyncState

	now func() time.Time

	logger *logger.Logger
}

// NewSyncService constructs the reconciler replaying queue through
// upstream.
func NewSyncService(queue QueueService, upstream adapter.UpstreamAdapter, publisher events.Publisher, logger *logger.Logger) SyncService {
	return &syncService{
		queue:     queue,
		upstream:  upstream,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

// Sync replays unsynced writes strictly in enqueue order and stops at the
// first write that fails.
func (s *syncService) Sync(ctx context.Context) (models.SyncReport, error) {
	if !s.pass.TryLock() {
		return models.SyncReport{}, ErrSyncInProgress
	}
	defer s.pass.Unlock()

	s.setRunning()
	report, err := s.run(ctx)
	s.finish(report)

	return report, err
}

func (s *syncService) run(ctx context.Context) (models.SyncReport, error) {
	log := logger.FromContext(ctx)
	report := models.SyncReport{StartedAt: s.now().UTC()}

	writes, err := s.queue.ListUnsynced(ctx)
	if err != nil {
		report.Error = err.Error()
		report.FinishedAt = s.now().UTC()
		return report, fmt.Errorf("sync pass: %w", err)
	}

	for i, write := range writes {
		if ctx.Err() != nil {
			report.Remaining = len(writes) - i
			report.Error = ctx.Err().Error()
			report.FinishedAt = s.now().UTC()
			return report, ctx.Err()
		}

		report.Attempted++
		replayErr := s.replay(ctx, write)
		if replayErr != nil {
			if ctx.Err() != nil {
				report.Attempted--
				report.Remaining = len(writes) - i
				report.Error = ctx.Err().Error()
				report.FinishedAt = s.now().UTC()
				return report, ctx.Err()
			}

			if err = s.queue.RecordAttempt(ctx, write.ID, replayErr); err != nil {
				log.Err(err).Str("func", "syncService.run").Int64("id", write.ID).Msg("failed to record sync attempt")
			}
			s.publish(write, models.SyncOutcomeFailed, replayErr)

			log.Warn().
				Err(replayErr).
				Str("func", "syncService.run").
				Int64("id", write.ID).
				Int("remaining", len(writes)-i).
				Msg("sync pass stopped")

			report.StoppedAt = write.ID
			report.Error = replayErr.Error()
			report.Remaining = len(writes) - i
			report.FinishedAt = s.now().UTC()
			return report, nil
		}

		if err = s.queue.MarkSynced(ctx, write.ID); err != nil {
			report.StoppedAt = write.ID
			report.Error = err.Error()
			report.Remaining = len(writes) - i
			report.FinishedAt = s.now().UTC()
			return report, fmt.Errorf("sync pass: %w", err)
		}

		report.Synced++
		s.publish(write, models.SyncOutcomeSynced, nil)
	}

	report.FinishedAt = s.now().UTC()
	if report.Attempted > 0 {
		log.Info().
			Str("func", "syncService.run").
			Int("synced", report.Synced).
			Msg("sync pass drained the queue")
	}

	return report, nil
}

// replay re-issues write. Any non-2xx answer counts as a failure.
func (s *syncService) replay(ctx context.Context, write models.QueuedWrite) error {
	header := write.Headers.Clone()
	if header == nil {
		header = http.Header{}
	}
	if write.IdempotencyKey != "" {
		header.Set(IdempotencyKeyHeader, write.IdempotencyKey)
	}

	resp, err := s.upstream.Do(ctx, models.Request{
		Method: write.Method,
		URL:    write.Path,
		Header: header,
		Body:   write.Payload,
	})
	if err != nil {
		return err
	}

	return adapter.CheckResponse(resp)
}

func (s *syncService) publish(write models.QueuedWrite, outcome models.SyncOutcome, cause error) {
	if s.publisher == nil {
		return
	}

	data := models.SyncCompleted{ID: write.ID, Kind: write.Kind, Outcome: outcome}
	if cause != nil {
		data.Error = cause.Error()
	}
	s.publisher.Publish(models.EventSyncCompleted, data)
}

func (s *syncService) setRunning() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Running = true
}

func (s *syncService) finish(report models.SyncReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Running = false
	s.state.LastReport = &report
}

func (s *syncService) State() models.SyncState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.state
	if state.LastReport != nil {
		report := *state.LastReport
		state.LastReport = &report
	}
	return state
}
