// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/models"
)

type syncFixture struct {
	sync      *syncService
	queue     QueueService
	upstream  *fakeUpstream
	publisher *recordingPublisher
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	storages := newTestStorages(t)
	queue := NewQueueService(storages.QueueRepository, storages.ErrorClassificator, logger.Nop())
	upstream := newFakeUpstream()
	publisher := &recordingPublisher{}

	return &syncFixture{
		sync:      NewSyncService(queue, upstream, publisher, logger.Nop()).(*syncService),
		queue:     queue,
		upstream:  upstream,
		publisher: publisher,
	}
}

func (f *syncFixture) enqueue(t *testing.T, n int) []models.QueuedWrite {
	t.Helper()

	writes := make([]models.QueuedWrite, 0, n)
	for range n {
		w, err := f.queue.Enqueue(context.Background(), models.WriteKindTransaction, saleRequest())
		require.NoError(t, err)
		writes = append(writes, w)
	}
	return writes
}

func TestSyncService_DrainsQueueInOrder(t *testing.T) {
	f := newSyncFixture(t)
	writes := f.enqueue(t, 3)

	report, err := f.sync.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 3, report.Synced)
	assert.Zero(t, report.Remaining)
	assert.Zero(t, report.StoppedAt)

	sent := f.upstream.received()
	require.Len(t, sent, 3)
	for i, req := range sent {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/api/v1/pos/transactions", req.URL)
		assert.Equal(t, writes[i].IdempotencyKey, req.Header.Get(IdempotencyKeyHeader))
		assert.Equal(t, "Bearer t0k3n", req.Header.Get("Authorization"))
	}

	unsynced, err := f.queue.ListUnsynced(context.Background())
	require.NoError(t, err)
	assert.Empty(t, unsynced)

	events := f.publisher.ofType(models.EventSyncCompleted)
	require.Len(t, events, 3)
	for i, e := range events {
		data := e.Data.(models.SyncCompleted)
		assert.Equal(t, writes[i].ID, data.ID)
		assert.Equal(t, models.SyncOutcomeSynced, data.Outcome)
	}
}

func TestSyncService_StopsAtFirstFailure(t *testing.T) {
	f := newSyncFixture(t)
	writes := f.enqueue(t, 3)

	calls := 0
	f.upstream.setHandler(func(req models.Request) (models.Response, error) {
		calls++
		if calls == 2 {
			return jsonStatus(http.StatusInternalServerError, `{"error":"db locked"}`), nil
		}
		return jsonStatus(http.StatusCreated, `{}`), nil
	})

	report, err := f.sync.Sync(context.Background())
	require.NoError(t, err, "a halted pass is reported, not returned as an error")
	assert.Equal(t, 2, report.Attempted)
	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, 2, report.Remaining)
	assert.Equal(t, writes[1].ID, report.StoppedAt)
	assert.NotEmpty(t, report.Error)
	assert.Len(t, f.upstream.received(), 2, "later writes are not attempted out of order")

	failed, err := f.queue.Get(context.Background(), writes[1].ID)
	require.NoError(t, err)
	assert.False(t, failed.Synced)
	assert.Equal(t, 1, failed.Attempts)
	assert.Contains(t, failed.LastError, "db locked")

	events := f.publisher.ofType(models.EventSyncCompleted)
	require.Len(t, events, 2)
	assert.Equal(t, models.SyncOutcomeFailed, events[1].Data.(models.SyncCompleted).Outcome)

	// Next pass resumes at the failed write.
	f.upstream.setHandler(nil)
	report, err = f.sync.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Synced)
	assert.Zero(t, report.Remaining)

	sent := f.upstream.received()
	require.Len(t, sent, 4)
	assert.Equal(t, writes[1].IdempotencyKey, sent[2].Header.Get(IdempotencyKeyHeader))
	assert.Equal(t, writes[2].IdempotencyKey, sent[3].Header.Get(IdempotencyKeyHeader))
}

func TestSyncService_OfflineLeavesQueueIntact(t *testing.T) {
	f := newSyncFixture(t)
	f.enqueue(t, 2)
	f.upstream.setOffline(true)

	report, err := f.sync.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Synced)
	assert.Equal(t, 2, report.Remaining)

	unsynced, err := f.queue.ListUnsynced(context.Background())
	require.NoError(t, err)
	assert.Len(t, unsynced, 2)
}

func TestSyncService_EmptyQueue(t *testing.T) {
	f := newSyncFixture(t)

	report, err := f.sync.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Attempted)
	assert.Empty(t, f.publisher.ofType(models.EventSyncCompleted))

	state := f.sync.State()
	assert.False(t, state.Running)
	require.NotNil(t, state.LastReport)
}

func TestSyncService_SinglePassAtATime(t *testing.T) {
	f := newSyncFixture(t)
	f.enqueue(t, 1)

	started := make(chan struct{})
	release := make(chan struct{})
	f.upstream.setHandler(func(req models.Request) (models.Response, error) {
		close(started)
		<-release
		return jsonStatus(http.StatusCreated, `{}`), nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := f.sync.Sync(context.Background())
		done <- err
	}()

	<-started
	assert.True(t, f.sync.State().Running)

	_, err := f.sync.Sync(context.Background())
	assert.ErrorIs(t, err, ErrSyncInProgress)

	close(release)
	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sync pass did not finish")
	}
	assert.Len(t, f.upstream.received(), 1, "the write is replayed exactly once")
}

func TestSyncService_CancelledPassDoesNotCountAttempt(t *testing.T) {
	f := newSyncFixture(t)
	writes := f.enqueue(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	f.upstream.setHandler(func(req models.Request) (models.Response, error) {
		cancel()
		return models.Response{}, context.Canceled
	})

	report, err := f.sync.Sync(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, report.Remaining)

	stored, err := f.queue.Get(context.Background(), writes[0].ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Attempts)
}

func TestSyncService_ListFailureIsReturned(t *testing.T) {
	f := newSyncFixture(t)
	f.sync.queue = &failingQueue{err: errors.Join(ErrStorageFailure, errors.New("disk I/O error"))}

	report, err := f.sync.Sync(context.Background())
	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.NotEmpty(t, report.Error)
}

type failingQueue struct {
	QueueService
	err error
}

func (q *failingQueue) ListUnsynced(context.Context) ([]models.QueuedWrite, error) {
	return nil, q.err
}
