package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pos-offline/internal/events"
	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/models"
)

func TestNewServices_Validation(t *testing.T) {
	cfg := newTestGatewayConfig()
	cfg.Queue.ValidatePayload = true
	cfg.Queue.ValidationRule = "payload.total_amount >"

	_, err := NewServices(newTestStorages(t), newFakeUpstream(), events.NewBus(logger.Nop()), cfg, logger.Nop())
	assert.Error(t, err)

	cfg.Queue.ValidationRule = "payload.total_amount > 0"
	s, err := NewServices(newTestStorages(t), newFakeUpstream(), events.NewBus(logger.Nop()), cfg, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &QueueValidationService{}, s.QueueService)

	cfg.App.Version = ""
	_, err = NewServices(newTestStorages(t), newFakeUpstream(), events.NewBus(logger.Nop()), cfg, logger.Nop())
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestBootstrap(t *testing.T) {
	upstream := newFakeUpstream()
	s := newTestServices(t, upstream)
	ctx := context.Background()

	require.NoError(t, s.Bootstrap(ctx))
	assert.Equal(t, int64(1), s.LifecycleService.Active())

	// A restart with the same manifest keeps generation 1.
	require.NoError(t, s.Bootstrap(ctx))
	assert.Equal(t, int64(1), s.LifecycleService.Active())
}

func TestBootstrap_OfflineFirstStart(t *testing.T) {
	upstream := newFakeUpstream()
	upstream.setOffline(true)
	s := newTestServices(t, upstream)
	ctx := context.Background()

	require.NoError(t, s.Bootstrap(ctx))
	assert.Zero(t, s.LifecycleService.Active())

	// Reconnecting installs the generation the boot could not.
	upstream.setHandler(func(req models.Request) (models.Response, error) {
		return okJSON(`{"url":"` + req.URL + `"}`), nil
	})
	upstream.setOffline(false)
	require.True(t, s.ConnectivityService.Probe(ctx))
	require.Eventually(t, func() bool {
		return s.LifecycleService.Active() != 0
	}, 5*time.Second, 10*time.Millisecond)

	// Network fetches are mirrored from then on and served while offline.
	categories := models.Request{Method: http.MethodGet, URL: "/api/v1/pos/categories", Header: http.Header{}}
	result, err := s.Dispatcher.Dispatch(ctx, Event{Kind: EventFetch, Request: categories})
	require.NoError(t, err)
	assert.Equal(t, models.SourceNetwork, result.Response.Source)

	upstream.setOffline(true)
	result, err = s.Dispatcher.Dispatch(ctx, Event{Kind: EventFetch, Request: categories})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.Response.Status)
	assert.Equal(t, models.SourceCache, result.Response.Source)
	assert.JSONEq(t, `{"url":"/api/v1/pos/categories"}`, string(result.Response.Body))
}

// A cash sale rung up while the server is down is confirmed to the cashier,
// survives in the queue and reaches the server once it is back.
func TestScenario_OfflineSaleSyncsAfterReconnect(t *testing.T) {
	upstream := newFakeUpstream()
	s := newTestServices(t, upstream)
	ctx := context.Background()
	require.NoError(t, s.Bootstrap(ctx))

	sub := s.Bus.Subscribe()
	defer sub.Close()

	upstream.setOffline(true)
	result, err := s.Dispatcher.Dispatch(ctx, Event{Kind: EventFetch, Request: saleRequest()})
	require.NoError(t, err)

	resp := result.Response
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "true", resp.Header.Get(HeaderOffline))

	var accepted OfflineAccepted
	require.NoError(t, json.Unmarshal(resp.Body, &accepted))
	assert.InDelta(t, 42.5, accepted.ReceiptData.Total, 0.001)
	assert.False(t, s.ConnectivityService.Online())

	status, err := s.StatusService.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.Queue.Unsynced)

	var replayed []models.Request
	upstream.setHandler(func(req models.Request) (models.Response, error) {
		if req.Method == http.MethodPost {
			replayed = append(replayed, req)
			return jsonStatus(http.StatusCreated, `{"id":9001}`), nil
		}
		return okJSON(`{}`), nil
	})
	upstream.setOffline(false)
	assert.True(t, s.ConnectivityService.Probe(ctx))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case e := <-sub.Events():
			if e.Type != models.EventSyncCompleted {
				continue
			}
			data := e.Data.(models.SyncCompleted)
			assert.Equal(t, accepted.QueuedID, data.ID)
			assert.Equal(t, models.SyncOutcomeSynced, data.Outcome)

			unsynced, err := s.QueueService.ListUnsynced(ctx)
			require.NoError(t, err)
			assert.Empty(t, unsynced)

			write, err := s.QueueService.Get(ctx, accepted.QueuedID)
			require.NoError(t, err)
			assert.True(t, write.Synced)

			require.Len(t, replayed, 1)
			assert.Equal(t, write.IdempotencyKey, replayed[0].Header.Get(IdempotencyKeyHeader))
			assert.JSONEq(t, string(saleRequest().Body), string(replayed[0].Body))
			return
		case <-deadline:
			t.Fatal("queued sale was not synced after reconnect")
		}
	}
}
