package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pos-offline/internal/adapter"
	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/internal/store"
	"github.com/MKhiriev/go-pos-offline/models"
)

// ─────────────────────────────────────────────
// storage
// ─────────────────────────────────────────────

func newTestStorages(t *testing.T) *store.Storages {
	t.Helper()

	storages, err := store.NewStorages(context.Background(), ":memory:", logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storages.Close() })

	return storages
}

// ─────────────────────────────────────────────
// upstream stub
// ─────────────────────────────────────────────

// fakeUpstream answers from handler, or fails with ErrNetworkUnavailable
// while offline.
type fakeUpstream struct {
	mu       sync.Mutex
	offline  bool
	handler  func(req models.Request) (models.Response, error)
	requests []models.Request
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{}
}

func (f *fakeUpstream) setOffline(offline bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = offline
}

func (f *fakeUpstream) setHandler(fn func(req models.Request) (models.Response, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = fn
}

func (f *fakeUpstream) received() []models.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Request(nil), f.requests...)
}

func (f *fakeUpstream) Do(ctx context.Context, req models.Request) (models.Response, error) {
	if err := ctx.Err(); err != nil {
		return models.Response{}, err
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	offline, handler := f.offline, f.handler
	f.mu.Unlock()

	if offline {
		return models.Response{}, fmt.Errorf("%w: dial tcp 127.0.0.1:8080: connection refused", adapter.ErrNetworkUnavailable)
	}
	if handler != nil {
		return handler(req)
	}

	return okJSON(`{"ok":true}`), nil
}

func (f *fakeUpstream) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return adapter.ErrNetworkUnavailable
	}
	return nil
}

func okJSON(body string) models.Response {
	return jsonStatus(http.StatusOK, body)
}

func jsonStatus(status int, body string) models.Response {
	return models.Response{
		Status: status,
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   []byte(body),
		Source: models.SourceNetwork,
	}
}

// ─────────────────────────────────────────────
// publisher stub
// ─────────────────────────────────────────────

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (p *recordingPublisher) Publish(eventType models.EventType, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, models.Event{Type: eventType, Data: data})
}

func (p *recordingPublisher) ofType(eventType models.EventType) []models.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []models.Event
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// ─────────────────────────────────────────────
// misc
// ─────────────────────────────────────────────

type sequenceIDs struct {
	mu   sync.Mutex
	next int
}

func (s *sequenceIDs) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("id-%d", s.next)
}

func fastRetrier(classifier store.ErrorClassificator) storageRetrier {
	r := newStorageRetrier(classifier)
	r.base = 1
	return r
}

// stubQueue is a QueueService whose Enqueue result is fixed.
type stubQueue struct {
	QueueService

	mu         sync.Mutex
	enqueueErr error
	enqueued   int
}

func (s *stubQueue) Enqueue(_ context.Context, kind models.WriteKind, req models.Request) (models.QueuedWrite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enqueueErr != nil {
		return models.QueuedWrite{}, s.enqueueErr
	}
	s.enqueued++
	return models.QueuedWrite{ID: int64(s.enqueued), Kind: kind, Method: req.Method, Path: req.URL, Payload: req.Body}, nil
}
