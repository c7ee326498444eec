package service

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/MKhiriev/go-pos-offline/internal/adapter"
	"github.com/MKhiriev/go-pos-offline/internal/events"
	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/models"
)

const (
	stateUnknown int32 = iota
	stateOnline
	stateOffline
)

// ConnectivityEvent is the payload of [models.EventConnectivity].
type ConnectivityEvent struct {
	Online bool `json:"online"`
}

type connectivityService struct {
	upstream  adapter.UpstreamAdapter
	publisher events.Publisher

	state atomic.Int32

	mu       sync.RWMutex
	watchers []func(ctx context.Context, online bool)

	logger *logger.Logger
}

// NewConnectivityService constructs a [ConnectivityService]. The state is
// unknown until the first probe or report.
func NewConnectivityService(upstream adapter.UpstreamAdapter, publisher events.Publisher, logger *logger.Logger) ConnectivityService {
	return &connectivityService{
		upstream:  upstream,
		publisher: publisher,
		logger:    logger,
	}
}

func (c *connectivityService) Probe(ctx context.Context) bool {
	online := c.upstream.Ping(ctx) == nil
	if ctx.Err() != nil {
		return c.Online()
	}

	c.set(ctx, online)
	return online
}

func (c *connectivityService) ReportOffline(ctx context.Context) {
	c.set(ctx, false)
}

func (c *connectivityService) ReportOnline(ctx context.Context) {
	c.set(ctx, true)
}

func (c *connectivityService) Online() bool {
	return c.state.Load() == stateOnline
}

func (c *connectivityService) Watch(fn func(ctx context.Context, online bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchers = append(c.watchers, fn)
}

// set records the state and notifies on transitions only.
func (c *connectivityService) set(ctx context.Context, online bool) {
	next := stateOffline
	if online {
		next = stateOnline
	}
	if prev := c.state.Swap(next); prev == next {
		return
	}

	logger.FromContext(ctx).Info().
		Str("func", "connectivityService.set").
		Bool("online", online).
		Msg("connectivity changed")

	if c.publisher != nil {
		c.publisher.Publish(models.EventConnectivity, ConnectivityEvent{Online: online})
	}

	c.mu.RLock()
	watchers := slices.Clone(c.watchers)
	c.mu.RUnlock()

	for _, fn := range watchers {
		fn(ctx, online)
	}
}
