// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package events fans outbound gateway events out to every attached UI
// context.
package events

import (
	"sync"
	"time"

	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/models"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 64

// Publisher is the write side of the bus used by services.
type Publisher interface {
	Publish(eventType models.EventType, data any)
}

// Bus is an in-process pub/sub. Publish never blocks: a subscriber whose
// buffer is full misses the event.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]chan models.Event
	nextID uint64
	buffer int
	now    func() time.Time
	logger *logger.Logger
}

// NewBus returns an empty bus with [DefaultBuffer] sized subscriptions.
func NewBus(log *logger.Logger) *Bus {
	return &Bus{
		subs:   make(map[uint64]chan models.Event),
		buffer: DefaultBuffer,
		now:    time.Now,
		logger: log,
	}
}

// Subscription is a single attached receiver.
type Subscription struct {
	id  uint64
	ch  chan models.Event
	bus *Bus
}

// Events returns the receive channel. It is closed by [Subscription.Close].
func (s *Subscription) Events() <-chan models.Event {
	return s.ch
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.bus.unsubscribe(s.id)
}

// Subscribe attaches a new receiver.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{id: b.nextID, ch: make(chan models.Event, b.buffer), bus: b}
	b.subs[sub.id] = sub.ch

	return sub
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Subscribers returns the number of attached receivers.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers an event to every subscriber.
func (b *Bus) Publish(eventType models.EventType, data any) {
	event := models.Event{Type: eventType, Data: data, At: b.now().UTC()}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.logger.Warn().
				Str("func", "Bus.Publish").
				Uint64("subscriber", id).
				Str("event", string(eventType)).
				Msg("subscriber buffer full, event dropped")
		}
	}
}

// Close detaches every subscriber.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
