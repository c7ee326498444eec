package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-pos-offline/models"
)

// EventKind names an inbound event handled by the [EventDispatcher].
type EventKind string

const (
	EventFetch             EventKind = "fetch"
	EventInstall           EventKind = "install"
	EventActivate          EventKind = "activate"
	EventSync              EventKind = "sync"
	EventPeriodicSync      EventKind = "periodic-sync"
	EventOnline            EventKind = "online"
	EventPush              EventKind = "push"
	EventNotificationClick EventKind = "notification-click"
	EventMessage           EventKind = "message"
)

// Periodic sync tags.
const (
	TagDataRefresh = "pos-data-refresh"
	TagQueueSync   = "pos-queue-sync"
)

// Control message types. The upper-case names are accepted for older
// terminal builds.
const (
	MessageTriggerSync = "trigger-sync"
	MessageCacheEntity = "cache-entity"
	MessageSkipWaiting = "skip-waiting"

	legacySyncTransactions = "SYNC_TRANSACTIONS"
	legacyCacheProduct     = "CACHE_PRODUCT"
	legacyCacheCustomer    = "CACHE_CUSTOMER"
	legacySkipWaiting      = "SKIP_WAITING"
)

// Event is an inbound event. Only the fields of its kind are read.
type Event struct {
	Kind EventKind

	// Request is read by fetch.
	Request models.Request

	// Manifest is read by install; nil installs the configured manifest.
	Manifest *models.Manifest

	// Tag is read by periodic-sync.
	Tag string

	// Push is read by push.
	Push models.PushEvent

	// IntentID and Action are read by notification-click.
	IntentID string
	Action   models.NotificationAction

	// Message is read by message.
	Message models.ControlMessage
}

// Result carries whatever the handler produced.
type Result struct {
	Response   *models.Response
	Generation *models.Generation
	Report     *models.SyncReport
	Intent     *models.NotificationIntent
}

// HandlerFunc handles one event kind.
type HandlerFunc func(ctx context.Context, event Event) (Result, error)

// EventDispatcher is the single entry point for inbound events.
type EventDispatcher struct {
	handlers map[EventKind]HandlerFunc
}

// NewEventDispatcher registers the handlers of every event kind over s.
func NewEventDispatcher(s *Services) *EventDispatcher {
	d := &EventDispatcher{handlers: make(map[EventKind]HandlerFunc)}

	d.Handle(EventFetch, func(ctx context.Context, e Event) (Result, error) {
		resp, err := s.RouterService.Route(ctx, e.Request)
		if err != nil {
			return Result{}, err
		}
		return Result{Response: &resp}, nil
	})
	d.Handle(EventInstall, func(ctx context.Context, e Event) (Result, error) {
		manifest := s.Manifest
		if e.Manifest != nil {
			manifest = *e.Manifest
		}
		return generationResult(s.LifecycleService.Install(ctx, manifest))
	})
	d.Handle(EventActivate, func(ctx context.Context, _ Event) (Result, error) {
		return generationResult(s.LifecycleService.Activate(ctx))
	})
	d.Handle(EventSync, func(ctx context.Context, _ Event) (Result, error) {
		return reportResult(s.SyncService.Sync(ctx))
	})
	d.Handle(EventOnline, func(ctx context.Context, _ Event) (Result, error) {
		result, err := reportResult(s.SyncService.Sync(ctx))
		if errors.Is(err, ErrSyncInProgress) {
			result, err = Result{}, nil
		}
		if _, installErr := s.installIfInactive(ctx); installErr != nil {
			err = errors.Join(err, fmt.Errorf("install after reconnect: %w", installErr))
		}
		return result, err
	})
	d.Handle(EventPeriodicSync, func(ctx context.Context, e Event) (Result, error) {
		switch e.Tag {
		case TagDataRefresh:
			// A fresh install already fetched the data.
			installed, err := s.installIfInactive(ctx)
			if err != nil || installed {
				return Result{}, err
			}
			return Result{}, s.LifecycleService.RefreshData(ctx)
		case TagQueueSync:
			result, err := reportResult(s.SyncService.Sync(ctx))
			if errors.Is(err, ErrSyncInProgress) {
				return Result{}, nil
			}
			return result, err
		default:
			return Result{}, fmt.Errorf("%w: periodic sync tag %q", ErrUnknownEvent, e.Tag)
		}
	})
	d.Handle(EventPush, func(ctx context.Context, e Event) (Result, error) {
		intent, err := s.NotificationService.Push(ctx, e.Push)
		if err != nil {
			return Result{}, err
		}
		return Result{Intent: &intent}, nil
	})
	d.Handle(EventNotificationClick, func(ctx context.Context, e Event) (Result, error) {
		return Result{}, s.NotificationService.Act(ctx, e.IntentID, e.Action)
	})
	d.Handle(EventMessage, func(ctx context.Context, e Event) (Result, error) {
		return handleMessage(ctx, s, e.Message)
	})

	return d
}

// Handle registers or replaces the handler of kind.
func (d *EventDispatcher) Handle(kind EventKind, fn HandlerFunc) {
	d.handlers[kind] = fn
}

// Dispatch runs the handler registered for event.Kind.
func (d *EventDispatcher) Dispatch(ctx context.Context, event Event) (Result, error) {
	fn, ok := d.handlers[event.Kind]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownEvent, event.Kind)
	}
	return fn(ctx, event)
}

func handleMessage(ctx context.Context, s *Services, msg models.ControlMessage) (Result, error) {
	switch msg.Type {
	case MessageTriggerSync, legacySyncTransactions:
		return reportResult(s.SyncService.Sync(ctx))

	case MessageSkipWaiting, legacySkipWaiting:
		return generationResult(s.LifecycleService.SkipWaiting(ctx))

	case MessageCacheEntity:
		var payload models.CacheEntityPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		return Result{}, s.LifecycleService.CacheEntity(ctx, payload)

	case legacyCacheProduct, legacyCacheCustomer:
		entity := "product"
		if msg.Type == legacyCacheCustomer {
			entity = "customer"
		}
		payload, err := legacyEntityPayload(entity, msg.Payload)
		if err != nil {
			return Result{}, err
		}
		return Result{}, s.LifecycleService.CacheEntity(ctx, payload)

	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
}

// legacyEntityPayload takes the entity object itself as payload and reads
// its id field.
func legacyEntityPayload(entity string, raw json.RawMessage) (models.CacheEntityPayload, error) {
	var object map[string]any
	if err := json.Unmarshal(raw, &object); err != nil || object == nil {
		return models.CacheEntityPayload{}, fmt.Errorf("%w: %s payload must be a JSON object", ErrInvalidPayload, entity)
	}

	var id string
	switch v := object["id"].(type) {
	case string:
		id = strings.TrimSpace(v)
	case float64:
		id = strconv.FormatFloat(v, 'f', -1, 64)
	}
	if id == "" {
		return models.CacheEntityPayload{}, fmt.Errorf("%w: %s id is required", ErrInvalidPayload, entity)
	}

	return models.CacheEntityPayload{Entity: entity, ID: id, Data: raw}, nil
}

func generationResult(generation models.Generation, err error) (Result, error) {
	if err != nil {
		return Result{}, err
	}
	return Result{Generation: &generation}, nil
}

func reportResult(report models.SyncReport, err error) (Result, error) {
	if errors.Is(err, ErrSyncInProgress) {
		return Result{}, err
	}
	return Result{Report: &report}, err
}
