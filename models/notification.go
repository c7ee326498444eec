package models

import (
	"encoding/json"
	"time"
)

// PushEvent is a server-originated payload received on the push ingress.
type PushEvent struct {
	Title string         `json:"title,omitempty"`
	Body  string         `json:"body,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// NotificationAction names a user interaction with a notification.
type NotificationAction string

const (
	ActionView  NotificationAction = "view"
	ActionPrint NotificationAction = "print"
	ActionClose NotificationAction = "close"
)

// NotificationIntent is a notification surfaced to the user. It is consumed
// exactly once by an action.
type NotificationIntent struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Body      string               `json:"body"`
	Data      map[string]any       `json:"data,omitempty"`
	Actions   []NotificationAction `json:"actions"`
	CreatedAt time.Time            `json:"created_at"`
}

// EventType names an outbound event delivered to attached UI contexts.
type EventType string

const (
	EventSyncCompleted      EventType = "sync-completed"
	EventNotification       EventType = "notification"
	EventNotificationAction EventType = "notification-action"
	EventConnectivity       EventType = "connectivity"
	EventLifecycle          EventType = "lifecycle"
)

// Event is an outbound message published on the event bus.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
	At   time.Time `json:"at"`
}

// SyncCompleted is the payload of [EventSyncCompleted].
type SyncCompleted struct {
	ID      int64       `json:"id"`
	Kind    WriteKind   `json:"kind"`
	Outcome SyncOutcome `json:"outcome"`
	Error   string      `json:"error,omitempty"`
}

// NotificationActionData is the payload of [EventNotificationAction].
type NotificationActionData struct {
	Action NotificationAction `json:"action"`
	URL    string             `json:"url,omitempty"`
	Data   map[string]any     `json:"data,omitempty"`
}

// ControlMessage is a named message sent by the UI to the gateway.
type ControlMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CacheEntityPayload is the payload of a cache-entity control message.
type CacheEntityPayload struct {
	// Entity is "product" or "customer".
	Entity string          `json:"entity"`
	ID     string          `json:"id"`
	Data   json.RawMessage `json:"data"`
}
