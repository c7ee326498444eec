package models

import (
	"net/http"
	"time"
)

// WriteKind classifies a queued mutating request.
type WriteKind string

const (
	WriteKindTransaction WriteKind = "transaction"
	WriteKindReceipt     WriteKind = "receipt"
)

// Valid reports whether k is a known write kind.
func (k WriteKind) Valid() bool {
	return k == WriteKindTransaction || k == WriteKindReceipt
}

// QueuedWrite is a durably persisted mutating request that could not reach
// the server when it was submitted. Rows are never deleted; synced rows stay
// for audit and are never replayed again.
type QueuedWrite struct {
	// ID is assigned by storage and grows monotonically, so ordering by ID
	// is enqueue order.
	ID int64 `json:"id"`

	Kind WriteKind `json:"kind"`

	// Method and Path describe the original request; Path includes the raw
	// query, if any.
	Method string `json:"method"`
	Path   string `json:"path"`

	// Headers are the end-to-end request headers replayed with the write.
	Headers http.Header `json:"headers,omitempty"`

	// Payload is the original request body.
	Payload []byte `json:"payload,omitempty"`

	// IdempotencyKey is forwarded on replay so the server can deduplicate.
	IdempotencyKey string `json:"idempotency_key"`

	CreatedAt time.Time  `json:"created_at"`
	Synced    bool       `json:"synced"`
	SyncedAt  *time.Time `json:"synced_at,omitempty"`

	// Attempts counts replay attempts that did not succeed.
	Attempts  int    `json:"attempts"`
	LastError string `json:"last_error,omitempty"`
}

// QueueFilter narrows a queue listing.
type QueueFilter struct {
	Kind   WriteKind `json:"kind,omitempty"`
	Synced *bool     `json:"synced,omitempty"`
	Limit  uint64    `json:"limit,omitempty"`
}

// QueueStats summarises the queue content.
type QueueStats struct {
	Total    int64      `json:"total"`
	Unsynced int64      `json:"unsynced"`
	Oldest   *time.Time `json:"oldest_unsynced,omitempty"`
}
