package models

import "time"

// SyncOutcome is the result of replaying a single queued write.
type SyncOutcome string

const (
	SyncOutcomeSynced SyncOutcome = "synced"
	SyncOutcomeFailed SyncOutcome = "failed"
)

// SyncReport describes one reconciliation pass.
type SyncReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Attempted counts replayed entries, including the failed one.
	Attempted int `json:"attempted"`
	Synced    int `json:"synced"`

	// Remaining is the number of entries left unsynced after the pass.
	Remaining int `json:"remaining"`

	// StoppedAt is the id of the entry that halted the pass, zero when the
	// pass drained the queue.
	StoppedAt int64  `json:"stopped_at,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SyncState is the process-wide reconciliation state. It is not persisted.
type SyncState struct {
	Running    bool        `json:"running"`
	LastReport *SyncReport `json:"last_report,omitempty"`
}

// GatewayStatus is reported by the control API.
type GatewayStatus struct {
	Online           bool       `json:"online"`
	ActiveGeneration int64      `json:"active_generation"`
	Partitions       []string   `json:"partitions"`
	Queue            QueueStats `json:"queue"`
	Sync             SyncState  `json:"sync"`
	Version          string     `json:"version,omitempty"`
}
