package store

import "errors"

// Sentinel errors returned by repository methods. Callers match them with
// [errors.Is].
var (
	// ErrCacheEntryNotFound is returned when a partition holds no entry for
	// the requested key.
	ErrCacheEntryNotFound = errors.New("cache entry not found")

	// ErrQueuedWriteNotFound is returned when no queued write has the
	// requested id.
	ErrQueuedWriteNotFound = errors.New("queued write not found")

	// ErrGenerationNotFound is returned when no generation matches the
	// lookup.
	ErrGenerationNotFound = errors.New("cache generation not found")

	// ErrDuplicateIdempotencyKey is returned when a write with the same
	// idempotency key is already queued.
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already queued")
)

// Low-level database operation errors, wrapped around the driver error.
var (
	ErrBuildingSQLQuery     = errors.New("error building sql query")
	ErrExecutingQuery       = errors.New("error executing sql query")
	ErrBeginningTransaction = errors.New("failed to begin transaction")
	ErrCommitingTransaction = errors.New("failed to commit transaction")
	ErrExecutingStatement   = errors.New("failed to execute statement")
	ErrScanningRow          = errors.New("failed to scan row")
	ErrScanningRows         = errors.New("failed to scan rows")
	ErrEncodingColumn       = errors.New("failed to encode column value")
	ErrDecodingColumn       = errors.New("failed to decode column value")
)
