// Package workers runs the gateway's background jobs: the connectivity
// probe, the scheduled queue sync and the API data refresh.
//
// Every job is a [Worker]; [Workers] runs them together and stops them all
// when the context is cancelled.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
//
// Run blocks until ctx is done or the worker fails for good. Returning a
// non-nil error stops every other worker of the same [Workers].
type Worker interface {
	Run(ctx context.Context) error
}
