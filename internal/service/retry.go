package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-pos-offline/internal/store"
)

const (
	storageRetryBase = 20 * time.Millisecond
	storageRetryMax  = 4
)

// storageRetrier retries storage calls failing with a transient error
// (busy/locked SQLite, Postgres connection and serialization classes).
type storageRetrier struct {
	classifier store.ErrorClassificator
	base       time.Duration
	maxRetries uint64
}

func newStorageRetrier(classifier store.ErrorClassificator) storageRetrier {
	return storageRetrier{classifier: classifier, base: storageRetryBase, maxRetries: storageRetryMax}
}

// do runs fn with bounded exponential backoff. Non-transient errors return
// immediately. Every error is wrapped in ErrStorageFailure.
func (r storageRetrier) do(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(r.maxRetries, retry.NewExponential(r.base))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && r.classifier != nil && r.classifier.Classify(err) == store.Retryable {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	return nil
}
