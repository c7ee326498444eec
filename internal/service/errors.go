// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

var (
	// ErrCacheMiss is returned when the active generation holds no entry for
	// a key.
	ErrCacheMiss = errors.New("cache miss")

	// ErrStorageFailure wraps every failure of the local store. It is fatal
	// for the single operation that hit it.
	ErrStorageFailure = errors.New("storage failure")

	// ErrDigestMismatch is wrapped into ErrStorageFailure when a cached body
	// no longer matches the digest stored with it.
	ErrDigestMismatch = errors.New("cached body digest mismatch")

	ErrNoActiveGeneration    = errors.New("no active cache generation")
	ErrNoInstalledGeneration = errors.New("no installed cache generation")
	ErrPrecacheFailed        = errors.New("precache failed")

	ErrSyncInProgress = errors.New("sync already in progress")

	ErrIntentNotFound = errors.New("notification intent not found")

	ErrInvalidPayload  = errors.New("invalid payload")
	ErrAlreadyQueued   = errors.New("write already queued")
	ErrUnknownMessage  = errors.New("unknown control message")
	ErrUnknownEntity   = errors.New("unknown cache entity")
	ErrUnknownEvent    = errors.New("unknown event kind")
	ErrVersionNotFound = errors.New("app version is not specified")
)
