package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-pos-offline/internal/adapter"
	"github.com/MKhiriev/go-pos-offline/internal/service"
	"github.com/MKhiriev/go-pos-offline/internal/store"
)

// errorStatuses is matched in order; more specific errors come before the
// ones that wrap them (ErrStorageFailure wraps the store not-found errors).
var errorStatuses = []struct {
	target error
	status int
}{
	{ErrInvalidQueryParam, http.StatusBadRequest},
	{ErrInvalidJSON, http.StatusBadRequest},
	{ErrBodyTooLarge, http.StatusRequestEntityTooLarge},

	{service.ErrInvalidPayload, http.StatusBadRequest},
	{service.ErrUnknownMessage, http.StatusBadRequest},
	{service.ErrUnknownEntity, http.StatusBadRequest},
	{service.ErrUnknownEvent, http.StatusBadRequest},
	{service.ErrIntentNotFound, http.StatusNotFound},
	{service.ErrSyncInProgress, http.StatusConflict},
	{service.ErrAlreadyQueued, http.StatusConflict},
	{service.ErrNoInstalledGeneration, http.StatusConflict},
	{service.ErrNoActiveGeneration, http.StatusConflict},
	{service.ErrPrecacheFailed, http.StatusBadGateway},

	{store.ErrQueuedWriteNotFound, http.StatusNotFound},

	{adapter.ErrNetworkUnavailable, http.StatusBadGateway},

	{service.ErrStorageFailure, http.StatusInternalServerError},
}

func statusFromError(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.target) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}
