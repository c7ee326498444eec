package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/go-pos-offline/internal/adapter"
	"github.com/MKhiriev/go-pos-offline/internal/service"
	"github.com/MKhiriev/go-pos-offline/internal/store"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "queued write not found inside a storage failure",
			err:  fmt.Errorf("get queued write 9: %w: %w", service.ErrStorageFailure, store.ErrQueuedWriteNotFound),
			want: http.StatusNotFound,
		},
		{
			name: "storage failure",
			err:  fmt.Errorf("%w: database is locked", service.ErrStorageFailure),
			want: http.StatusInternalServerError,
		},
		{
			name: "sync in progress",
			err:  service.ErrSyncInProgress,
			want: http.StatusConflict,
		},
		{
			name: "precache failed offline",
			err:  fmt.Errorf("%w: /pos/app.js: %w", service.ErrPrecacheFailed, adapter.ErrNetworkUnavailable),
			want: http.StatusBadGateway,
		},
		{
			name: "invalid payload",
			err:  fmt.Errorf("%w: entity id", service.ErrInvalidPayload),
			want: http.StatusBadRequest,
		},
		{
			name: "intent not found",
			err:  service.ErrIntentNotFound,
			want: http.StatusNotFound,
		},
		{
			name: "unmapped",
			err:  errors.New("boom"),
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFromError(tt.err))
		})
	}
}
