package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-pos-offline/internal/validators"
	"github.com/MKhiriev/go-pos-offline/models"
)

// QueueValidationService rejects malformed writes before they are queued.
// Everything except Enqueue is delegated unchanged.
type QueueValidationService struct {
	QueueService
	validator validators.Validator
}

// NewQueueValidationService compiles rule into a write validator.
func NewQueueValidationService(rule string) (QueueServiceWrapper, error) {
	validator, err := validators.NewWriteValidator(rule)
	if err != nil {
		return nil, err
	}

	return &QueueValidationService{validator: validator}, nil
}

// Wrap implements [QueueServiceWrapper].
func (v *QueueValidationService) Wrap(inner QueueService) QueueService {
	return &QueueValidationService{QueueService: inner, validator: v.validator}
}

func (v *QueueValidationService) Enqueue(ctx context.Context, kind models.WriteKind, req models.Request) (models.QueuedWrite, error) {
	draft := models.QueuedWrite{
		Kind:    kind,
		Method:  req.Method,
		Path:    req.URL,
		Payload: req.Body,
	}
	if err := v.validator.Validate(ctx, draft); err != nil {
		return models.QueuedWrite{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	return v.QueueService.Enqueue(ctx, kind, req)
}
