package http

import (
	"time"

	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/internal/service"
)

const (
	// maxBodyBytes bounds intercepted request bodies.
	maxBodyBytes = 10 << 20

	defaultKeepAlive = 15 * time.Second
)

type Handler struct {
	services *service.Services

	// pushSignKey verifies push ingress tokens. Empty disables the check.
	pushSignKey string
	keepAlive   time.Duration

	logger *logger.Logger
}

func NewHandler(services *service.Services, pushSignKey string, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:    services,
		pushSignKey: pushSignKey,
		keepAlive:   defaultKeepAlive,
		logger:      logger,
	}
}
