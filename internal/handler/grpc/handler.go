// Package grpc exposes the gateway's gRPC surface: the standard health
// service, reporting SERVING while the POS API is reachable and
// NOT_SERVING while the gateway runs offline. Both the overall status and
// [UpstreamServiceName] follow connectivity.
package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/internal/service"
)

// UpstreamServiceName is the health service name tracking POS API
// reachability.
const UpstreamServiceName = "pos.offline.Upstream"

// Handler is the root gRPC transport handler.
type Handler struct {
	services *service.Services
	health   *health.Server

	logger *logger.Logger
}

// NewHandler constructs a [Handler] and subscribes it to connectivity
// changes. The status starts as the current connectivity state, so an
// unprobed gateway is NOT_SERVING.
func NewHandler(services *service.Services, logger *logger.Logger) *Handler {
	h := &Handler{
		services: services,
		health:   health.NewServer(),
		logger:   logger,
	}

	h.setUpstream(services.ConnectivityService.Online())
	services.ConnectivityService.Watch(func(_ context.Context, online bool) {
		h.setUpstream(online)
	})

	logger.Debug().Msg("gRPC handler created")
	return h
}

// Register attaches the handler's services to s.
func (h *Handler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
}

// Shutdown flips every status to NOT_SERVING so watchers see the gateway
// going away before connections close.
func (h *Handler) Shutdown() {
	h.health.Shutdown()
}

func (h *Handler) setUpstream(online bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if online {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(UpstreamServiceName, status)
}
