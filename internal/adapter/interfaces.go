// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter holds the outbound HTTP transports of the gateway.
//
// [UpstreamAdapter] forwards intercepted requests to the POS REST API and
// reports transport failures as [ErrNetworkUnavailable]. [ControlClient]
// talks to a running gateway's operator API and backs the offlinectl
// command.
//
// Non-2xx responses are mapped by mapHTTPError to [*ServerRejectedError],
// which matches [ErrServerRejected] as well as a per-status sentinel such as
// [ErrConflict], so callers can use [errors.Is] either way.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-pos-offline/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// UpstreamAdapter forwards requests to the POS REST API.
type UpstreamAdapter interface {
	// Do sends req upstream. Any HTTP response, whatever its status, is
	// returned with a nil error. A failure to obtain a response (refused
	// connection, DNS failure, timeout) is reported as ErrNetworkUnavailable.
	Do(ctx context.Context, req models.Request) (models.Response, error)

	// Ping probes the upstream health endpoint.
	Ping(ctx context.Context) error
}

// ControlClient calls the operator API of a running gateway.
type ControlClient interface {
	Status(ctx context.Context) (models.GatewayStatus, error)
	Queue(ctx context.Context, filter models.QueueFilter) ([]models.QueuedWrite, error)
	TriggerSync(ctx context.Context) (models.SyncReport, error)
	Install(ctx context.Context) (models.Generation, error)
	Activate(ctx context.Context) (models.Generation, error)
}
