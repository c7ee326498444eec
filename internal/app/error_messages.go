// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared message strings used by the gateway's HTTP
// layer and the operator CLI.
//
// Msg* constants end up in response bodies and terminal output. Keeping
// them in one place keeps the wording consistent between what the gateway
// answers and what offlinectl prints.
package app

const (
	// MsgInternalServerError replaces the error text of 500 answers so
	// storage details do not leak to terminals.
	MsgInternalServerError = "internal server error"

	// MsgNotFound is returned for unknown operator routes.
	MsgNotFound = "not found"

	// MsgInvalidPushToken is returned when a push ingress token is
	// missing, malformed or not signed with the configured key.
	MsgInvalidPushToken = "invalid push token"

	// MsgGatewayUnreachable is printed by offlinectl when the gateway's
	// operator API does not answer.
	MsgGatewayUnreachable = "gateway is unreachable"

	// MsgUpstreamOffline is shown when the gateway reports the POS API as
	// unreachable.
	MsgUpstreamOffline = "POS API is unreachable, writes are queued"

	// MsgUpstreamOnline is shown when the gateway reports the POS API as
	// reachable.
	MsgUpstreamOnline = "POS API is reachable"

	// MsgSyncInProgress is printed when a manual sync collides with a
	// running pass.
	MsgSyncInProgress = "a sync pass is already running"
)
