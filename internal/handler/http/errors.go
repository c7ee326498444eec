// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

var (
	// ErrEmptyAuthorizationHeader is returned by the push middleware when a
	// sign key is configured and the request carries no "Authorization"
	// header.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInvalidPushToken is returned when the bearer token fails
	// verification.
	ErrInvalidPushToken = errors.New("invalid push token")

	ErrInvalidQueryParam = errors.New("invalid query parameter")
	ErrInvalidJSON       = errors.New("invalid JSON was passed")
	ErrBodyTooLarge      = errors.New("request body too large")
)
