package adapter

import (
	"errors"
	"fmt"
)

var (
	// ErrNetworkUnavailable means no response was obtained from upstream.
	// It is recoverable: the request may succeed once connectivity returns.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrServerRejected means upstream answered with a non-2xx status.
	ErrServerRejected = errors.New("server rejected request")
)

// Per-status sentinels wrapped by [*ServerRejectedError].
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrUnprocessable       = errors.New("unprocessable entity")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrServiceUnavailable  = errors.New("service unavailable")
)

// ServerRejectedError carries the status and body of a non-2xx upstream
// response.
type ServerRejectedError struct {
	Status int
	Body   string

	kind error
}

func (e *ServerRejectedError) Error() string {
	if e.kind != nil {
		return fmt.Sprintf("%s: http %d: %s: %s", ErrServerRejected, e.Status, e.kind, e.Body)
	}
	return fmt.Sprintf("%s: http %d: %s", ErrServerRejected, e.Status, e.Body)
}

// Is makes every ServerRejectedError match ErrServerRejected.
func (e *ServerRejectedError) Is(target error) bool {
	return target == ErrServerRejected
}

func (e *ServerRejectedError) Unwrap() error {
	return e.kind
}
