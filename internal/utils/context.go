// Package utils provides helpers shared across the gateway: typed context
// keys, JSON response writing, the resty HTTP client, header hygiene,
// content digests, push token handling and id generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys, so keys never collide with
// string keys of other packages.
type contextKey string

func (c contextKey) String() string {
	return string(c)
}

// PushSubjectCtxKey stores the subject of a verified push token.
var PushSubjectCtxKey = contextKey("pushSubject")

// GetPushSubjectFromContext returns the push token subject stored by the push
// authentication middleware.
func GetPushSubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(PushSubjectCtxKey).(string)
	return subject, ok
}
