// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"net/http"
	"strings"
)

// Request is the transport-independent form of an intercepted request.
type Request struct {
	Method string      `json:"method"`
	URL    string      `json:"url"`
	Header http.Header `json:"header,omitempty"`
	Body   []byte      `json:"body,omitempty"`
}

// Path returns the URL without its query.
func (r Request) Path() string {
	if idx := strings.IndexByte(r.URL, '?'); idx >= 0 {
		return r.URL[:idx]
	}
	return r.URL
}

// AcceptsHTML reports whether the caller expects a page.
func (r Request) AcceptsHTML() bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// ResponseSource tells where a response was obtained.
type ResponseSource string

const (
	SourceNetwork   ResponseSource = "network"
	SourceCache     ResponseSource = "cache"
	SourceSynthetic ResponseSource = "synthetic"
)

// Response is the outcome of routing a [Request].
type Response struct {
	Status int         `json:"status"`
	Header http.Header `json:"header,omitempty"`
	Body   []byte      `json:"body,omitempty"`

	Source ResponseSource `json:"source"`

	// Stale is set when a cached response was served because the network
	// was unavailable.
	Stale bool `json:"stale,omitempty"`

	// Offline is set on synthetic responses produced while the server is
	// unreachable.
	Offline bool `json:"offline,omitempty"`

	// QueuedID is the id of the queued write backing a synthetic success.
	QueuedID int64 `json:"queued_id,omitempty"`
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.Status >= http.StatusOK && r.Status < http.StatusMultipleChoices
}
