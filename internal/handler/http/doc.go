// Package http is the gateway's HTTP surface.
//
// Every request outside /_offline is intercepted and handed to the
// service dispatcher as a fetch event, so the terminal UI talks to the
// gateway exactly as it would talk to the POS API. The /_offline subtree
// carries the operator API, control messages, the server-sent event stream
// and push ingress. Tracing, access logging and compression are applied
// here before requests reach the service layer.
package http
