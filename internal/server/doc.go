// Package server wires and runs the gateway's transport servers.
//
// It starts the HTTP proxy and the gRPC health endpoint, waits for a stop
// signal and shuts both down gracefully.
package server
