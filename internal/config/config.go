// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container of the offline
// gateway. It is populated by merging command-line flags, environment
// variables and an optional JSON or YAML file.
//
// Struct tags:
//   - envPrefix: prefix applied to nested env tag lookups (caarlos0/env).
//   - env: environment variable name of a scalar field.
type StructuredConfig struct {
	App     App     `envPrefix:"APP_"`
	Storage Storage `envPrefix:"STORAGE_"`
	Server  Server  `envPrefix:"SERVER_"`

	// Adapter points at the upstream POS API.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	Workers Workers `envPrefix:"WORKERS_"`
	Cache   Cache   `envPrefix:"CACHE_"`
	Queue   Queue   `envPrefix:"QUEUE_"`

	// JSONFilePath is the optional path to a JSON or YAML configuration
	// file. Populated via the CONFIG environment variable or the -c / -config
	// flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level settings.
type App struct {
	// PushSignKey is the HS256 secret push ingress tokens are signed with.
	// Push ingress is unauthenticated when empty.
	// Env: APP_PUSH_SIGN_KEY
	PushSignKey string `env:"PUSH_SIGN_KEY"`

	// Version is reported by the status endpoint.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage groups the persistence settings.
type Storage struct {
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the queue and cache database.
type DB struct {
	// DSN selects the backend: a "postgres://" or "postgresql://" URL opens
	// PostgreSQL, anything else is treated as a SQLite file path.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Server holds the listen addresses of the gateway.
type Server struct {
	// HTTPAddress is where the POS UI sends its requests ("host:port").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// GRPCAddress serves grpc.health.v1.Health ("host:port").
	// Env: SERVER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS"`

	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Adapter holds the upstream API settings.
type Adapter struct {
	// HTTPAddress is the base URL of the POS REST API
	// (e.g. "http://pos-api.local:8080").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds every upstream call. A timeout counts as the
	// network being unavailable.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// HealthPath is probed by the connectivity monitor.
	// Env: ADAPTER_HEALTH_PATH
	HealthPath string `env:"HEALTH_PATH"`
}

// Workers holds the schedules of the background workers.
type Workers struct {
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// RefreshInterval is the period of the API data refresh.
	// Env: WORKERS_REFRESH_INTERVAL
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL"`

	// ProbeInterval is the period of the upstream connectivity probe.
	// Env: WORKERS_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`
}

// Cache holds precache settings.
type Cache struct {
	// ManifestPath points at a JSON or YAML precache manifest. The built-in
	// terminal manifest is used when empty.
	// Env: CACHE_MANIFEST
	ManifestPath string `env:"MANIFEST"`
}

// Queue holds write queue settings.
type Queue struct {
	// ValidatePayload turns on JSON shape validation of queued writes.
	// Env: QUEUE_VALIDATE_PAYLOAD
	ValidatePayload bool `env:"VALIDATE_PAYLOAD"`

	// ValidationRule is an optional expr-lang boolean expression evaluated
	// against the decoded payload. Setting it implies ValidatePayload.
	// Env: QUEUE_VALIDATION_RULE
	ValidationRule string `env:"VALIDATION_RULE"`
}

// GetStructuredConfig loads, merges and validates the configuration from all
// sources. A field is taken from the first source that sets it, in the order
// flags, environment, config file, defaults.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withFlags(commandLineArgs()).
		withEnv().
		withFile().
		withDefaults().
		build()
}
