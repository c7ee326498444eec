package config

import "errors"

// Validation errors returned when a configuration group is incomplete.
var (
	// ErrInvalidAdapterConfigs indicates a missing or malformed upstream URL,
	// timeout or health path.
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates an empty DSN.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	ErrInvalidServerConfigs  = errors.New("invalid server configuration")
	// ErrInvalidWorkerConfigs indicates a non-positive worker period.
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
	ErrInvalidManifest      = errors.New("invalid precache manifest")
)
