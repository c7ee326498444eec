package config

import "time"

// Default values applied to every field no other source sets.
const (
	DefaultAppVersion      = "dev"
	DefaultDSN             = "pos-offline.db"
	DefaultHTTPAddress     = "localhost:8090"
	DefaultGRPCAddress     = "localhost:8091"
	DefaultServerTimeout   = 30 * time.Second
	DefaultUpstreamTimeout = 10 * time.Second
	DefaultHealthPath      = "/api/v1/health"
	DefaultSyncInterval    = time.Minute
	DefaultRefreshInterval = 15 * time.Minute
	DefaultProbeInterval   = 10 * time.Second
)

func defaults() *StructuredConfig {
	return &StructuredConfig{
		App:     App{Version: DefaultAppVersion},
		Storage: Storage{DB: DB{DSN: DefaultDSN}},
		Server: Server{
			HTTPAddress:    DefaultHTTPAddress,
			GRPCAddress:    DefaultGRPCAddress,
			RequestTimeout: DefaultServerTimeout,
		},
		Adapter: Adapter{
			RequestTimeout: DefaultUpstreamTimeout,
			HealthPath:     DefaultHealthPath,
		},
		Workers: Workers{
			SyncInterval:    DefaultSyncInterval,
			RefreshInterval: DefaultRefreshInterval,
			ProbeInterval:   DefaultProbeInterval,
		},
	}
}
