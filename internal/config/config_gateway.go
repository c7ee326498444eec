package config

import (
	"fmt"
	"time"

	"github.com/MKhiriev/go-pos-offline/models"
)

// GatewayApp holds application-level gateway settings.
type GatewayApp struct {
	PushSignKey string
	Version     string
}

// GatewayServer holds the listen addresses.
type GatewayServer struct {
	HTTPAddress    string
	GRPCAddress    string
	RequestTimeout time.Duration
}

// GatewayAdapter holds upstream settings.
type GatewayAdapter struct {
	HTTPAddress    string
	RequestTimeout time.Duration
	HealthPath     string
}

// GatewayStorage holds the database DSN.
type GatewayStorage struct {
	DSN string
}

// GatewayWorkers holds worker periods.
type GatewayWorkers struct {
	SyncInterval    time.Duration
	RefreshInterval time.Duration
	ProbeInterval   time.Duration
}

// GatewayQueue holds queued write validation settings.
type GatewayQueue struct {
	ValidatePayload bool
	ValidationRule  string
}

// GatewayConfig is the configuration view consumed by the gateway binary.
type GatewayConfig struct {
	App      GatewayApp
	Server   GatewayServer
	Adapter  GatewayAdapter
	Storage  GatewayStorage
	Workers  GatewayWorkers
	Queue    GatewayQueue
	Manifest models.Manifest
}

// GetGatewayConfig loads the structured configuration, resolves the precache
// manifest and validates the result.
func GetGatewayConfig() (*GatewayConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return newGatewayConfig(cfg)
}

func newGatewayConfig(cfg *StructuredConfig) (*GatewayConfig, error) {
	manifest, err := LoadManifest(cfg.Cache.ManifestPath)
	if err != nil {
		return nil, err
	}

	gatewayCfg := &GatewayConfig{
		App: GatewayApp{
			PushSignKey: cfg.App.PushSignKey,
			Version:     cfg.App.Version,
		},
		Server: GatewayServer{
			HTTPAddress:    cfg.Server.HTTPAddress,
			GRPCAddress:    cfg.Server.GRPCAddress,
			RequestTimeout: cfg.Server.RequestTimeout,
		},
		Adapter: GatewayAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			HealthPath:     cfg.Adapter.HealthPath,
		},
		Storage: GatewayStorage{DSN: cfg.Storage.DB.DSN},
		Workers: GatewayWorkers{
			SyncInterval:    cfg.Workers.SyncInterval,
			RefreshInterval: cfg.Workers.RefreshInterval,
			ProbeInterval:   cfg.Workers.ProbeInterval,
		},
		Queue: GatewayQueue{
			ValidatePayload: cfg.Queue.ValidatePayload || cfg.Queue.ValidationRule != "",
			ValidationRule:  cfg.Queue.ValidationRule,
		},
		Manifest: manifest,
	}

	return gatewayCfg, gatewayCfg.validate()
}
