package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sigs.k8s.io/yaml"
)

// StructuredJSONConfig is the on-disk layout of the config file. YAML files
// use the same keys.
type StructuredJSONConfig struct {
	App struct {
		PushSignKey string `json:"push_sign_key"`
		Version     string `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		GRPCAddress    string   `json:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
		HealthPath     string   `json:"health_path"`
	} `json:"adapter,omitempty"`

	Workers struct {
		SyncInterval    Duration `json:"sync_interval"`
		RefreshInterval Duration `json:"refresh_interval"`
		ProbeInterval   Duration `json:"probe_interval"`
	} `json:"workers,omitempty"`

	Cache struct {
		Manifest string `json:"manifest"`
	} `json:"cache,omitempty"`

	Queue struct {
		ValidatePayload bool   `json:"validate_payload"`
		ValidationRule  string `json:"validation_rule"`
	} `json:"queue,omitempty"`
}

// parseFile reads a JSON config file, or a YAML one when the extension is
// .yaml or .yml.
func parseFile(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var fileCfg StructuredJSONConfig
	if isYAML(path) {
		err = yaml.Unmarshal(data, &fileCfg)
	} else {
		err = json.Unmarshal(data, &fileCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			PushSignKey: fileCfg.App.PushSignKey,
			Version:     fileCfg.App.Version,
		},
		Storage: Storage{
			DB: DB{DSN: fileCfg.Storage.DB.DSN},
		},
		Server: Server{
			HTTPAddress:    fileCfg.Server.HTTPAddress,
			GRPCAddress:    fileCfg.Server.GRPCAddress,
			RequestTimeout: time.Duration(fileCfg.Server.RequestTimeout),
		},
		Adapter: Adapter{
			HTTPAddress:    fileCfg.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(fileCfg.Adapter.RequestTimeout),
			HealthPath:     fileCfg.Adapter.HealthPath,
		},
		Workers: Workers{
			SyncInterval:    time.Duration(fileCfg.Workers.SyncInterval),
			RefreshInterval: time.Duration(fileCfg.Workers.RefreshInterval),
			ProbeInterval:   time.Duration(fileCfg.Workers.ProbeInterval),
		},
		Cache: Cache{ManifestPath: fileCfg.Cache.Manifest},
		Queue: Queue{
			ValidatePayload: fileCfg.Queue.ValidatePayload,
			ValidationRule:  fileCfg.Queue.ValidationRule,
		},
	}

	return cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Duration is a time.Duration that unmarshals from strings like "1h" or
// "30s" as well as from nanosecond numbers.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
