package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pos-offline/models"
)

func validStructuredConfig() *StructuredConfig {
	cfg := defaults()
	cfg.Adapter.HTTPAddress = "http://pos-api:8080"
	return cfg
}

func TestNewGatewayConfig_Valid(t *testing.T) {
	cfg, err := newGatewayConfig(validStructuredConfig())
	require.NoError(t, err)

	assert.Equal(t, "http://pos-api:8080", cfg.Adapter.HTTPAddress)
	assert.Equal(t, DefaultDSN, cfg.Storage.DSN)
	assert.Equal(t, models.DefaultManifest(), cfg.Manifest)
	assert.False(t, cfg.Queue.ValidatePayload)
}

func TestNewGatewayConfig_RuleImpliesValidation(t *testing.T) {
	structured := validStructuredConfig()
	structured.Queue.ValidationRule = "total_amount > 0"

	cfg, err := newGatewayConfig(structured)
	require.NoError(t, err)
	assert.True(t, cfg.Queue.ValidatePayload)
}

func TestNewGatewayConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *StructuredConfig)
		wantErr error
	}{
		{"no upstream", func(c *StructuredConfig) { c.Adapter.HTTPAddress = "" }, ErrInvalidAdapterConfigs},
		{"upstream without scheme", func(c *StructuredConfig) { c.Adapter.HTTPAddress = "pos-api" }, ErrInvalidAdapterConfigs},
		{"relative health path", func(c *StructuredConfig) { c.Adapter.HealthPath = "health" }, ErrInvalidAdapterConfigs},
		{"no dsn", func(c *StructuredConfig) { c.Storage.DB.DSN = "" }, ErrInvalidStorageConfigs},
		{"no server timeout", func(c *StructuredConfig) { c.Server.RequestTimeout = 0 }, ErrInvalidServerConfigs},
		{"no probe interval", func(c *StructuredConfig) { c.Workers.ProbeInterval = 0 }, ErrInvalidWorkerConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			structured := validStructuredConfig()
			tt.mutate(structured)

			_, err := newGatewayConfig(structured)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadManifest_DefaultWhenEmpty(t *testing.T) {
	m, err := LoadManifest("")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultManifest(), m)
}

func TestLoadManifest_OverridesListedFields(t *testing.T) {
	p := writeTempFile(t, "manifest.yaml", "version: bundle-7\napi_urls:\n  - /api/v1/pos/products\n")

	m, err := LoadManifest(p)
	require.NoError(t, err)

	assert.Equal(t, "bundle-7", m.Version)
	assert.Equal(t, []string{"/api/v1/pos/products"}, m.APIURLs)
	assert.Equal(t, models.DefaultManifest().StaticURLs, m.StaticURLs)
	assert.Equal(t, "/pos/offline.html", m.FallbackPage)
}

func TestLoadManifest_Malformed(t *testing.T) {
	p := writeTempFile(t, "manifest.json", `{"static_urls": "not-a-list"}`)

	_, err := LoadManifest(p)
	assert.ErrorIs(t, err, ErrInvalidManifest)
}
