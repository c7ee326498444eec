package models

import "time"

// GenerationStatus is the lifecycle phase of a cache generation.
type GenerationStatus string

const (
	GenerationInstalling GenerationStatus = "installing"
	GenerationInstalled  GenerationStatus = "installed"
	GenerationActive     GenerationStatus = "active"
	GenerationRetired    GenerationStatus = "retired"
)

// Generation is one deployed snapshot of the precache manifest together with
// the partitions populated for it.
type Generation struct {
	Generation   int64            `json:"generation"`
	ManifestHash string           `json:"manifest_hash"`
	Status       GenerationStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	ActivatedAt  *time.Time       `json:"activated_at,omitempty"`
}

// Manifest describes what a generation must precache before it can become
// active. A change of its content hash bumps the generation.
type Manifest struct {
	// Version is a free-form label of the deployed asset bundle.
	Version string `json:"version"`

	// StaticURLs are precached into the static bucket.
	StaticURLs []string `json:"static_urls"`

	// APIURLs are precached into the api bucket and refreshed periodically.
	APIURLs []string `json:"api_urls"`

	// FallbackPage is the URL stored in the offline bucket and served when a
	// page cannot be loaded from either the network or the cache.
	FallbackPage string `json:"fallback_page"`
}

// DefaultManifest is the precache manifest of the POS terminal bundle.
func DefaultManifest() Manifest {
	return Manifest{
		Version: "pos-terminal-v1",
		StaticURLs: []string{
			"/pos/terminal",
			"/pos/static/css/main.css",
			"/pos/static/js/main.js",
			"/pos/static/js/pos-terminal.js",
			"/pos/static/js/offline-sync.js",
			"/pos/icons/icon-192x192.png",
			"/pos/icons/icon-512x512.png",
			"/pos/manifest.json",
		},
		APIURLs: []string{
			"/api/v1/pos/products",
			"/api/v1/pos/registers",
			"/api/v1/pos/taxes",
			"/api/v1/pos/discounts",
			"/api/v1/customers",
			"/api/v1/inventory/products",
		},
		FallbackPage: "/pos/offline.html",
	}
}
