package config

import (
	"encoding/json"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/MKhiriev/go-pos-offline/models"
)

// LoadManifest reads the precache manifest at path. An empty path yields
// [models.DefaultManifest]. Fields missing from the file keep their default
// values.
func LoadManifest(path string) (models.Manifest, error) {
	manifest := models.DefaultManifest()
	if path == "" {
		return manifest, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.Manifest{}, fmt.Errorf("error reading manifest: %w", err)
	}

	var fileManifest models.Manifest
	if isYAML(path) {
		err = yaml.Unmarshal(data, &fileManifest)
	} else {
		err = json.Unmarshal(data, &fileManifest)
	}
	if err != nil {
		return models.Manifest{}, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	if fileManifest.Version != "" {
		manifest.Version = fileManifest.Version
	}
	if fileManifest.StaticURLs != nil {
		manifest.StaticURLs = fileManifest.StaticURLs
	}
	if fileManifest.APIURLs != nil {
		manifest.APIURLs = fileManifest.APIURLs
	}
	if fileManifest.FallbackPage != "" {
		manifest.FallbackPage = fileManifest.FallbackPage
	}

	return manifest, nil
}
