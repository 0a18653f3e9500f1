package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// providerEntry is the on-disk shape of one provider.
type providerEntry struct {
	ID       string         `yaml:"id" json:"id"`
	Name     string         `yaml:"name" json:"name"`
	Auth     *Credentials   `yaml:"auth" json:"auth"`
	Timeout  string         `yaml:"timeout" json:"timeout"`
	Metadata map[string]any `yaml:"metadata" json:"metadata"`
}

// File is the structure of a providers file.
type File struct {
	Providers []providerEntry `yaml:"providers" json:"providers"`
}

// LoadFile reads a providers file (YAML, or JSON when the extension is
// .json) and returns its provider configurations in file order. A missing
// file yields no providers.
func LoadFile(path string) ([]ProviderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read providers config: %w", err)
	}

	return Parse(data, strings.ToLower(filepath.Ext(path)) == ".json")
}

// Parse decodes a providers document. It is YAML unless isJSON is set.
func Parse(data []byte, isJSON bool) ([]ProviderConfig, error) {
	var f File

	if isJSON {
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse providers JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse providers YAML: %w", err)
		}
	}

	out := make([]ProviderConfig, 0, len(f.Providers))

	for i, e := range f.Providers {
		if e.ID == "" {
			return nil, fmt.Errorf("provider %d: missing id", i)
		}

		cfg := ProviderConfig{
			ID:       e.ID,
			Name:     e.Name,
			Auth:     e.Auth,
			Metadata: e.Metadata,
		}

		if cfg.Name == "" {
			cfg.Name = e.ID
		}

		if e.Timeout != "" {
			d, err := time.ParseDuration(e.Timeout)
			if err != nil {
				return nil, fmt.Errorf("provider %s: timeout: %w", e.ID, err)
			}

			cfg.Timeout = d
		}

		out = append(out, cfg)
	}

	return out, nil
}
