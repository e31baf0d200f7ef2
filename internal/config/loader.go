package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileNames lists the files searched for configuration in order.
// Checks .github/ first, then the project root.
var FileNames = []string{
	".github/openstay-release.yml",
	".github/openstay-release.yaml",
	"openstay-release.yml",
	"openstay-release.yaml",
}

// LoadFromFile reads and parses an openstay-release configuration file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses openstay-release configuration from raw YAML bytes.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// FindConfigFile returns the first configuration file present in dir, or
// the empty string.
func FindConfigFile(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load builds the effective configuration for the project in dir: defaults,
// then the config file (explicit path or auto-detected), then environment
// overrides.
func Load(dir, explicitPath string, env Environment) (*Config, error) {
	builder := NewBuilder()

	path := explicitPath
	if path == "" {
		path = FindConfigFile(dir)
	}
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		builder.Add(fileCfg)
	}

	builder.Add(env.Overrides())

	return builder.Build()
}
