package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/coral-mesh/vgreq/internal/safe"
)

const (
	// DefaultDir is the per-user directory below $HOME.
	DefaultDir = ".vgreq"
	// ConfigFile is the file name inside DefaultDir.
	ConfigFile = "config.yaml"
	// EnvConfig names an alternative config file.
	EnvConfig = "VGREQ_CONFIG"
)

// Loader reads and writes the configuration file.
type Loader struct {
	path     string
	explicit bool
}

// NewLoader resolves the config file in this order:
//  1. path, when not empty (usually the --config flag).
//  2. the VGREQ_CONFIG environment variable.
//  3. ~/.vgreq/config.yaml.
//
// An explicitly named file must exist; the default one is optional.
func NewLoader(path string) *Loader {
	if path != "" {
		return &Loader{path: path, explicit: true}
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return &Loader{path: p, explicit: true}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		// No home in minimal containers; Load then returns defaults plus
		// environment overrides.
		home = os.TempDir()
	}
	return &Loader{path: filepath.Join(home, DefaultDir, ConfigFile)}
}

// Path returns the resolved config file path.
func (l *Loader) Path() string {
	return l.path
}

// Load reads the file over the defaults, applies environment overrides and
// validates the result.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	data, err := safe.ReadFile(l.path, safe.DefaultMaxFileSize)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", l.path, err)
		}
	case os.IsNotExist(err) && !l.explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := MergeFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", l.path, err)
	}
	return cfg, nil
}

// Save writes cfg to the resolved path, creating the directory.
func (l *Loader) Save(cfg *Config) error {
	//nolint:gosec // G301: Directory needs standard permissions for traversal
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	//nolint:gosec // G306: Config file is not sensitive
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
