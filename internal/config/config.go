// Package config loads the pgsplit.yaml project configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pgschema/pgsplit/pkg/pgsplit"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is the default configuration file name.
const ConfigFileName = "pgsplit.yaml"

type ConnectionConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password,omitempty"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`

	// Schemas is the allow-list of schema names to retain.
	// Empty means all schemas.
	Schemas []string `yaml:"schemas,omitempty"`

	// OutputDir is the root of the generated file tree.
	OutputDir string `yaml:"output_dir,omitempty"`
}

// Default returns the configuration used when no file is present. It has
// no connection identity and fails validation; only callers that never
// connect can use it.
func Default() *ProjectConfig {
	cfg := &ProjectConfig{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and validates the configuration at configPath.
// An empty configPath falls back to ConfigFileName in the working directory.
func Load(configPath string) (*ProjectConfig, error) {
	if configPath == "" {
		configPath = ConfigFileName
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", pgsplit.ErrInvalidConfig, err)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *ProjectConfig) {
	if cfg.Connection.Host == "" {
		cfg.Connection.Host = "localhost"
	}
	if cfg.Connection.Port == 0 {
		cfg.Connection.Port = 5432
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "schema"
	}
	if cfg.Connection.Password == "" {
		// PostgreSQL standard environment fallback.
		cfg.Connection.Password = os.Getenv("PGPASSWORD")
	}
}

func validate(cfg *ProjectConfig) error {
	if cfg.Connection.Database == "" {
		return fmt.Errorf("%w: connection.database is required", pgsplit.ErrInvalidConfig)
	}
	if cfg.Connection.Username == "" {
		return fmt.Errorf("%w: connection.username is required", pgsplit.ErrInvalidConfig)
	}
	return nil
}
