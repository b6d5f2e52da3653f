// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"irs-mortality/adapters/tablefile"
	"irs-mortality/core/determinism"
	"irs-mortality/core/output"
	"irs-mortality/internal/errors"
	"irs-mortality/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" yaml:"version"`

	// Data locates the mortality data set
	Data DataConfig `json:"data" yaml:"data"`

	// Calculation contains rounding settings
	Calculation CalculationConfig `json:"calculation" yaml:"calculation"`

	// Output contains output configuration
	Output OutputConfig `json:"output" yaml:"output"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging"`
}

// DataConfig locates the data set on disk
type DataConfig struct {
	// Directory is the root of the data set
	Directory string `json:"directory" yaml:"directory"`

	// Layout names the table files relative to Directory
	Layout tablefile.Layout `json:"layout" yaml:"layout"`
}

// CalculationConfig contains rounding settings
type CalculationConfig struct {
	// FinalPrecision is the decimal places of static and 417e rates
	FinalPrecision int32 `json:"final_precision" yaml:"final_precision"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format" yaml:"default_format"`

	// NoColor disables terminal colors
	NoColor bool `json:"no_color" yaml:"no_color"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr" yaml:"addr"`

	// WatchData reloads tables when data files change
	WatchData bool `json:"watch_data" yaml:"watch_data"`

	// ShutdownTimeoutSeconds bounds graceful shutdown
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds"`
}

// ShutdownTimeout returns the graceful shutdown bound
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Data: DataConfig{
			Directory: "./Data",
			Layout:    tablefile.DefaultLayout(),
		},
		Calculation: CalculationConfig{
			FinalPrecision: determinism.DefaultFinalPlaces,
		},
		Output: OutputConfig{
			DefaultFormat: string(output.FormatCLI),
		},
		Server: ServerConfig{
			Addr:                   ":8080",
			WatchData:              false,
			ShutdownTimeoutSeconds: 10,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file. A missing file yields defaults.
// Files ending in .yaml or .yml are YAML; anything else is JSON.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Config("read "+path, err)
	}

	config := Default()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, errors.Config("parse "+path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks structural constraints
func (c *Config) Validate() error {
	if c.Data.Directory == "" {
		return errors.Config("data.directory is required", nil)
	}
	if p := c.Calculation.FinalPrecision; p < 1 || p > determinism.CheckpointPlaces {
		return errors.Newf(errors.TypeConfig, "calculation.final_precision must be between 1 and %d, got %d",
			determinism.CheckpointPlaces, p)
	}
	if _, err := output.ParseFormat(c.Output.DefaultFormat); err != nil {
		return errors.Config("output.default_format", err)
	}
	if c.Server.Addr == "" {
		return errors.Config("server.addr is required", nil)
	}
	if c.Server.ShutdownTimeoutSeconds < 0 {
		return errors.Config("server.shutdown_timeout_seconds must not be negative", nil)
	}
	return nil
}

// Save saves configuration to a file in the format its extension names
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
