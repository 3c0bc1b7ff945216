package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config represents the hunterd configuration
type Config struct {
	Station struct {
		Callsign string `yaml:"callsign"`
		Grid     string `yaml:"grid"`
	} `yaml:"station"`

	CAT struct {
		Enabled bool   `yaml:"enabled"`
		Model   string `yaml:"model"`
		Port    string `yaml:"port"`
		// Baud 0 means auto-detect across the candidate rates.
		Baud          int    `yaml:"baud"`
		PollInterval  int    `yaml:"poll_interval_ms"`
		ReadTimeout   int    `yaml:"read_timeout_ms"`
		RegistryAsset string `yaml:"registry_file"`
	} `yaml:"cat"`

	Web struct {
		Port        int    `yaml:"port"`
		BindAddress string `yaml:"bind_address"`
	} `yaml:"web"`

	Storage struct {
		DatabasePath string `yaml:"database_path"`
		MaxEntries   int    `yaml:"max_entries"`
	} `yaml:"storage"`

	Logging struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		Console    bool   `yaml:"console"`
		Structured bool   `yaml:"structured"`
		MaxSize    int    `yaml:"max_size"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults
	if config.CAT.Model == "" {
		config.CAT.Model = "Generic Kenwood"
	}
	if config.CAT.PollInterval == 0 {
		config.CAT.PollInterval = 2000
	}
	if config.CAT.ReadTimeout == 0 {
		config.CAT.ReadTimeout = 300
	}
	if config.Web.Port == 0 {
		config.Web.Port = 8080
	}
	if config.Web.BindAddress == "" {
		config.Web.BindAddress = "0.0.0.0"
	}
	if config.Storage.DatabasePath == "" {
		config.Storage.DatabasePath = "./hunterd.db"
	}
	if config.Storage.MaxEntries == 0 {
		config.Storage.MaxEntries = 10000
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.MaxSize == 0 {
		config.Logging.MaxSize = 10
	}
	if config.Logging.MaxBackups == 0 {
		config.Logging.MaxBackups = 3
	}
	if config.Logging.MaxAge == 0 {
		config.Logging.MaxAge = 28
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Station.Callsign == "" {
		return fmt.Errorf("station callsign is required")
	}
	if c.CAT.Enabled && c.CAT.Port == "" {
		return fmt.Errorf("cat port is required when CAT control is enabled")
	}
	if c.CAT.Baud < 0 {
		return fmt.Errorf("cat baud must be zero (auto) or positive")
	}
	if c.CAT.PollInterval < 0 {
		return fmt.Errorf("cat poll_interval_ms must not be negative")
	}
	return nil
}
