package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	// Create a temporary directory for test files
	tempDir, err := os.MkdirTemp("", "hunterd-config-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	writeConfig := func(t *testing.T, name, content string) string {
		t.Helper()
		path := filepath.Join(tempDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}
		return path
	}

	t.Run("Valid Config", func(t *testing.T) {
		configContent := `
station:
  callsign: "K3DEP"
  grid: "FN20"

cat:
  enabled: true
  model: "FT-891"
  port: "/dev/ttyUSB0"
  baud: 38400
  poll_interval_ms: 1000

web:
  port: 8090
  bind_address: "127.0.0.1"

storage:
  database_path: "/tmp/hunterd.db"
  max_entries: 5000

logging:
  level: "debug"
  file: "/var/log/hunterd.log"
  console: true
`
		config, err := LoadConfig(writeConfig(t, "valid.yaml", configContent))
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		if config.Station.Callsign != "K3DEP" {
			t.Errorf("Expected callsign K3DEP, got: %s", config.Station.Callsign)
		}
		if config.Station.Grid != "FN20" {
			t.Errorf("Expected grid FN20, got: %s", config.Station.Grid)
		}
		if !config.CAT.Enabled {
			t.Error("Expected CAT to be enabled")
		}
		if config.CAT.Model != "FT-891" {
			t.Errorf("Expected model FT-891, got: %s", config.CAT.Model)
		}
		if config.CAT.Baud != 38400 {
			t.Errorf("Expected baud 38400, got: %d", config.CAT.Baud)
		}
		if config.CAT.PollInterval != 1000 {
			t.Errorf("Expected poll interval 1000, got: %d", config.CAT.PollInterval)
		}
		if config.Web.Port != 8090 {
			t.Errorf("Expected web port 8090, got: %d", config.Web.Port)
		}
		if config.Storage.MaxEntries != 5000 {
			t.Errorf("Expected max entries 5000, got: %d", config.Storage.MaxEntries)
		}
		if config.Logging.Level != "debug" {
			t.Errorf("Expected log level debug, got: %s", config.Logging.Level)
		}
	})

	t.Run("Defaults Applied", func(t *testing.T) {
		configContent := `
station:
  callsign: "K3DEP"
`
		config, err := LoadConfig(writeConfig(t, "minimal.yaml", configContent))
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		if config.CAT.Model != "Generic Kenwood" {
			t.Errorf("Expected default model Generic Kenwood, got: %s", config.CAT.Model)
		}
		if config.CAT.Baud != 0 {
			t.Errorf("Expected default baud 0 (auto-detect), got: %d", config.CAT.Baud)
		}
		if config.CAT.PollInterval != 2000 {
			t.Errorf("Expected default poll interval 2000, got: %d", config.CAT.PollInterval)
		}
		if config.CAT.ReadTimeout != 300 {
			t.Errorf("Expected default read timeout 300, got: %d", config.CAT.ReadTimeout)
		}
		if config.Web.Port != 8080 {
			t.Errorf("Expected default web port 8080, got: %d", config.Web.Port)
		}
		if config.Web.BindAddress != "0.0.0.0" {
			t.Errorf("Expected default bind address 0.0.0.0, got: %s", config.Web.BindAddress)
		}
		if config.Storage.DatabasePath != "./hunterd.db" {
			t.Errorf("Expected default database path ./hunterd.db, got: %s", config.Storage.DatabasePath)
		}
		if config.Storage.MaxEntries != 10000 {
			t.Errorf("Expected default max entries 10000, got: %d", config.Storage.MaxEntries)
		}
		if config.Logging.Level != "info" {
			t.Errorf("Expected default log level info, got: %s", config.Logging.Level)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(tempDir, "does-not-exist.yaml"))
		if err == nil {
			t.Error("Expected error for missing config file")
		}
	})

	t.Run("Invalid YAML", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "broken.yaml", "station: [unclosed"))
		if err == nil {
			t.Error("Expected error for invalid YAML")
		}
		if err != nil && !strings.Contains(err.Error(), "parse") {
			t.Errorf("Expected parse error, got: %v", err)
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.Station.Callsign = "K3DEP"
		c.CAT.Enabled = true
		c.CAT.Port = "/dev/ttyUSB0"
		return c
	}

	t.Run("Valid", func(t *testing.T) {
		if err := valid().Validate(); err != nil {
			t.Errorf("Expected valid config, got: %v", err)
		}
	})

	t.Run("Missing Callsign", func(t *testing.T) {
		c := valid()
		c.Station.Callsign = ""
		if err := c.Validate(); err == nil {
			t.Error("Expected error for missing callsign")
		}
	})

	t.Run("CAT Enabled Without Port", func(t *testing.T) {
		c := valid()
		c.CAT.Port = ""
		if err := c.Validate(); err == nil {
			t.Error("Expected error for enabled CAT without a port")
		}
	})

	t.Run("CAT Disabled Without Port", func(t *testing.T) {
		c := valid()
		c.CAT.Enabled = false
		c.CAT.Port = ""
		if err := c.Validate(); err != nil {
			t.Errorf("Port is optional with CAT disabled, got: %v", err)
		}
	})

	t.Run("Negative Baud", func(t *testing.T) {
		c := valid()
		c.CAT.Baud = -1
		if err := c.Validate(); err == nil {
			t.Error("Expected error for negative baud")
		}
	})

	t.Run("Negative Poll Interval", func(t *testing.T) {
		c := valid()
		c.CAT.PollInterval = -5
		if err := c.Validate(); err == nil {
			t.Error("Expected error for negative poll interval")
		}
	})
}
