package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/muurk/fanlink/internal/device"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "fanlink") {
		t.Errorf("GetConfigDir() = %v, should contain 'fanlink'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Device.Port != device.DefaultPort {
		t.Errorf("Default port = %d, want %d", cfg.Device.Port, device.DefaultPort)
	}
	if cfg.Device.MaxSpeed != device.DefaultMaxSpeed {
		t.Errorf("Default max speed = %d, want %d", cfg.Device.MaxSpeed, device.DefaultMaxSpeed)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `device:
  address: 192.168.4.20
  max_speed: 3
reconcile:
  interval: 5s
feed:
  enabled: true
  listen: 127.0.0.1:9000
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.Address != "192.168.4.20" {
		t.Errorf("Address = %s, want 192.168.4.20", cfg.Device.Address)
	}
	if cfg.Device.MaxSpeed != 3 {
		t.Errorf("MaxSpeed = %d, want 3", cfg.Device.MaxSpeed)
	}
	if cfg.Reconcile.Interval != 5*time.Second {
		t.Errorf("Interval = %v, want 5s", cfg.Reconcile.Interval)
	}

	// Unset values keep their defaults
	if cfg.Device.Port != device.DefaultPort {
		t.Errorf("Port = %d, want default %d", cfg.Device.Port, device.DefaultPort)
	}
	if cfg.Reconcile.Cooldown == 0 {
		t.Error("Cooldown should keep its default")
	}

	if cfg.BaseURL() != "http://192.168.4.20:80" {
		t.Errorf("BaseURL() = %s, want http://192.168.4.20:80", cfg.BaseURL())
	}
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with a missing explicit path should fail")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("device: [not a mapping"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero port", mutate: func(c *Config) { c.Device.Port = 0 }},
		{name: "port too large", mutate: func(c *Config) { c.Device.Port = 70000 }},
		{name: "zero max speed", mutate: func(c *Config) { c.Device.MaxSpeed = 0 }},
		{name: "zero interval", mutate: func(c *Config) { c.Reconcile.Interval = 0 }},
		{name: "negative cooldown", mutate: func(c *Config) { c.Reconcile.Cooldown = -time.Second }},
		{name: "zero status timeout", mutate: func(c *Config) { c.Reconcile.StatusTimeout = 0 }},
		{name: "feed enabled without listen", mutate: func(c *Config) {
			c.Feed.Enabled = true
			c.Feed.Listen = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}
