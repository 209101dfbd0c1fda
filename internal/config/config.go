package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/muurk/fanlink/internal/device"
	"github.com/muurk/fanlink/internal/engine"
)

const (
	appName    = "fanlink"
	configFile = "config.yaml"
)

// Config is the complete fanlink configuration file.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Reconcile ReconcileConfig `yaml:"reconcile,omitempty"`
	Feed      FeedConfig      `yaml:"feed,omitempty"`
}

// DeviceConfig identifies the one fan this instance manages.
type DeviceConfig struct {
	Address  string `yaml:"address"`             // IP or hostname (e.g., "192.168.4.20")
	Port     int    `yaml:"port,omitempty"`      // HTTP port (default 80)
	MaxSpeed int    `yaml:"max_speed,omitempty"` // Highest speed step the firmware supports
}

// ReconcileConfig tunes the reconciliation loop timing.
type ReconcileConfig struct {
	Interval       time.Duration `yaml:"interval,omitempty"`        // Tick interval
	Cooldown       time.Duration `yaml:"cooldown,omitempty"`        // Guard release delay
	StatusTimeout  time.Duration `yaml:"status_timeout,omitempty"`  // Status query timeout
	CommandTimeout time.Duration `yaml:"command_timeout,omitempty"` // Command request timeout
}

// FeedConfig configures the optional WebSocket state feed.
type FeedConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"` // Serve the feed under 'fanlink run'
	Listen  string `yaml:"listen,omitempty"`  // Listen address (e.g., "127.0.0.1:8321")
}

// Default returns a configuration with every tunable at its default value.
// The device address has no sensible default and stays empty.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Port:     device.DefaultPort,
			MaxSpeed: device.DefaultMaxSpeed,
		},
		Reconcile: ReconcileConfig{
			Interval:       engine.DefaultInterval,
			Cooldown:       engine.DefaultCooldown,
			StatusTimeout:  device.DefaultStatusTimeout,
			CommandTimeout: device.DefaultCommandTimeout,
		},
		Feed: FeedConfig{
			Listen: "127.0.0.1:8321",
		},
	}
}

// GetConfigDir returns the OS-appropriate configuration directory for the
// application. This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/fanlink or $HOME/.config/fanlink
//   - macOS: $HOME/.config/fanlink (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\fanlink
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		// Linux and other Unix-like systems
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// Load reads and validates the configuration from the given path. An empty
// path selects the default location; a missing file at the default location
// yields the default configuration.
func Load(path string) (*Config, error) {
	defaulted := path == ""
	if defaulted {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && defaulted {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every configured value against its domain. An empty device
// address is allowed here; commands that need a device check for it
// themselves so that flag overrides can fill it in later.
func (c *Config) Validate() error {
	if c.Device.Port <= 0 || c.Device.Port > 65535 {
		return fmt.Errorf("device.port must be 1..65535, got %d", c.Device.Port)
	}
	if c.Device.MaxSpeed <= 0 {
		return fmt.Errorf("device.max_speed must be positive, got %d", c.Device.MaxSpeed)
	}
	if c.Reconcile.Interval <= 0 {
		return fmt.Errorf("reconcile.interval must be positive, got %v", c.Reconcile.Interval)
	}
	if c.Reconcile.Cooldown < 0 {
		return fmt.Errorf("reconcile.cooldown must not be negative, got %v", c.Reconcile.Cooldown)
	}
	if c.Reconcile.StatusTimeout <= 0 || c.Reconcile.CommandTimeout <= 0 {
		return fmt.Errorf("reconcile timeouts must be positive, got status=%v command=%v",
			c.Reconcile.StatusTimeout, c.Reconcile.CommandTimeout)
	}
	if c.Feed.Enabled && c.Feed.Listen == "" {
		return fmt.Errorf("feed.listen is required when the feed is enabled")
	}
	return nil
}

// BaseURL returns the device base URL built from address and port.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Device.Address, c.Device.Port)
}

// Save writes the configuration to the default location, creating the
// configuration directory if needed. The write is atomic.
func (c *Config) Save() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Fanlink Configuration File
#
# Location: ` + configPath + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename config file: %w", err)
	}
	return nil
}
