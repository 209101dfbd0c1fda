// Package config provides the YAML configuration file for fanlink.
//
// The configuration identifies the one fan device an instance manages and
// tunes the reconciliation loop timing and the optional WebSocket state feed.
// Every value except the device address has a working default; a missing
// configuration file is not an error.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/fanlink/config.yaml or $HOME/.config/fanlink/config.yaml
//   - macOS: $HOME/.config/fanlink/config.yaml
//   - Windows: %LOCALAPPDATA%\fanlink\config.yaml
//
// # Example
//
//	device:
//	  address: 192.168.4.20
//	  port: 80
//	  max_speed: 5
//	reconcile:
//	  interval: 2s
//	  cooldown: 1s
//	  status_timeout: 3s
//	  command_timeout: 5s
//	feed:
//	  enabled: true
//	  listen: 127.0.0.1:8321
package config
