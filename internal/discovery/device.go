package discovery

import (
	"fmt"
	"time"
)

// Device represents a discovered fan device on the network
type Device struct {
	// Serial is the device serial number (e.g., "20417733")
	Serial string

	// Hostname is the mDNS hostname (e.g., "eFan20417733.local")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.4.20")
	IP string

	// Port is the HTTP port (typically 80)
	Port int

	// Metadata contains additional mDNS TXT record data
	// Common fields: "path=/", "fwver=0x213"
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("Fan %s (%s) at %s:%d", d.Serial, d.Hostname, d.IP, d.Port)
}

// BaseURL returns the HTTP base URL for the device
func (d *Device) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", d.IP, d.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
