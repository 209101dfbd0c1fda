// Package discovery provides mDNS-based device discovery for fan devices.
//
// The fan firmware advertises its HTTP control endpoint as a "_http._tcp"
// service with a hostname of the form "eFan{serial}.local". This package
// broadcasts multicast DNS queries on the local network, filters the
// responses down to fan devices, and returns device records carrying the
// hostname, IPv4 address, serial number and TXT metadata.
//
// # Usage Example
//
//	// Discover devices with 10-second timeout
//	devices, err := discovery.ScanForDevices(10 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, device := range devices {
//	    fmt.Printf("Found: %s at %s (Serial: %s)\n",
//	        device.Hostname, device.IP, device.Serial)
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Devices must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can
// run simultaneously without interference.
package discovery
