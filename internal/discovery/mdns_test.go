package discovery

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
)

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name       string
		entry      *zeroconf.ServiceEntry
		wantNil    bool
		wantSerial string
		wantIP     string
		wantPort   int
	}{
		{
			name: "valid fan device with IPv4",
			entry: &zeroconf.ServiceEntry{
				HostName: "eFan20417733.local.",
				Port:     80,
				AddrIPv4: []net.IP{net.ParseIP("192.168.4.20")},
				Text:     []string{"path=/", "fwver=0x213"},
			},
			wantSerial: "20417733",
			wantIP:     "192.168.4.20",
			wantPort:   80,
		},
		{
			name: "valid fan device without trailing dot",
			entry: &zeroconf.ServiceEntry{
				HostName: "eFan123456.local",
				Port:     80,
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
				Text:     []string{},
			},
			wantSerial: "123456",
			wantIP:     "10.0.0.5",
			wantPort:   80,
		},
		{
			name: "valid device with custom port",
			entry: &zeroconf.ServiceEntry{
				HostName: "eFan999.local",
				Port:     8080,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.100")},
			},
			wantSerial: "999",
			wantIP:     "192.168.1.100",
			wantPort:   8080,
		},
		{
			name: "zero port falls back to default",
			entry: &zeroconf.ServiceEntry{
				HostName: "eFan42.local",
				Port:     0,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.7")},
			},
			wantSerial: "42",
			wantIP:     "192.168.1.7",
			wantPort:   DefaultPort,
		},
		{
			name: "non-fan hostname",
			entry: &zeroconf.ServiceEntry{
				HostName: "printer.local.",
				Port:     631,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.50")},
			},
			wantNil: true,
		},
		{
			name: "empty hostname",
			entry: &zeroconf.ServiceEntry{
				HostName: "",
				Port:     80,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.51")},
			},
			wantNil: true,
		},
		{
			name: "no addresses",
			entry: &zeroconf.ServiceEntry{
				HostName: "eFan77.local",
				Port:     80,
			},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scanner.parseServiceEntry(tt.entry)
			if tt.wantNil {
				if got != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("parseServiceEntry() = nil, want device")
			}
			if got.Serial != tt.wantSerial {
				t.Errorf("Serial = %s, want %s", got.Serial, tt.wantSerial)
			}
			if got.IP != tt.wantIP {
				t.Errorf("IP = %s, want %s", got.IP, tt.wantIP)
			}
			if got.Port != tt.wantPort {
				t.Errorf("Port = %d, want %d", got.Port, tt.wantPort)
			}
		})
	}
}

func TestScanner_parseServiceEntry_Metadata(t *testing.T) {
	scanner := NewScanner()

	device := scanner.parseServiceEntry(&zeroconf.ServiceEntry{
		HostName: "eFan20417733.local.",
		Port:     80,
		AddrIPv4: []net.IP{net.ParseIP("192.168.4.20")},
		Text:     []string{"path=/", "fwver=0x213", "flag"},
	})
	if device == nil {
		t.Fatal("parseServiceEntry() = nil, want device")
	}

	if got := device.GetMetadata("fwver"); got != "0x213" {
		t.Errorf("GetMetadata(fwver) = %s, want 0x213", got)
	}
	if got := device.GetMetadata("flag"); got != "" {
		t.Errorf("GetMetadata(flag) = %q, want empty value", got)
	}
}
