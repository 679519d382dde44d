package metadata

import (
	"fmt"
	"net/netip"
	"testing"

	"pgregory.net/rapid"
)

func TestDigestInterface(t *testing.T) {
	tests := []struct {
		name      string
		ipAddress string
		netmask   string
		want      interfaceInfo
	}{
		{
			name:      "IPv4 with dotted netmask",
			ipAddress: "10.0.0.5",
			netmask:   "255.255.255.0",
			want: interfaceInfo{
				IPAddress: "10.0.0.5",
				Netmask:   "255.255.255.0",
				Broadcast: "10.0.0.255",
				Version:   4,
			},
		},
		{
			name:      "IPv4 with prefix notation",
			ipAddress: "192.168.1.10/24",
			want: interfaceInfo{
				IPAddress: "192.168.1.10",
				Netmask:   "255.255.255.0",
				Broadcast: "192.168.1.255",
				Version:   4,
			},
		},
		{
			name:      "IPv4 with bare prefix length as netmask",
			ipAddress: "172.16.4.9",
			netmask:   "20",
			want: interfaceInfo{
				IPAddress: "172.16.4.9",
				Netmask:   "255.255.240.0",
				Broadcast: "172.16.15.255",
				Version:   4,
			},
		},
		{
			name:      "IPv4 without netmask is a host address",
			ipAddress: "10.1.2.3",
			want: interfaceInfo{
				IPAddress: "10.1.2.3",
				Netmask:   "255.255.255.255",
				Broadcast: "10.1.2.3",
				Version:   4,
			},
		},
		{
			name:      "IPv6 with prefix notation",
			ipAddress: "2001:db8::5/64",
			want: interfaceInfo{
				IPAddress: "2001:db8::5",
				Netmask:   "ffff:ffff:ffff:ffff::",
				Broadcast: "2001:db8::ffff:ffff:ffff:ffff",
				Version:   6,
			},
		},
		{
			name:      "IPv6 with bare prefix length",
			ipAddress: "fe80::1",
			netmask:   "10",
			want: interfaceInfo{
				IPAddress: "fe80::1",
				Netmask:   "ffc0::",
				Broadcast: "febf:ffff:ffff:ffff:ffff:ffff:ffff:ffff",
				Version:   6,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := digestInterface(tt.ipAddress, tt.netmask)
			if err != nil {
				t.Fatalf("digestInterface() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("digestInterface() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDigestInterface_Errors(t *testing.T) {
	tests := []struct {
		name      string
		ipAddress string
		netmask   string
	}{
		{"garbage address", "not-an-address", "255.255.255.0"},
		{"prefix and netmask together", "10.0.0.5/24", "255.255.255.0"},
		{"prefix length out of range", "10.0.0.5", "40"},
		{"non-contiguous netmask", "10.0.0.5", "255.0.255.0"},
		{"IPv6 netmask on IPv4 address", "10.0.0.5", "ffff::"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := digestInterface(tt.ipAddress, tt.netmask); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

// Property: for any IPv4 interface, the broadcast is the highest
// address of the derived network and the normalized address round-trips
// through the parser.
func TestDigestInterface_IPv4Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		octets := rapid.SliceOfN(rapid.IntRange(0, 255), 4, 4).Draw(t, "octets")
		bits := rapid.IntRange(0, 32).Draw(t, "bits")
		address := fmt.Sprintf("%d.%d.%d.%d", octets[0], octets[1], octets[2], octets[3])

		info, err := digestInterface(address, fmt.Sprintf("%d", bits))
		if err != nil {
			t.Fatalf("digestInterface(%s/%d) failed: %v", address, bits, err)
		}
		if info.Version != 4 {
			t.Fatalf("expected version 4, got %d", info.Version)
		}
		if info.IPAddress != address {
			t.Fatalf("normalized address changed: %s -> %s", address, info.IPAddress)
		}

		addr := netip.MustParseAddr(address)
		prefix, err := addr.Prefix(bits)
		if err != nil {
			t.Fatalf("prefix: %v", err)
		}
		broadcast := netip.MustParseAddr(info.Broadcast)
		if !prefix.Contains(broadcast) {
			t.Fatalf("broadcast %s outside network %s", broadcast, prefix)
		}
		if prefix.Contains(broadcast.Next()) {
			t.Fatalf("broadcast %s is not the highest address of %s", broadcast, prefix)
		}
	})
}
