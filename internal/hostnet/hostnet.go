// Package hostnet is the boundary to the host's network stack: adapter
// enumeration plus the static configuration primitives consumed by the
// network-configuration plugin.
package hostnet

import (
	"fmt"
	"net"
)

// Adapter is one live network adapter on the host.
type Adapter struct {
	Name string
	MAC  string
}

// V4Config carries the parameters for a static IPv4 assignment.
type V4Config struct {
	MACAddress     string
	Address        string
	Netmask        string
	Broadcast      string
	Gateway        string
	DNSNameservers []string
}

// V6Config carries the parameters for a static IPv6 assignment.
type V6Config struct {
	MACAddress string
	Address    string
	Netmask    string
	Gateway    string
}

// Configurer applies a static network configuration to one adapter,
// addressed by MAC. The boolean result reports whether the change
// requires a reboot to take effect.
type Configurer interface {
	StaticV4(cfg V4Config) (bool, error)
	StaticV6(cfg V6Config) (bool, error)
}

// Adapters enumerates the host's network adapters, skipping loopback
// and interfaces without a hardware address.
func Adapters() ([]Adapter, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("enumerating host interfaces: %w", err)
	}

	adapters := make([]Adapter, 0, len(interfaces))
	for _, iface := range interfaces {
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) == 0 {
			continue
		}
		adapters = append(adapters, Adapter{
			Name: iface.Name,
			MAC:  iface.HardwareAddr.String(),
		})
	}
	return adapters, nil
}

// interfaceByMAC finds the host interface carrying the given MAC.
func interfaceByMAC(mac string) (string, error) {
	hw, err := net.ParseMAC(mac)
	if err != nil {
		return "", fmt.Errorf("parsing MAC %q: %w", mac, err)
	}

	interfaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("enumerating host interfaces: %w", err)
	}
	for _, iface := range interfaces {
		if iface.HardwareAddr.String() == hw.String() {
			return iface.Name, nil
		}
	}
	return "", fmt.Errorf("no host interface with MAC %q", mac)
}
