package metadata

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"

	"github.com/netinit-io/netinit/internal/model"
)

// interfaceInfo is the set of fields derivable from an address and an
// optional netmask: the normalized address, the concrete netmask, the
// network broadcast address and the IP version.
type interfaceInfo struct {
	IPAddress string
	Netmask   string
	Broadcast string
	Version   int
}

// digestInterface computes the derived interface fields. The address
// may already carry a prefix ("192.168.1.10/24"); the netmask may be a
// dotted-quad or hex-colon mask, or a bare prefix length. The result is
// exact for both IPv4 and IPv6.
func digestInterface(ipAddress, netmask string) (interfaceInfo, error) {
	addrPart := ipAddress
	maskPart := netmask
	if i := strings.IndexByte(ipAddress, '/'); i >= 0 {
		if netmask != "" {
			return interfaceInfo{}, fmt.Errorf(
				"address %q already carries a prefix, cannot also apply netmask %q",
				ipAddress, netmask)
		}
		addrPart, maskPart = ipAddress[:i], ipAddress[i+1:]
	}

	addr, err := netip.ParseAddr(addrPart)
	if err != nil {
		return interfaceInfo{}, fmt.Errorf("parsing address %q: %w", addrPart, err)
	}
	addr = addr.Unmap()

	bits := addr.BitLen()
	if maskPart != "" {
		bits, err = maskBits(maskPart, addr.BitLen())
		if err != nil {
			return interfaceInfo{}, err
		}
	}

	prefix, err := addr.Prefix(bits)
	if err != nil {
		return interfaceInfo{}, fmt.Errorf("applying prefix /%d to %q: %w", bits, addrPart, err)
	}

	version := model.IPv6
	if addr.Is4() {
		version = model.IPv4
	}

	return interfaceInfo{
		IPAddress: addr.String(),
		Netmask:   net.IP(net.CIDRMask(bits, addr.BitLen())).String(),
		Broadcast: broadcastAddr(prefix).String(),
		Version:   version,
	}, nil
}

// maskBits converts a netmask representation to a prefix length:
// either a bare length ("24") or a concrete mask ("255.255.255.0",
// "ffff:ffff::"). Non-contiguous masks are rejected.
func maskBits(mask string, addrBits int) (int, error) {
	if n, err := strconv.Atoi(mask); err == nil {
		if n < 0 || n > addrBits {
			return 0, fmt.Errorf("prefix length %d out of range for a %d-bit address", n, addrBits)
		}
		return n, nil
	}

	ip := net.ParseIP(mask)
	if ip == nil {
		return 0, fmt.Errorf("invalid netmask %q", mask)
	}
	bytes := []byte(ip)
	if v4 := ip.To4(); v4 != nil && addrBits == 32 {
		bytes = v4
	} else if addrBits == 32 {
		return 0, fmt.Errorf("netmask %q does not match an IPv4 address", mask)
	} else {
		bytes = ip.To16()
	}

	ones, total := net.IPMask(bytes).Size()
	if total != addrBits || (ones == 0 && total == 0) {
		return 0, fmt.Errorf("netmask %q is not a contiguous mask", mask)
	}
	return ones, nil
}

// broadcastAddr returns the highest address of the prefix's network.
func broadcastAddr(prefix netip.Prefix) netip.Addr {
	base := prefix.Masked().Addr()
	if base.Is4() {
		raw := base.As4()
		mask := net.CIDRMask(prefix.Bits(), 32)
		for i := range raw {
			raw[i] |= ^mask[i]
		}
		return netip.AddrFrom4(raw)
	}

	raw := base.As16()
	mask := net.CIDRMask(prefix.Bits(), 128)
	for i := range raw {
		raw[i] |= ^mask[i]
	}
	return netip.AddrFrom16(raw)
}
