package hostnet

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"

	"github.com/netinit-io/netinit/internal/log"
)

const resolvConfPath = "/etc/resolv.conf"

// IPRouteConfigurer applies static configuration through the Linux
// "ip" command. Address changes via netlink take effect immediately,
// so it never asks for a reboot.
type IPRouteConfigurer struct{}

var _ Configurer = (*IPRouteConfigurer)(nil)

func (c *IPRouteConfigurer) StaticV4(cfg V4Config) (bool, error) {
	name, err := interfaceByMAC(cfg.MACAddress)
	if err != nil {
		return false, err
	}

	prefix, err := prefixLength(cfg.Netmask)
	if err != nil {
		return false, err
	}

	address := fmt.Sprintf("%s/%d", cfg.Address, prefix)
	args := []string{"addr", "replace", address}
	if cfg.Broadcast != "" {
		args = append(args, "broadcast", cfg.Broadcast)
	}
	args = append(args, "dev", name)
	if err := runIP(args...); err != nil {
		return false, err
	}

	if err := runIP("link", "set", name, "up"); err != nil {
		return false, err
	}
	if err := runIP("route", "replace", "default", "via", cfg.Gateway, "dev", name); err != nil {
		return false, err
	}

	if len(cfg.DNSNameservers) > 0 {
		if err := writeResolvConf(cfg.DNSNameservers); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (c *IPRouteConfigurer) StaticV6(cfg V6Config) (bool, error) {
	name, err := interfaceByMAC(cfg.MACAddress)
	if err != nil {
		return false, err
	}

	prefix, err := prefixLength(cfg.Netmask)
	if err != nil {
		return false, err
	}

	address := fmt.Sprintf("%s/%d", cfg.Address, prefix)
	if err := runIP("-6", "addr", "replace", address, "dev", name); err != nil {
		return false, err
	}
	if err := runIP("link", "set", name, "up"); err != nil {
		return false, err
	}
	if cfg.Gateway != "" {
		if err := runIP("-6", "route", "replace", "default", "via", cfg.Gateway, "dev", name); err != nil {
			return false, err
		}
	}
	return false, nil
}

func runIP(args ...string) error {
	cmd := exec.Command("ip", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("'ip %s' failed: %v: %s",
			strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	log.Debug("applied host network change", "command", "ip "+strings.Join(args, " "))
	return nil
}

// prefixLength converts a concrete netmask (or bare prefix length
// string) to a prefix length.
func prefixLength(netmask string) (int, error) {
	if !strings.ContainsAny(netmask, ".:") {
		var n int
		if _, err := fmt.Sscanf(netmask, "%d", &n); err != nil {
			return 0, fmt.Errorf("invalid netmask %q", netmask)
		}
		return n, nil
	}

	ip := net.ParseIP(netmask)
	if ip == nil {
		return 0, fmt.Errorf("invalid netmask %q", netmask)
	}
	bytes := []byte(ip.To16())
	if v4 := ip.To4(); v4 != nil {
		bytes = v4
	}
	ones, total := net.IPMask(bytes).Size()
	if ones == 0 && total == 0 {
		return 0, fmt.Errorf("netmask %q is not a contiguous mask", netmask)
	}
	return ones, nil
}

func writeResolvConf(nameservers []string) error {
	var sb strings.Builder
	for _, server := range nameservers {
		fmt.Fprintf(&sb, "nameserver %s\n", server)
	}
	if err := os.WriteFile(resolvConfPath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", resolvConfPath, err)
	}
	return nil
}
