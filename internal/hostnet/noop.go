package hostnet

import "github.com/netinit-io/netinit/internal/log"

// NoopConfigurer logs the configuration it would apply without touching
// the host. Used for dry runs and local development, where the agent
// must get through a provisioning pass without root access.
type NoopConfigurer struct{}

var _ Configurer = (*NoopConfigurer)(nil)

func (c *NoopConfigurer) StaticV4(cfg V4Config) (bool, error) {
	log.Info("dry run: would configure IPv4 adapter",
		"mac", cfg.MACAddress,
		"address", cfg.Address,
		"netmask", cfg.Netmask,
		"broadcast", cfg.Broadcast,
		"gateway", cfg.Gateway,
		"dns", cfg.DNSNameservers)
	return false, nil
}

func (c *NoopConfigurer) StaticV6(cfg V6Config) (bool, error) {
	log.Info("dry run: would configure IPv6 adapter",
		"mac", cfg.MACAddress,
		"address", cfg.Address,
		"netmask", cfg.Netmask,
		"gateway", cfg.Gateway)
	return false, nil
}
