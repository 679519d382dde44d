// Package plugin contains the provisioning steps that consume the
// normalized metadata model.
package plugin

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/netinit-io/netinit/internal/hostnet"
	"github.com/netinit-io/netinit/internal/log"
	"github.com/netinit-io/netinit/internal/model"
)

// ErrInvalidNetworkDetails reports a snapshot that was not produced by
// the metadata builder. Passing one is a caller bug, not an
// operational failure, and it aborts the plugin.
var ErrInvalidNetworkDetails = errors.New("invalid network details snapshot")

// UnsupportedLinkTypeError reports a link the configuration layer
// cannot act on. It is isolated to that one link.
type UnsupportedLinkTypeError struct {
	Type string
}

func (e *UnsupportedLinkTypeError) Error() string {
	return fmt.Sprintf("the %q interface type is not supported", e.Type)
}

// Result summarizes one plugin pass over the link graph.
type Result struct {
	RebootRequired  bool
	ConfiguredLinks int
	FailedLinks     int
}

// NetworkConfig statically configures each host adapter for which the
// metadata carries network details.
type NetworkConfig struct {
	os     hostnet.Configurer
	logger *slog.Logger
}

// NewNetworkConfig returns the plugin bound to an OS configurer.
func NewNetworkConfig(configurer hostnet.Configurer) *NetworkConfig {
	return &NetworkConfig{
		os:     configurer,
		logger: log.With("component", "networkconfig"),
	}
}

// Execute applies the snapshot and reports whether a reboot is
// required. A nil snapshot means the metadata source had no network
// information, which is a legitimate nothing-to-do outcome.
func (p *NetworkConfig) Execute(details *model.NetworkDetails) (bool, error) {
	result, err := p.Apply(details)
	return result.RebootRequired, err
}

// Apply is Execute with per-link accounting. Per-link failures are
// logged and absorbed; the loop always finishes the remaining links.
func (p *NetworkConfig) Apply(details *model.NetworkDetails) (Result, error) {
	if details == nil {
		p.logger.Debug("network information is not available")
		return Result{}, nil
	}
	if !details.Valid() {
		return Result{}, ErrInvalidNetworkDetails
	}

	var result Result
	for _, linkID := range details.Links() {
		link, ok := details.Link(linkID)
		if !ok {
			continue
		}
		rebootRequired, err := p.configureLink(details, link)
		if err != nil {
			result.FailedLinks++
			p.logger.Error("failed to configure the interface",
				"name", link.Name, "mac", link.MACAddress, "error", err)
			continue
		}
		result.ConfiguredLinks++
		result.RebootRequired = result.RebootRequired || rebootRequired
	}

	if result.ConfiguredLinks == 0 {
		p.logger.Error("no adapters were configured")
	}
	return result, nil
}

// configureLink dispatches every network assigned to the link. Only
// physical links can be configured statically.
func (p *NetworkConfig) configureLink(details *model.NetworkDetails, link model.Link) (bool, error) {
	p.logger.Debug("configuring link", "name", link.Name, "mac", link.MACAddress)
	if link.Type != model.LinkTypePhy {
		return false, &UnsupportedLinkTypeError{Type: link.Type}
	}

	rebootRequired := false
	for _, networkID := range details.Networks(link.ID) {
		network, ok := details.Network(networkID)
		if !ok {
			continue
		}
		p.logger.Debug("configuring network", "id", network.ID)

		var reboot bool
		var err error
		if network.Version == model.IPv4 {
			reboot, err = p.os.StaticV4(hostnet.V4Config{
				MACAddress:     link.MACAddress,
				Address:        network.IPAddress,
				Netmask:        network.Netmask,
				Broadcast:      network.Broadcast,
				Gateway:        network.Gateway,
				DNSNameservers: network.DNSNameservers,
			})
		} else {
			reboot, err = p.os.StaticV6(hostnet.V6Config{
				MACAddress: link.MACAddress,
				Address:    network.IPAddress,
				Netmask:    network.Netmask,
				Gateway:    network.Gateway,
			})
		}
		if err != nil {
			return false, fmt.Errorf("applying network %q: %w", network.ID, err)
		}
		rebootRequired = rebootRequired || reboot
	}
	return rebootRequired, nil
}
