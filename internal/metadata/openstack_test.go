package metadata

import (
	"testing"

	"github.com/netinit-io/netinit/internal/hostnet"
	"github.com/netinit-io/netinit/internal/model"
)

const openStackNetworkDataJSON = `{
  "links": [
    {
      "id": "interface0",
      "ethernet_mac_address": "a1:b2:c3:d4:e5:f6",
      "type": "phy",
      "mtu": 1500
    },
    {
      "id": "interface1",
      "ethernet_mac_address": "a1:b2:c3:d4:e5:f7",
      "type": "vif"
    }
  ],
  "networks": [
    {
      "id": "network0",
      "type": "ipv4",
      "link": "interface0",
      "ip_address": "10.184.0.244",
      "netmask": "255.255.240.0",
      "gateway": "10.184.0.1",
      "dns_nameservers": ["8.8.8.8", "8.8.4.4"]
    },
    {
      "id": "network1",
      "type": "ipv6",
      "link": "interface1",
      "ip_address": "2001:db8::10/64",
      "gateway": "2001:db8::1"
    }
  ]
}`

func TestOpenStackBuilder_Digest(t *testing.T) {
	builder := NewOpenStackBuilder([]byte(openStackNetworkDataJSON))
	details, err := builder.NetworkDetails()
	if err != nil {
		t.Fatalf("NetworkDetails() error = %v", err)
	}

	linkIDs := details.Links()
	if len(linkIDs) != 2 {
		t.Fatalf("expected both links to survive, got %v", linkIDs)
	}

	link, ok := details.Link("interface0")
	if !ok {
		t.Fatal("expected interface0 in the snapshot")
	}
	if link.Name != "interface0" {
		t.Errorf("expected the name resolved via the provider alias, got %q", link.Name)
	}
	if link.MACAddress != "a1:b2:c3:d4:e5:f6" {
		t.Errorf("expected the MAC resolved via ethernet_mac_address, got %q", link.MACAddress)
	}
	if link.MTU != 1500 {
		t.Errorf("expected mtu 1500, got %d", link.MTU)
	}

	v4IDs := details.Networks("interface0")
	if len(v4IDs) != 1 {
		t.Fatalf("expected one network on interface0, got %v", v4IDs)
	}
	network, _ := details.Network(v4IDs[0])
	if network.Version != model.IPv4 {
		t.Errorf("expected ipv4 mapped to version 4, got %d", network.Version)
	}
	if network.Broadcast != "10.184.15.255" {
		t.Errorf("expected the derived broadcast, got %q", network.Broadcast)
	}
	if len(network.DNSNameservers) != 2 {
		t.Errorf("expected both nameservers, got %v", network.DNSNameservers)
	}
	if network.AssignedTo != "interface0" {
		t.Errorf("expected assignment resolved via the link alias, got %q", network.AssignedTo)
	}

	v6IDs := details.Networks("interface1")
	if len(v6IDs) != 1 {
		t.Fatalf("expected one network on interface1, got %v", v6IDs)
	}
	network6, _ := details.Network(v6IDs[0])
	if network6.Version != model.IPv6 {
		t.Errorf("expected version 6, got %d", network6.Version)
	}
	if network6.Netmask != "ffff:ffff:ffff:ffff::" {
		t.Errorf("expected the derived IPv6 netmask, got %q", network6.Netmask)
	}
}

func TestOpenStackBuilder_UnassignedNetworkRejected(t *testing.T) {
	data := `{
	  "links": [
	    {"id": "interface0", "ethernet_mac_address": "a1:b2:c3:d4:e5:f6"}
	  ],
	  "networks": [
	    {"id": "network0", "type": "ipv4", "ip_address": "10.0.0.5",
	     "netmask": "255.255.255.0", "gateway": "10.0.0.1"}
	  ]
	}`

	details, err := NewOpenStackBuilder([]byte(data)).NetworkDetails()
	if err != nil {
		t.Fatalf("NetworkDetails() error = %v", err)
	}

	// The provider requires assignment: the network is rejected and the
	// now network-less link is pruned.
	if _, ok := details.Network("network0"); ok {
		t.Error("expected the unassigned network to be rejected")
	}
	if got := details.Links(); len(got) != 0 {
		t.Errorf("expected the link to be pruned, got %v", got)
	}
}

func TestOpenStackBuilder_MACRecovery(t *testing.T) {
	data := `{
	  "links": [{"id": "ens3"}],
	  "networks": [
	    {"id": "network0", "type": "ipv4", "link": "ens3",
	     "ip_address": "10.0.0.5", "netmask": "255.255.255.0", "gateway": "10.0.0.1"}
	  ]
	}`
	adapters := []hostnet.Adapter{{Name: "ens3", MAC: "aa:bb:cc:dd:ee:33"}}

	details, err := NewOpenStackBuilder([]byte(data), WithAdapters(adapters)).NetworkDetails()
	if err != nil {
		t.Fatalf("NetworkDetails() error = %v", err)
	}

	link, ok := details.Link("ens3")
	if !ok {
		t.Fatal("expected ens3 recovered through the adapter list")
	}
	if link.MACAddress != "aa:bb:cc:dd:ee:33" {
		t.Errorf("expected the recovered MAC, got %q", link.MACAddress)
	}
}

func TestOpenStackBuilder_InvalidJSON(t *testing.T) {
	if _, err := NewOpenStackBuilder([]byte("{not json")).NetworkDetails(); err == nil {
		t.Error("expected a digest error for unparseable metadata")
	}
}
