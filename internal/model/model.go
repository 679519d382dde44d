package model

import (
	"fmt"
	"sort"
)

// Link types understood by the configuration layer.
const (
	LinkTypePhy  = "phy"
	LinkTypeBond = "bond"
	LinkTypeVIF  = "vif"
)

// IP versions.
const (
	IPv4 = 4
	IPv6 = 6
)

// Canonical field names shared between the metadata digester and the
// model constructors.
const (
	FieldAssignedTo     = "assigned_to"
	FieldBondLinks      = "bond_links"
	FieldBondMode       = "bond_mode"
	FieldBroadcast      = "broadcast"
	FieldDNSNameservers = "dns_nameservers"
	FieldGateway        = "gateway"
	FieldID             = "id"
	FieldIPAddress      = "ip_address"
	FieldMACAddress     = "mac_address"
	FieldMTU            = "mtu"
	FieldName           = "name"
	FieldNetmask        = "netmask"
	FieldType           = "type"
	FieldVersion        = "version"
	FieldVLANID         = "vlan_id"
	FieldVLANLink       = "vlan_link"
)

// MalformedRecordError reports a resolved record that cannot be
// assembled into its target entity. This is a schema-contract
// violation in the normalization pipeline, not bad provider data,
// and it aborts the whole digest.
type MalformedRecordError struct {
	Entity string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record: %s", e.Entity, e.Reason)
}

// Link is a network interface described by provider metadata.
type Link struct {
	ID         string
	Name       string
	Type       string
	MACAddress string
	MTU        int
	BondLinks  []string
	BondMode   string
	VLANID     int
	VLANLink   string
}

// Network is an IP configuration assigned to exactly one link.
type Network struct {
	ID             string
	IPAddress      string
	Version        int
	Netmask        string
	Gateway        string
	Broadcast      string
	DNSNameservers []string
	AssignedTo     string
}

// NewLink assembles a Link from a fully resolved record. Unexpected
// keys or values that cannot be coerced fail with MalformedRecordError.
func NewLink(record map[string]any) (Link, error) {
	var link Link
	for key, value := range record {
		switch key {
		case FieldID:
			s, ok := stringValue(value)
			if !ok || s == "" {
				return Link{}, malformed("link", key, value)
			}
			link.ID = s
		case FieldName:
			s, ok := stringValue(value)
			if !ok || s == "" {
				return Link{}, malformed("link", key, value)
			}
			link.Name = s
		case FieldType:
			s, ok := stringValue(value)
			if !ok || s == "" {
				return Link{}, malformed("link", key, value)
			}
			link.Type = s
		case FieldMACAddress:
			s, ok := stringValue(value)
			if !ok || s == "" {
				return Link{}, malformed("link", key, value)
			}
			link.MACAddress = s
		case FieldMTU:
			if value == nil {
				continue
			}
			n, ok := intValue(value)
			if !ok {
				return Link{}, malformed("link", key, value)
			}
			link.MTU = n
		case FieldBondLinks:
			if value == nil {
				continue
			}
			ids, ok := stringSlice(value)
			if !ok {
				return Link{}, malformed("link", key, value)
			}
			link.BondLinks = ids
		case FieldBondMode:
			if value == nil {
				continue
			}
			s, ok := stringValue(value)
			if !ok {
				return Link{}, malformed("link", key, value)
			}
			link.BondMode = s
		case FieldVLANID:
			if value == nil {
				continue
			}
			n, ok := intValue(value)
			if !ok {
				return Link{}, malformed("link", key, value)
			}
			link.VLANID = n
		case FieldVLANLink:
			if value == nil {
				continue
			}
			s, ok := stringValue(value)
			if !ok {
				return Link{}, malformed("link", key, value)
			}
			link.VLANLink = s
		default:
			return Link{}, &MalformedRecordError{
				Entity: "link",
				Reason: fmt.Sprintf("unexpected field %q", key),
			}
		}
	}

	for _, required := range []string{FieldID, FieldName, FieldType, FieldMACAddress} {
		if _, ok := record[required]; !ok {
			return Link{}, &MalformedRecordError{
				Entity: "link",
				Reason: fmt.Sprintf("field %q is not present", required),
			}
		}
	}
	return link, nil
}

// NewNetwork assembles a Network from a fully resolved record under the
// same contract as NewLink.
func NewNetwork(record map[string]any) (Network, error) {
	network := Network{DNSNameservers: []string{}}
	for key, value := range record {
		switch key {
		case FieldID:
			s, ok := stringValue(value)
			if !ok || s == "" {
				return Network{}, malformed("network", key, value)
			}
			network.ID = s
		case FieldIPAddress:
			s, ok := stringValue(value)
			if !ok || s == "" {
				return Network{}, malformed("network", key, value)
			}
			network.IPAddress = s
		case FieldVersion:
			n, ok := intValue(value)
			if !ok || (n != IPv4 && n != IPv6) {
				return Network{}, malformed("network", key, value)
			}
			network.Version = n
		case FieldNetmask:
			s, ok := stringValue(value)
			if !ok || s == "" {
				return Network{}, malformed("network", key, value)
			}
			network.Netmask = s
		case FieldGateway:
			s, ok := stringValue(value)
			if !ok || s == "" {
				return Network{}, malformed("network", key, value)
			}
			network.Gateway = s
		case FieldBroadcast:
			if value == nil {
				continue
			}
			s, ok := stringValue(value)
			if !ok {
				return Network{}, malformed("network", key, value)
			}
			network.Broadcast = s
		case FieldDNSNameservers:
			if value == nil {
				continue
			}
			servers, ok := stringSlice(value)
			if !ok {
				return Network{}, malformed("network", key, value)
			}
			network.DNSNameservers = servers
		case FieldAssignedTo:
			if value == nil {
				continue
			}
			s, ok := stringValue(value)
			if !ok {
				return Network{}, malformed("network", key, value)
			}
			network.AssignedTo = s
		default:
			return Network{}, &MalformedRecordError{
				Entity: "network",
				Reason: fmt.Sprintf("unexpected field %q", key),
			}
		}
	}

	for _, required := range []string{FieldID, FieldIPAddress, FieldVersion, FieldNetmask, FieldGateway} {
		if _, ok := record[required]; !ok {
			return Network{}, &MalformedRecordError{
				Entity: "network",
				Reason: fmt.Sprintf("field %q is not present", required),
			}
		}
	}
	return network, nil
}

// NetworkDetails is a read-only snapshot of the validated network
// topology. It is populated once by the metadata builder and never
// mutated afterwards, so it is safe to share between consumers.
type NetworkDetails struct {
	links      map[string]Link
	networks   map[string]Network
	references map[string][]string
}

// NewNetworkDetails builds a snapshot from the digested entities.
// The input maps are copied; later mutation of the arguments does not
// affect the snapshot.
func NewNetworkDetails(links map[string]Link, networks map[string]Network, references map[string][]string) *NetworkDetails {
	details := &NetworkDetails{
		links:      make(map[string]Link, len(links)),
		networks:   make(map[string]Network, len(networks)),
		references: make(map[string][]string, len(references)),
	}
	for id, link := range links {
		details.links[id] = link
	}
	for id, network := range networks {
		details.networks[id] = network
	}
	for id, networkIDs := range references {
		details.references[id] = append([]string(nil), networkIDs...)
	}
	return details
}

// Valid reports whether the snapshot was produced by NewNetworkDetails.
// A zero value is not a usable snapshot.
func (d *NetworkDetails) Valid() bool {
	return d != nil && d.links != nil && d.networks != nil && d.references != nil
}

// Link returns the link with the given id.
func (d *NetworkDetails) Link(id string) (Link, bool) {
	link, ok := d.links[id]
	return link, ok
}

// Links returns the ids of all links in the snapshot, sorted for
// deterministic iteration.
func (d *NetworkDetails) Links() []string {
	ids := make([]string, 0, len(d.links))
	for id := range d.links {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Network returns the network with the given id.
func (d *NetworkDetails) Network(id string) (Network, bool) {
	network, ok := d.networks[id]
	return network, ok
}

// Networks returns the ids of the networks assigned to the given link,
// in digestion order.
func (d *NetworkDetails) Networks(linkID string) []string {
	return append([]string(nil), d.references[linkID]...)
}

func malformed(entity, key string, value any) *MalformedRecordError {
	return &MalformedRecordError{
		Entity: entity,
		Reason: fmt.Sprintf("field %q has unusable value %v (%T)", key, value, value),
	}
}

func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func stringSlice(v any) ([]string, bool) {
	switch values := v.(type) {
	case []string:
		return append([]string(nil), values...), true
	case []any:
		out := make([]string, 0, len(values))
		for _, item := range values {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
