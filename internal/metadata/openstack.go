package metadata

import (
	"encoding/json"
	"fmt"

	"github.com/netinit-io/netinit/internal/model"
)

// Provider-specific keys in the OpenStack network_data.json schema.
const (
	openStackAssignedTo = "link"
	openStackMACAddress = "ethernet_mac_address"
	openStackName       = "id"
	openStackVersion    = "type"

	openStackIPv4 = "ipv4"
	openStackIPv6 = "ipv6"
)

type openStackNetworkData struct {
	Links    []Record `json:"links"`
	Networks []Record `json:"networks"`
}

// NewOpenStackBuilder returns a builder for the OpenStack
// network_data.json wire format.
func NewOpenStackBuilder(data []byte, opts ...Option) *Builder {
	digest := func() ([]Record, []Record, error) {
		var networkData openStackNetworkData
		if err := json.Unmarshal(data, &networkData); err != nil {
			return nil, nil, fmt.Errorf("parsing network_data.json: %w", err)
		}
		for _, raw := range networkData.Networks {
			translateOpenStackVersion(raw)
		}
		return networkData.Links, networkData.Networks, nil
	}

	opts = append([]Option{
		WithLinkField(Field{
			Name:     model.FieldName,
			Aliases:  []string{openStackName},
			Required: true,
		}),
		WithLinkField(Field{
			Name:     model.FieldMACAddress,
			Aliases:  []string{openStackMACAddress},
			Required: true,
		}),
		WithNetworkField(Field{
			Name:     model.FieldVersion,
			Aliases:  []string{openStackVersion},
			Default:  model.IPv4,
			Required: false,
		}),
		WithNetworkField(Field{
			Name:     model.FieldAssignedTo,
			Aliases:  []string{openStackAssignedTo},
			Required: true,
		}),
	}, opts...)

	return NewBuilder(digest, opts...)
}

// translateOpenStackVersion maps the provider's "ipv4"/"ipv6" network
// type strings onto the numeric IP version, in place.
func translateOpenStackVersion(raw Record) {
	kind, ok := raw[openStackVersion].(string)
	if !ok {
		return
	}
	switch kind {
	case openStackIPv4:
		raw[openStackVersion] = model.IPv4
	case openStackIPv6:
		raw[openStackVersion] = model.IPv6
	}
}
