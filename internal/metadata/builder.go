package metadata

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/netinit-io/netinit/internal/hostnet"
	"github.com/netinit-io/netinit/internal/log"
	"github.com/netinit-io/netinit/internal/model"
)

// DigestFunc is the provider-specific acquisition step: it parses the
// provider's wire format into raw link and network records. It is
// invoked at most once per builder.
type DigestFunc func() (links []Record, networks []Record, err error)

// Builder turns raw provider metadata into a validated NetworkDetails
// snapshot. The resolution and pruning algorithm is shared; providers
// customize the field alias sets and supply the digest step. A builder
// is created per metadata fetch and produces one snapshot per call.
type Builder struct {
	digest        DigestFunc
	linkFields    []Field
	networkFields []Field
	adapters      []hostnet.Adapter

	rawLinks    []Record
	rawNetworks []Record

	logger *slog.Logger
}

// Option customizes a Builder during construction.
type Option func(*Builder)

// WithAdapters supplies the host adapter enumeration used by the
// MAC-address recovery hook.
func WithAdapters(adapters []hostnet.Adapter) Option {
	return func(b *Builder) {
		b.adapters = adapters
	}
}

// WithLinkField overrides one link field descriptor, typically to add
// provider-specific aliases.
func WithLinkField(field Field) Option {
	return func(b *Builder) {
		b.linkFields = replaceField(b.linkFields, field)
	}
}

// WithNetworkField overrides one network field descriptor.
func WithNetworkField(field Field) Option {
	return func(b *Builder) {
		b.networkFields = replaceField(b.networkFields, field)
	}
}

// NewBuilder creates a builder with the canonical field sets.
func NewBuilder(digest DigestFunc, opts ...Option) *Builder {
	b := &Builder{
		digest: digest,
		logger: log.With("component", "metadata"),
	}

	b.linkFields = []Field{
		{Name: model.FieldID, DefaultFunc: generatedID},
		{Name: model.FieldName, Required: true},
		{Name: model.FieldMACAddress, Required: true, OnError: b.onMACNotFound},
		{Name: model.FieldType, Default: model.LinkTypePhy},
		{Name: model.FieldMTU},
		{Name: model.FieldBondLinks},
		{Name: model.FieldBondMode},
		{Name: model.FieldVLANID},
		{Name: model.FieldVLANLink},
	}
	b.networkFields = []Field{
		{Name: model.FieldID, DefaultFunc: generatedID},
		{Name: model.FieldIPAddress, Required: true},
		{Name: model.FieldVersion, Default: model.IPv4},
		{Name: model.FieldNetmask, Required: true},
		{Name: model.FieldGateway, Required: true},
		{Name: model.FieldBroadcast},
		{Name: model.FieldDNSNameservers, Default: []string{}},
		{Name: model.FieldAssignedTo},
	}

	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NetworkDetails digests the provider metadata and returns the
// validated snapshot. The raw buffers are populated once; calling
// again reuses them instead of re-running the acquisition step.
func (b *Builder) NetworkDetails() (*model.NetworkDetails, error) {
	if len(b.rawLinks) == 0 && len(b.rawNetworks) == 0 {
		rawLinks, rawNetworks, err := b.digest()
		if err != nil {
			return nil, fmt.Errorf("digesting network metadata: %w", err)
		}
		b.rawLinks, b.rawNetworks = rawLinks, rawNetworks
	}

	links, err := b.digestLinks()
	if err != nil {
		return nil, err
	}
	networks, references, err := b.digestNetworks()
	if err != nil {
		return nil, err
	}

	// Pruning runs only after every network has been digested: a
	// link's only network may appear anywhere in the raw list. A link
	// survives only with at least one validly assigned network.
	for id := range links {
		if len(references[id]) == 0 {
			b.logger.Debug("pruning link with no assigned networks", "link", id)
			delete(links, id)
		}
	}

	return model.NewNetworkDetails(links, networks, references), nil
}

// digestLinks resolves every raw link record. Records the provider got
// wrong are logged and skipped; a resolved record the Link constructor
// rejects means the normalization itself is broken and aborts the
// digest.
func (b *Builder) digestLinks() (map[string]model.Link, error) {
	links := make(map[string]model.Link, len(b.rawLinks))
	for _, raw := range b.rawLinks {
		derived, ok := b.withDerivedInterface(raw)
		if !ok {
			continue
		}
		resolved := resolveFields(b.linkFields, derived, b.logger)
		if resolved == nil {
			b.logger.Warn("link record is missing required fields, skipping",
				"record", fmt.Sprintf("%v", raw))
			continue
		}
		link, err := model.NewLink(resolved)
		if err != nil {
			return nil, fmt.Errorf("assembling link from %v: %w", resolved, err)
		}
		links[link.ID] = link
	}
	return links, nil
}

// digestNetworks resolves every raw network record and builds the
// link-to-networks reference graph from the networks that survived.
func (b *Builder) digestNetworks() (map[string]model.Network, map[string][]string, error) {
	networks := make(map[string]model.Network, len(b.rawNetworks))
	references := make(map[string][]string)
	for _, raw := range b.rawNetworks {
		derived, ok := b.withDerivedInterface(raw)
		if !ok {
			continue
		}
		resolved := resolveFields(b.networkFields, derived, b.logger)
		if resolved == nil {
			b.logger.Warn("network record is missing required fields, skipping",
				"record", fmt.Sprintf("%v", raw))
			continue
		}
		network, err := model.NewNetwork(resolved)
		if err != nil {
			return nil, nil, fmt.Errorf("assembling network from %v: %w", resolved, err)
		}
		networks[network.ID] = network
		if network.AssignedTo != "" {
			references[network.AssignedTo] = append(references[network.AssignedTo], network.ID)
		}
	}
	return networks, references, nil
}

// withDerivedInterface injects the derived interface fields into a copy
// of the raw record when it carries an address. An address the provider
// mangled beyond parsing rejects the record.
func (b *Builder) withDerivedInterface(raw Record) (Record, bool) {
	ipAddress, ok := raw[model.FieldIPAddress].(string)
	if !ok || ipAddress == "" {
		return raw, true
	}
	netmask := netmaskString(raw[model.FieldNetmask])

	info, err := digestInterface(ipAddress, netmask)
	if err != nil {
		b.logger.Warn("failed to derive interface fields, skipping record",
			"ip_address", ipAddress, "netmask", netmask, "error", err)
		return nil, false
	}

	derived := make(Record, len(raw)+3)
	for key, value := range raw {
		derived[key] = value
	}
	derived[model.FieldIPAddress] = info.IPAddress
	derived[model.FieldNetmask] = info.Netmask
	derived[model.FieldBroadcast] = info.Broadcast
	derived[model.FieldVersion] = info.Version
	return derived, true
}

// onMACNotFound recovers a missing MAC address by resolving the link's
// name from the same raw record and matching it against the host
// adapter enumeration.
func (b *Builder) onMACNotFound(raw Record, partial Record) bool {
	var nameField Field
	found := false
	for _, field := range b.linkFields {
		if field.Name == model.FieldName {
			nameField, found = field, true
			break
		}
	}
	if !found {
		return false
	}

	value, err := resolveField(nameField, raw)
	if err != nil {
		b.logger.Debug("failed to get the link name for MAC recovery")
		return false
	}
	name, ok := value.(string)
	if !ok {
		return false
	}

	b.logger.Debug("trying to find the MAC address using the link name", "name", name)
	for _, adapter := range b.adapters {
		if adapter.Name == name {
			partial[model.FieldMACAddress] = adapter.MAC
			return true
		}
	}

	b.logger.Debug("link name not present in the host adapters", "name", name)
	return false
}

// generatedID is the default producer for record ids. A fresh value is
// produced per resolution so two records never share one.
func generatedID() any {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func netmaskString(v any) string {
	switch mask := v.(type) {
	case string:
		return mask
	case int:
		return fmt.Sprintf("%d", mask)
	case float64:
		return fmt.Sprintf("%d", int(mask))
	default:
		return ""
	}
}
