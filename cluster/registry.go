package cluster

import (
	"errors"
	"sync"

	"github.com/zhacore/zha/wire"
)

// Errors returned by registry lookups.
var (
	ErrUnsupportedCluster    = errors.New("cluster: unsupported cluster")
	ErrAttributeNotSupported = errors.New("cluster: attribute not supported")
)

// Access bits for an attribute.
type Access byte

const (
	AccessRead Access = 1 << iota
	AccessWrite
	AccessReportable
	AccessScene
)

// Attribute describes one cluster attribute's schema entry.
type Attribute struct {
	Name      string
	ID        uint16
	Type      wire.TypeID
	Access    Access
	Mandatory bool
}

// Command describes one client/server command's schema entry. Response
// is the command id of the expected reply, or -1 if the command has no
// defined response.
type Command struct {
	Name     string
	ID       byte
	Response int
}

// Definition is a single cluster's schema: its attributes and its two
// command directions.
type Definition struct {
	Attributes              map[uint16]Attribute
	CommandsClientToServer  map[byte]Command
	CommandsServerToClient  map[byte]Command
	Name                    string
	ClusterID               uint16
}

// Attribute looks up an attribute by id, reporting whether it exists.
func (d Definition) Attribute(id uint16) (Attribute, bool) {
	a, ok := d.Attributes[id]
	return a, ok
}

// manufacturerKey identifies a manufacturer-specific cluster definition.
type manufacturerKey struct {
	ManufacturerCode uint16
	ClusterID        uint16
}

// registry is the process-wide definition table, guarded by a RWMutex
// since registration happens at init time but lookups happen on every
// dispatched frame.
type registry struct {
	standard      map[uint16]Definition
	manufacturer  map[manufacturerKey]Definition
	mu            sync.RWMutex
}

var defaultRegistry = &registry{
	standard:     make(map[uint16]Definition),
	manufacturer: make(map[manufacturerKey]Definition),
}

// Register adds or replaces a cluster definition in the default
// registry.
func Register(def Definition) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.standard[def.ClusterID] = def
}

// RegisterManufacturerSpecific adds or replaces a manufacturer-specific
// cluster definition, keyed by (manufacturerCode, clusterID).
func RegisterManufacturerSpecific(manufacturerCode uint16, def Definition) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.manufacturer[manufacturerKey{manufacturerCode, def.ClusterID}] = def
}

// Get looks up a standard (non-manufacturer-specific) cluster
// definition.
func Get(clusterID uint16) (Definition, bool) {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	d, ok := defaultRegistry.standard[clusterID]
	return d, ok
}

// GetManufacturerSpecific looks up a manufacturer-specific cluster
// definition, falling back to the standard definition for that cluster
// id if no manufacturer-specific override is registered.
func GetManufacturerSpecific(manufacturerCode, clusterID uint16) (Definition, bool) {
	defaultRegistry.mu.RLock()
	d, ok := defaultRegistry.manufacturer[manufacturerKey{manufacturerCode, clusterID}]
	defaultRegistry.mu.RUnlock()
	if ok {
		return d, true
	}
	return Get(clusterID)
}

// ResolveAttributeType returns the wire type registered for
// (clusterID, attrID), or ErrUnsupportedCluster / ErrAttributeNotSupported.
func ResolveAttributeType(clusterID, attrID uint16) (wire.TypeID, error) {
	def, ok := Get(clusterID)
	if !ok {
		return 0, ErrUnsupportedCluster
	}
	attr, ok := def.Attribute(attrID)
	if !ok {
		return 0, ErrAttributeNotSupported
	}
	return attr.Type, nil
}
