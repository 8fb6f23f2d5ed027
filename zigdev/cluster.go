package zigdev

import (
	"sync"

	"github.com/zhacore/zha/wire"
	"github.com/zhacore/zha/zcl"
)

// ClusterDirection distinguishes a device's input (server role) clusters
// from its output (client role) clusters.
type ClusterDirection byte

const (
	DirectionIn ClusterDirection = iota
	DirectionOut
)

// Cluster is the per-endpoint, per-direction attribute cache and
// reporting-configuration state.
type Cluster struct {
	attributeCache        map[uint16]wire.Value
	unsupportedAttributes map[uint16]bool
	reportConfigs         map[uint16]zcl.ReportingConfig
	mu                    sync.RWMutex
	ClusterID             uint16
	Direction             ClusterDirection
}

// NewCluster returns an empty Cluster for the given id and direction.
func NewCluster(clusterID uint16, direction ClusterDirection) *Cluster {
	return &Cluster{
		ClusterID:             clusterID,
		Direction:             direction,
		attributeCache:        make(map[uint16]wire.Value),
		unsupportedAttributes: make(map[uint16]bool),
		reportConfigs:         make(map[uint16]zcl.ReportingConfig),
	}
}

// SetAttribute records the last-observed value for attrID. The
// attribute cache is a mapping with unique keys: last write wins.
func (c *Cluster) SetAttribute(attrID uint16, v wire.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attributeCache[attrID] = v
	delete(c.unsupportedAttributes, attrID)
}

// Attribute returns the cached value for attrID, if any.
func (c *Cluster) Attribute(attrID uint16) (wire.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.attributeCache[attrID]
	return v, ok
}

// Attributes returns a snapshot copy of the attribute cache.
func (c *Cluster) Attributes() map[uint16]wire.Value {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[uint16]wire.Value, len(c.attributeCache))
	for k, v := range c.attributeCache {
		out[k] = v
	}
	return out
}

// MarkUnsupported records attrID as unsupported, so callers can avoid
// re-querying it after an AttributeNotSupported response.
func (c *Cluster) MarkUnsupported(attrID uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unsupportedAttributes[attrID] = true
	delete(c.attributeCache, attrID)
}

// IsUnsupported reports whether attrID was previously marked
// unsupported.
func (c *Cluster) IsUnsupported(attrID uint16) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.unsupportedAttributes[attrID]
}

// UnsupportedAttributeIDs returns a snapshot of every attribute id
// currently marked unsupported.
func (c *Cluster) UnsupportedAttributeIDs() []uint16 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]uint16, 0, len(c.unsupportedAttributes))
	for id := range c.unsupportedAttributes {
		ids = append(ids, id)
	}
	return ids
}

// SetReportConfig records a pending reporting configuration for attrID.
func (c *Cluster) SetReportConfig(attrID uint16, cfg zcl.ReportingConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reportConfigs[attrID] = cfg
}

// ReportConfig returns the reporting configuration for attrID, if any.
func (c *Cluster) ReportConfig(attrID uint16) (zcl.ReportingConfig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cfg, ok := c.reportConfigs[attrID]
	return cfg, ok
}
