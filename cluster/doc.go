// Package cluster holds the process-wide registry of known Zigbee
// Cluster Library clusters: their attribute schemas and client/server
// command schemas.
//
// The registry is a map-literal-of-structs keyed by cluster id, extended
// with a manufacturer-specific overlay keyed by (manufacturer code,
// cluster id). Clusters with no registered definition degrade gracefully:
// callers still get raw attribute bytes back, tagged as an
// "unknown cluster" rather than failing the whole frame.
//
// # Quick start
//
//	def, ok := cluster.Get(cluster.OnOff)
//	attr, ok := def.Attribute(0x0000) // OnOff.OnOff
package cluster
