package store

// Suffixed table names the write path targets directly. Reads go
// through the unsuffixed alias views migrate.go keeps pointed at
// these; writes must name the concrete table current as of
// currentSchemaVersion, since a view is not updatable.
const (
	tableDevices                = "devices_v1"
	tableEndpoints              = "endpoints_v1"
	tableInClusters             = "in_clusters_v1"
	tableOutClusters            = "out_clusters_v1"
	tableNodeDescriptors        = "node_descriptors_v8"
	tableAttributesCache        = "attributes_cache_v4"
	tableNeighbors              = "neighbors_v5"
	tableRoutes                 = "routes_v6"
	tableRelays                 = "relays_v7"
	tableGroups                 = "groups_v8"
	tableGroupMembers           = "group_members_v8"
	tableUnsupportedAttributes  = "unsupported_attributes_v10"
	tableNetworkBackups         = "network_backups_v11"
)

// ieeeToInt64 and int64ToIEEE round-trip a uint64 IEEE/NWK address
// through SQLite's signed 64-bit INTEGER storage class via bit
// reinterpretation, not value truncation.
func ieeeToInt64(v uint64) int64 { return int64(v) }
func int64ToIEEE(v int64) uint64 { return uint64(v) }
