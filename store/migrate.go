package store

import (
	"context"
	"database/sql"
	"fmt"
)

// currentSchemaVersion is the newest step of the migration chain this
// build knows how to reach. v2 and v9 are intentionally absent from
// the chain.
const currentSchemaVersion = 11

// migrationStep is one entry of the chain: it creates the suffixed
// tables new at (or reshaped at) this version, copies rows forward
// from the table they replace when one exists, and leaves every
// unsuffixed alias view pointing at the table current as of this
// version.
type migrationStep struct {
	apply   func(ctx context.Context, tx *sql.Tx) error
	version int
}

var migrationChain = []migrationStep{
	{version: 1, apply: applyV1},
	{version: 3, apply: applyV3},
	{version: 4, apply: applyV4},
	{version: 5, apply: applyV5},
	{version: 6, apply: applyV6},
	{version: 7, apply: applyV7},
	{version: 8, apply: applyV8},
	{version: 10, apply: applyV10},
	{version: 11, apply: applyV11},
}

// migrate brings db up to currentSchemaVersion, applying every step
// whose version exceeds the database's recorded schema_version.
func migrate(ctx context.Context, db *DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version    INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`); err != nil {
		return fmt.Errorf("%w: create schema_version: %v", ErrPersistenceBackendFailed, err)
	}

	current, err := schemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if current > currentSchemaVersion {
		return fmt.Errorf("%w: database is at v%d, newest known is v%d", ErrUnknownSchemaVersion, current, currentSchemaVersion)
	}

	for _, step := range migrationChain {
		if step.version <= current {
			continue
		}
		if err := db.Tx(ctx, func(tx *sql.Tx) error {
			if err := step.apply(ctx, tx); err != nil {
				return fmt.Errorf("%w: migrate to v%d: %v", ErrPersistenceBackendFailed, step.version, err)
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, step.version)
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}

func schemaVersion(ctx context.Context, db *DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("%w: read schema_version: %v", ErrPersistenceBackendFailed, err)
	}
	return version, nil
}

// statement is one migration action: either literal SQL (raw) or a
// composite operation like recreateAlias.
type statement func(ctx context.Context, tx *sql.Tx) error

// raw wraps a literal SQL string as a statement.
func raw(query string) statement {
	return func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query)
		return err
	}
}

// exec runs each statement against tx, stopping at the first error.
func exec(ctx context.Context, tx *sql.Tx, stmts ...statement) error {
	for _, s := range stmts {
		if err := s(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}

// recreateAlias drops and recreates the unsuffixed view name so the
// rest of this package can query tables without versioned suffixes
// while the migration chain freely reshapes the underlying table.
func recreateAlias(name, suffixedTable string) statement {
	return func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP VIEW IF EXISTS %s`, name)); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE VIEW %s AS SELECT * FROM %s`, name, suffixedTable))
		return err
	}
}

// applyV1 creates the device/endpoint/cluster-set backbone: devices,
// endpoints, and their in/out cluster id sets.
func applyV1(ctx context.Context, tx *sql.Tx) error {
	return exec(ctx, tx,
		raw(`CREATE TABLE devices_v1 (
			ieee      INTEGER PRIMARY KEY,
			nwk       INTEGER NOT NULL,
			status    TEXT NOT NULL,
			last_seen TEXT NOT NULL
		)`),
		raw(`CREATE TABLE endpoints_v1 (
			device_ieee INTEGER NOT NULL REFERENCES devices_v1(ieee) ON DELETE CASCADE,
			endpoint_id INTEGER NOT NULL,
			profile_id  INTEGER NOT NULL,
			device_type INTEGER NOT NULL,
			PRIMARY KEY (device_ieee, endpoint_id)
		)`),
		raw(`CREATE TABLE in_clusters_v1 (
			device_ieee INTEGER NOT NULL,
			endpoint_id INTEGER NOT NULL,
			cluster_id  INTEGER NOT NULL,
			PRIMARY KEY (device_ieee, endpoint_id, cluster_id),
			FOREIGN KEY (device_ieee, endpoint_id) REFERENCES endpoints_v1(device_ieee, endpoint_id) ON DELETE CASCADE
		)`),
		raw(`CREATE TABLE out_clusters_v1 (
			device_ieee INTEGER NOT NULL,
			endpoint_id INTEGER NOT NULL,
			cluster_id  INTEGER NOT NULL,
			PRIMARY KEY (device_ieee, endpoint_id, cluster_id),
			FOREIGN KEY (device_ieee, endpoint_id) REFERENCES endpoints_v1(device_ieee, endpoint_id) ON DELETE CASCADE
		)`),
		raw(`CREATE INDEX idx_endpoints_v1_device ON endpoints_v1(device_ieee)`),
		raw(`CREATE INDEX idx_in_clusters_v1_ep ON in_clusters_v1(device_ieee, endpoint_id)`),
		raw(`CREATE INDEX idx_out_clusters_v1_ep ON out_clusters_v1(device_ieee, endpoint_id)`),
		recreateAlias("devices", "devices_v1"),
		recreateAlias("endpoints", "endpoints_v1"),
		recreateAlias("in_clusters", "in_clusters_v1"),
		recreateAlias("out_clusters", "out_clusters_v1"),
	)
}

// applyV3 adds the node descriptor row. v2 is intentionally absent
// from the chain.
func applyV3(ctx context.Context, tx *sql.Tx) error {
	return exec(ctx, tx,
		raw(`CREATE TABLE node_descriptors_v3 (
			device_ieee                INTEGER PRIMARY KEY REFERENCES devices_v1(ieee) ON DELETE CASCADE,
			logical_type               INTEGER NOT NULL,
			complex_descriptor_avail   INTEGER NOT NULL,
			user_descriptor_avail      INTEGER NOT NULL,
			aps_flags                  INTEGER NOT NULL,
			frequency_band             INTEGER NOT NULL,
			mac_capability_flags       INTEGER NOT NULL,
			manufacturer_code          INTEGER NOT NULL,
			max_buffer_size            INTEGER NOT NULL,
			max_incoming_transfer_size INTEGER NOT NULL,
			server_mask                INTEGER NOT NULL,
			max_outgoing_transfer_size INTEGER NOT NULL,
			descriptor_capability      INTEGER NOT NULL
		)`),
		recreateAlias("node_descriptors", "node_descriptors_v3"),
	)
}

// applyV4 adds the attribute cache. The foreign key intentionally
// references devices only, not the (ieee, endpoint) composite, so rows
// survive an endpoint being rediscovered with a different shape during
// a later interview.
func applyV4(ctx context.Context, tx *sql.Tx) error {
	return exec(ctx, tx,
		raw(`CREATE TABLE attributes_cache_v4 (
			device_ieee INTEGER NOT NULL REFERENCES devices_v1(ieee) ON DELETE CASCADE,
			endpoint_id INTEGER NOT NULL,
			cluster_id  INTEGER NOT NULL,
			direction   INTEGER NOT NULL,
			attr_id     INTEGER NOT NULL,
			value_blob  BLOB NOT NULL,
			PRIMARY KEY (device_ieee, endpoint_id, cluster_id, direction, attr_id)
		)`),
		raw(`CREATE INDEX idx_attributes_cache_v4_device ON attributes_cache_v4(device_ieee)`),
		recreateAlias("attributes_cache", "attributes_cache_v4"),
	)
}

// applyV5 adds the neighbor table row, refreshed by Mgmt_Lqi scans.
func applyV5(ctx context.Context, tx *sql.Tx) error {
	return exec(ctx, tx,
		raw(`CREATE TABLE neighbors_v5 (
			device_ieee     INTEGER NOT NULL REFERENCES devices_v1(ieee) ON DELETE CASCADE,
			ieee            INTEGER NOT NULL,
			extended_pan_id INTEGER NOT NULL,
			nwk             INTEGER NOT NULL,
			device_type     INTEGER NOT NULL,
			rx_on_when_idle INTEGER NOT NULL,
			relationship    INTEGER NOT NULL,
			permit_joining  INTEGER NOT NULL,
			depth           INTEGER NOT NULL,
			lqi             INTEGER NOT NULL,
			PRIMARY KEY (device_ieee, ieee)
		)`),
		recreateAlias("neighbors", "neighbors_v5"),
	)
}

// applyV6 adds the route table row, refreshed by Mgmt_Rtg scans.
func applyV6(ctx context.Context, tx *sql.Tx) error {
	return exec(ctx, tx,
		raw(`CREATE TABLE routes_v6 (
			device_ieee        INTEGER NOT NULL REFERENCES devices_v1(ieee) ON DELETE CASCADE,
			dst_nwk            INTEGER NOT NULL,
			route_status       INTEGER NOT NULL,
			memory_constrained INTEGER NOT NULL,
			many_to_one        INTEGER NOT NULL,
			record_required    INTEGER NOT NULL,
			next_hop           INTEGER NOT NULL,
			PRIMARY KEY (device_ieee, dst_nwk)
		)`),
		recreateAlias("routes", "routes_v6"),
	)
}

// applyV7 adds the per-device source-route relay list.
func applyV7(ctx context.Context, tx *sql.Tx) error {
	return exec(ctx, tx,
		raw(`CREATE TABLE relays_v7 (
			device_ieee INTEGER NOT NULL REFERENCES devices_v1(ieee) ON DELETE CASCADE,
			idx         INTEGER NOT NULL,
			relay_nwk   INTEGER NOT NULL,
			PRIMARY KEY (device_ieee, idx)
		)`),
		recreateAlias("relays", "relays_v7"),
	)
}

// applyV8 adds groups and group membership and, as a genuine reshape,
// widens node_descriptors with a stack_revision column absent from the
// v3 shape; rows migrated forward from v3 pick up stack_revision at
// its default, 0.
func applyV8(ctx context.Context, tx *sql.Tx) error {
	if err := exec(ctx, tx,
		raw(`CREATE TABLE groups_v8 (
			group_id INTEGER PRIMARY KEY,
			name     TEXT NOT NULL
		)`),
		raw(`CREATE TABLE group_members_v8 (
			group_id    INTEGER NOT NULL REFERENCES groups_v8(group_id) ON DELETE CASCADE,
			device_ieee INTEGER NOT NULL REFERENCES devices_v1(ieee) ON DELETE CASCADE,
			endpoint_id INTEGER NOT NULL,
			PRIMARY KEY (group_id, device_ieee, endpoint_id)
		)`),
		recreateAlias("groups", "groups_v8"),
		recreateAlias("group_members", "group_members_v8"),
	); err != nil {
		return err
	}

	return exec(ctx, tx,
		raw(`CREATE TABLE node_descriptors_v8 (
			device_ieee                INTEGER PRIMARY KEY REFERENCES devices_v1(ieee) ON DELETE CASCADE,
			logical_type               INTEGER NOT NULL,
			complex_descriptor_avail   INTEGER NOT NULL,
			user_descriptor_avail      INTEGER NOT NULL,
			aps_flags                  INTEGER NOT NULL,
			frequency_band             INTEGER NOT NULL,
			mac_capability_flags       INTEGER NOT NULL,
			manufacturer_code          INTEGER NOT NULL,
			max_buffer_size            INTEGER NOT NULL,
			max_incoming_transfer_size INTEGER NOT NULL,
			server_mask                INTEGER NOT NULL,
			max_outgoing_transfer_size INTEGER NOT NULL,
			descriptor_capability      INTEGER NOT NULL,
			stack_revision             INTEGER NOT NULL DEFAULT 0
		)`),
		raw(`INSERT INTO node_descriptors_v8 (
			device_ieee, logical_type, complex_descriptor_avail, user_descriptor_avail,
			aps_flags, frequency_band, mac_capability_flags, manufacturer_code,
			max_buffer_size, max_incoming_transfer_size, server_mask,
			max_outgoing_transfer_size, descriptor_capability, stack_revision
		)
		SELECT
			device_ieee, logical_type, complex_descriptor_avail, user_descriptor_avail,
			aps_flags, frequency_band, mac_capability_flags, manufacturer_code,
			max_buffer_size, max_incoming_transfer_size, server_mask,
			max_outgoing_transfer_size, descriptor_capability, 0
		FROM node_descriptors_v3`),
		recreateAlias("node_descriptors", "node_descriptors_v8"),
	)
}

// applyV10 adds the unsupported-attribute set. v9 is intentionally
// absent from the chain.
func applyV10(ctx context.Context, tx *sql.Tx) error {
	return exec(ctx, tx,
		raw(`CREATE TABLE unsupported_attributes_v10 (
			device_ieee INTEGER NOT NULL REFERENCES devices_v1(ieee) ON DELETE CASCADE,
			endpoint_id INTEGER NOT NULL,
			cluster_id  INTEGER NOT NULL,
			direction   INTEGER NOT NULL,
			attr_id     INTEGER NOT NULL,
			PRIMARY KEY (device_ieee, endpoint_id, cluster_id, direction, attr_id)
		)`),
		recreateAlias("unsupported_attributes", "unsupported_attributes_v10"),
	)
}

// applyV11 adds the append-only network_backups log.
func applyV11(ctx context.Context, tx *sql.Tx) error {
	return exec(ctx, tx,
		raw(`CREATE TABLE network_backups_v11 (
			id                TEXT PRIMARY KEY,
			created_at        TEXT NOT NULL,
			blob              BLOB NOT NULL,
			uncompressed_size INTEGER NOT NULL,
			compressed_size   INTEGER NOT NULL
		)`),
		recreateAlias("network_backups", "network_backups_v11"),
	)
}
