package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zhacore/zha/wire"
	"github.com/zhacore/zha/zdo"
	"github.com/zhacore/zha/zigdev"
)

// upsertDeviceTx replaces every row this package owns for dev.IEEEAddress
// with dev's current in-memory snapshot. Write-through persistence has
// no incremental diff to apply, so every call re-derives the full
// per-device row set inside one transaction.
func upsertDeviceTx(ctx context.Context, tx *sql.Tx, dev *zigdev.Device) error {
	ieee := ieeeToInt64(dev.IEEEAddress)

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (ieee, nwk, status, last_seen) VALUES (?, ?, ?, ?)
		ON CONFLICT(ieee) DO UPDATE SET nwk = excluded.nwk, status = excluded.status, last_seen = excluded.last_seen
	`, tableDevices), ieee, dev.NWKAddress, dev.CurrentStatus().String(), dev.LastSeen.UTC().Format(timeLayout)); err != nil {
		return err
	}

	if err := deleteChildRows(ctx, tx, ieee); err != nil {
		return err
	}

	for _, epID := range dev.Endpoints() {
		ep, ok := dev.Endpoint(epID)
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (device_ieee, endpoint_id, profile_id, device_type) VALUES (?, ?, ?, ?)
		`, tableEndpoints), ieee, ep.ID, ep.ProfileID, ep.DeviceType); err != nil {
			return err
		}
		for _, clID := range ep.InClusterIDs() {
			if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
				INSERT INTO %s (device_ieee, endpoint_id, cluster_id) VALUES (?, ?, ?)
			`, tableInClusters), ieee, ep.ID, clID); err != nil {
				return err
			}
			cl, _ := ep.InCluster(clID)
			if err := upsertClusterStateTx(ctx, tx, ieee, ep.ID, clID, int(zigdev.DirectionIn), cl); err != nil {
				return err
			}
		}
		for _, clID := range ep.OutClusterIDs() {
			if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
				INSERT INTO %s (device_ieee, endpoint_id, cluster_id) VALUES (?, ?, ?)
			`, tableOutClusters), ieee, ep.ID, clID); err != nil {
				return err
			}
			cl, _ := ep.OutCluster(clID)
			if err := upsertClusterStateTx(ctx, tx, ieee, ep.ID, clID, int(zigdev.DirectionOut), cl); err != nil {
				return err
			}
		}
	}

	if dev.NodeDescriptor != (zdo.NodeDescriptor{}) {
		if err := upsertNodeDescriptorTx(ctx, tx, ieee, dev.NodeDescriptor); err != nil {
			return err
		}
	}

	for i, nwk := range dev.Relays {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (device_ieee, idx, relay_nwk) VALUES (?, ?, ?)
		`, tableRelays), ieee, i, nwk); err != nil {
			return err
		}
	}

	for _, n := range dev.Neighbors {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (device_ieee, ieee, extended_pan_id, nwk, device_type, rx_on_when_idle, relationship, permit_joining, depth, lqi)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, tableNeighbors), ieee, ieeeToInt64(n.IEEE), ieeeToInt64(n.ExtendedPANID), n.NWK, n.DeviceType, n.RxOnWhenIdle, n.Relationship, n.PermitJoining, n.Depth, n.LQI); err != nil {
			return err
		}
	}

	return nil
}

// deleteChildRows clears every row keyed by ieee below the device row
// itself, ahead of re-inserting the current snapshot.
func deleteChildRows(ctx context.Context, tx *sql.Tx, ieee int64) error {
	for _, table := range []string{tableEndpoints, tableInClusters, tableOutClusters, tableAttributesCache, tableUnsupportedAttributes, tableNeighbors, tableRoutes, tableRelays, tableNodeDescriptors} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE device_ieee = ?`, table), ieee); err != nil {
			return err
		}
	}
	return nil
}

func upsertNodeDescriptorTx(ctx context.Context, tx *sql.Tx, ieee int64, nd zdo.NodeDescriptor) error {
	_, err := tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (
			device_ieee, logical_type, complex_descriptor_avail, user_descriptor_avail,
			aps_flags, frequency_band, mac_capability_flags, manufacturer_code,
			max_buffer_size, max_incoming_transfer_size, server_mask,
			max_outgoing_transfer_size, descriptor_capability, stack_revision
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
	`, tableNodeDescriptors), ieee, nd.LogicalType, nd.ComplexDescriptorAvail, nd.UserDescriptorAvail,
		nd.APSFlags, nd.FrequencyBand, nd.MACCapabilityFlags, nd.ManufacturerCode,
		nd.MaxBufferSize, nd.MaxIncomingTransferSize, nd.ServerMask,
		nd.MaxOutgoingTransferSize, nd.DescriptorCapability)
	return err
}

// upsertClusterStateTx persists cl's attribute cache and unsupported
// set. cl is nil for a freshly-discovered cluster that has not yet
// been read; there is nothing to write beyond the cluster-set row
// already inserted by the caller.
func upsertClusterStateTx(ctx context.Context, tx *sql.Tx, ieee int64, endpoint byte, clusterID uint16, direction int, cl *zigdev.Cluster) error {
	if cl == nil {
		return nil
	}
	for attrID, v := range cl.Attributes() {
		blob, err := wire.EncodeTagged(nil, v)
		if err != nil {
			return fmt.Errorf("store: encode attribute %#04x: %w", attrID, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (device_ieee, endpoint_id, cluster_id, direction, attr_id, value_blob) VALUES (?, ?, ?, ?, ?, ?)
		`, tableAttributesCache), ieee, endpoint, clusterID, direction, attrID, blob); err != nil {
			return err
		}
	}
	for _, attrID := range cl.UnsupportedAttributeIDs() {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (device_ieee, endpoint_id, cluster_id, direction, attr_id) VALUES (?, ?, ?, ?, ?)
		`, tableUnsupportedAttributes), ieee, endpoint, clusterID, direction, attrID); err != nil {
			return err
		}
	}
	return nil
}

// deleteDeviceTx removes dev's row; ON DELETE CASCADE removes every
// row in endpoints, in_clusters, out_clusters, attributes_cache,
// neighbors, routes, relays, and group_members that references it.
func deleteDeviceTx(ctx context.Context, tx *sql.Tx, ieee uint64) error {
	_, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE ieee = ?`, tableDevices), ieeeToInt64(ieee))
	return err
}

const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

// loadDevices rebuilds the in-memory device tree from the database in
// topological order: devices, endpoints, in/out clusters, node
// descriptors, attribute cache, neighbors, relays, and (by the caller)
// groups/group members. The routes table is not read.
func loadDevices(ctx context.Context, db *DB) (map[uint64]*zigdev.Device, error) {
	devices := make(map[uint64]*zigdev.Device)

	rows, err := db.QueryContext(ctx, `SELECT ieee, nwk, status, last_seen FROM devices`)
	if err != nil {
		return nil, fmt.Errorf("%w: load devices: %v", ErrPersistenceBackendFailed, err)
	}
	defer rows.Close()
	for rows.Next() {
		var ieeeRaw int64
		var nwk uint16
		var status, lastSeen string
		if err := rows.Scan(&ieeeRaw, &nwk, &status, &lastSeen); err != nil {
			return nil, err
		}
		ieee := int64ToIEEE(ieeeRaw)
		d := zigdev.NewDevice(ieee, nwk)
		d.Status = parseStatus(status)
		devices[ieee] = d
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := loadEndpoints(ctx, db, devices); err != nil {
		return nil, err
	}
	if err := loadClusters(ctx, db, devices, tableInClusters, (*zigdev.Endpoint).AddInCluster); err != nil {
		return nil, err
	}
	if err := loadClusters(ctx, db, devices, tableOutClusters, (*zigdev.Endpoint).AddOutCluster); err != nil {
		return nil, err
	}
	if err := loadNodeDescriptors(ctx, db, devices); err != nil {
		return nil, err
	}
	if err := loadAttributeCache(ctx, db, devices, tableAttributesCache, false); err != nil {
		return nil, err
	}
	if err := loadAttributeCache(ctx, db, devices, tableUnsupportedAttributes, true); err != nil {
		return nil, err
	}
	if err := loadNeighbors(ctx, db, devices); err != nil {
		return nil, err
	}
	if err := loadRelays(ctx, db, devices); err != nil {
		return nil, err
	}

	return devices, nil
}

func loadEndpoints(ctx context.Context, db *DB, devices map[uint64]*zigdev.Device) error {
	rows, err := db.QueryContext(ctx, `SELECT device_ieee, endpoint_id, profile_id, device_type FROM endpoints`)
	if err != nil {
		return fmt.Errorf("%w: load endpoints: %v", ErrPersistenceBackendFailed, err)
	}
	defer rows.Close()
	for rows.Next() {
		var ieeeRaw int64
		var endpointID, profileID, deviceType int
		if err := rows.Scan(&ieeeRaw, &endpointID, &profileID, &deviceType); err != nil {
			return err
		}
		d, ok := devices[int64ToIEEE(ieeeRaw)]
		if !ok {
			continue
		}
		d.AddEndpoint(zigdev.NewEndpoint(byte(endpointID), uint16(profileID), uint16(deviceType)))
	}
	return rows.Err()
}

func loadClusters(ctx context.Context, db *DB, devices map[uint64]*zigdev.Device, table string, add func(*zigdev.Endpoint, uint16) *zigdev.Cluster) error {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT device_ieee, endpoint_id, cluster_id FROM %s`, table))
	if err != nil {
		return fmt.Errorf("%w: load %s: %v", ErrPersistenceBackendFailed, table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var ieeeRaw int64
		var endpointID, clusterID int
		if err := rows.Scan(&ieeeRaw, &endpointID, &clusterID); err != nil {
			return err
		}
		d, ok := devices[int64ToIEEE(ieeeRaw)]
		if !ok {
			continue
		}
		ep, ok := d.Endpoint(byte(endpointID))
		if !ok {
			continue
		}
		add(ep, uint16(clusterID))
	}
	return rows.Err()
}

func loadNodeDescriptors(ctx context.Context, db *DB, devices map[uint64]*zigdev.Device) error {
	rows, err := db.QueryContext(ctx, `
		SELECT device_ieee, logical_type, complex_descriptor_avail, user_descriptor_avail,
			aps_flags, frequency_band, mac_capability_flags, manufacturer_code,
			max_buffer_size, max_incoming_transfer_size, server_mask,
			max_outgoing_transfer_size, descriptor_capability
		FROM node_descriptors`)
	if err != nil {
		return fmt.Errorf("%w: load node_descriptors: %v", ErrPersistenceBackendFailed, err)
	}
	defer rows.Close()
	for rows.Next() {
		var ieeeRaw int64
		var nd zdo.NodeDescriptor
		if err := rows.Scan(&ieeeRaw, &nd.LogicalType, &nd.ComplexDescriptorAvail, &nd.UserDescriptorAvail,
			&nd.APSFlags, &nd.FrequencyBand, &nd.MACCapabilityFlags, &nd.ManufacturerCode,
			&nd.MaxBufferSize, &nd.MaxIncomingTransferSize, &nd.ServerMask,
			&nd.MaxOutgoingTransferSize, &nd.DescriptorCapability); err != nil {
			return err
		}
		if d, ok := devices[int64ToIEEE(ieeeRaw)]; ok {
			d.NodeDescriptor = nd
		}
	}
	return rows.Err()
}

func loadAttributeCache(ctx context.Context, db *DB, devices map[uint64]*zigdev.Device, table string, unsupported bool) error {
	selectCols := "device_ieee, endpoint_id, cluster_id, direction, attr_id, value_blob"
	if unsupported {
		selectCols = "device_ieee, endpoint_id, cluster_id, direction, attr_id"
	}
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM %s`, selectCols, table))
	if err != nil {
		return fmt.Errorf("%w: load %s: %v", ErrPersistenceBackendFailed, table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var ieeeRaw int64
		var endpointID, clusterID, direction, attrID int
		var blob []byte
		var scanErr error
		if unsupported {
			scanErr = rows.Scan(&ieeeRaw, &endpointID, &clusterID, &direction, &attrID)
		} else {
			scanErr = rows.Scan(&ieeeRaw, &endpointID, &clusterID, &direction, &attrID, &blob)
		}
		if scanErr != nil {
			return scanErr
		}
		d, ok := devices[int64ToIEEE(ieeeRaw)]
		if !ok {
			continue
		}
		ep, ok := d.Endpoint(byte(endpointID))
		if !ok {
			continue
		}
		cl, ok := clusterByDirection(ep, uint16(clusterID), zigdev.ClusterDirection(direction))
		if !ok {
			continue
		}
		if unsupported {
			cl.MarkUnsupported(uint16(attrID))
			continue
		}
		v, err := wire.DecodeTagged(wire.NewBuffer(blob))
		if err != nil {
			return fmt.Errorf("store: decode attribute %#04x for %x: %w", attrID, int64ToIEEE(ieeeRaw), err)
		}
		cl.SetAttribute(uint16(attrID), v)
	}
	return rows.Err()
}

func clusterByDirection(ep *zigdev.Endpoint, clusterID uint16, dir zigdev.ClusterDirection) (*zigdev.Cluster, bool) {
	if dir == zigdev.DirectionOut {
		return ep.OutCluster(clusterID)
	}
	return ep.InCluster(clusterID)
}

func loadNeighbors(ctx context.Context, db *DB, devices map[uint64]*zigdev.Device) error {
	rows, err := db.QueryContext(ctx, `
		SELECT device_ieee, ieee, extended_pan_id, nwk, device_type, rx_on_when_idle, relationship, permit_joining, depth, lqi
		FROM neighbors`)
	if err != nil {
		return fmt.Errorf("%w: load neighbors: %v", ErrPersistenceBackendFailed, err)
	}
	defer rows.Close()
	for rows.Next() {
		var ieeeRaw, neighborIEEERaw, extPanRaw int64
		var n zdo.Neighbor
		if err := rows.Scan(&ieeeRaw, &neighborIEEERaw, &extPanRaw, &n.NWK, &n.DeviceType, &n.RxOnWhenIdle, &n.Relationship, &n.PermitJoining, &n.Depth, &n.LQI); err != nil {
			return err
		}
		n.IEEE = int64ToIEEE(neighborIEEERaw)
		n.ExtendedPANID = int64ToIEEE(extPanRaw)
		if d, ok := devices[int64ToIEEE(ieeeRaw)]; ok {
			d.Neighbors = append(d.Neighbors, n)
		}
	}
	return rows.Err()
}

func loadRelays(ctx context.Context, db *DB, devices map[uint64]*zigdev.Device) error {
	rows, err := db.QueryContext(ctx, `SELECT device_ieee, idx, relay_nwk FROM relays ORDER BY device_ieee, idx`)
	if err != nil {
		return fmt.Errorf("%w: load relays: %v", ErrPersistenceBackendFailed, err)
	}
	defer rows.Close()
	for rows.Next() {
		var ieeeRaw int64
		var idx int
		var relayNWK uint16
		if err := rows.Scan(&ieeeRaw, &idx, &relayNWK); err != nil {
			return err
		}
		if d, ok := devices[int64ToIEEE(ieeeRaw)]; ok {
			d.Relays = append(d.Relays, relayNWK)
		}
	}
	return rows.Err()
}

func parseStatus(s string) zigdev.Status {
	switch s {
	case "new":
		return zigdev.StatusNew
	case "zdo_init":
		return zigdev.StatusZDOInit
	case "endpoints_init":
		return zigdev.StatusEndpointsInit
	case "initialized":
		return zigdev.StatusInitialized
	case "left":
		return zigdev.StatusLeft
	default:
		return zigdev.StatusNew
	}
}
