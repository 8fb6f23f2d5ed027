package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zhacore/zha/radio"
)

// NetworkBackup is the JSON shape a coordinator backup serializes to:
// the coordinator's own identity, the formed network's parameters, and
// a snapshot of the device table.
type NetworkBackup struct {
	NodeInfo    BackupNodeInfo    `json:"node_info"`
	NetworkInfo BackupNetworkInfo `json:"network_info"`
	Devices     []BackupDevice    `json:"devices"`
}

// BackupNodeInfo is the coordinator's own identity at backup time.
type BackupNodeInfo struct {
	IEEEAddress  uint64 `json:"ieee"`
	NWKAddress   uint16 `json:"nwk"`
	LogicalType  byte   `json:"logical_type"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	Version      string `json:"version"`
}

// BackupKeyInfo carries a symmetric key plus its frame counters.
type BackupKeyInfo struct {
	Key         [16]byte `json:"key"`
	Seq         byte     `json:"seq,omitempty"`
	PartnerIEEE uint64   `json:"partner_ieee,omitempty"`
	RXCounter   uint32   `json:"rx_counter"`
	TXCounter   uint32   `json:"tx_counter"`
}

// BackupNetworkInfo is the formed network's parameters.
type BackupNetworkInfo struct {
	NetworkKey    BackupKeyInfo  `json:"network_key"`
	TCLinkKey     BackupKeyInfo  `json:"tc_link_key"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	StackSpecific map[string]any `json:"stack_specific,omitempty"`
	Source        string         `json:"source"`
	BackupTime    string         `json:"backup_time"`
	ExtendedPANID uint64         `json:"extended_pan_id"`
	Children      []uint64       `json:"children,omitempty"`
	NWKAddresses  []uint16       `json:"nwk_addresses,omitempty"`
	KeyTable      []BackupKeyInfo `json:"key_table,omitempty"`
	ChannelMask   []uint8        `json:"channel_mask"`
	PANID         uint16         `json:"pan_id"`
	NWKUpdateID   byte           `json:"nwk_update_id"`
	NWKManagerID  uint16         `json:"nwk_manager_id"`
	Channel       uint8          `json:"channel"`
	SecurityLevel byte           `json:"security_level"`
}

// BackupDevice is one row of the backup's device list.
type BackupDevice struct {
	IEEEAddress uint64   `json:"ieee"`
	NWKAddress  uint16   `json:"nwk"`
	Status      string   `json:"status"`
	Endpoints   []byte   `json:"endpoints"`
	Relays      []uint16 `json:"relays,omitempty"`
}

// setNetworkState records the network and node parameters that Backup
// reports. Only Restore sets them; Start does not read them back from
// the radio, so Backup reports whatever the controller was last told
// via Restore.
func (c *Controller) setNetworkState(network radio.NetworkParams, node radio.NodeParams) {
	c.mu.Lock()
	c.network = network
	c.node = node
	c.mu.Unlock()
}

// Backup serializes the current network parameters and device table to
// NetworkBackup's JSON shape.
func (c *Controller) Backup(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	network, node := c.network, c.node
	c.mu.Unlock()

	b := NetworkBackup{
		NodeInfo: BackupNodeInfo{
			IEEEAddress: node.IEEEAddress,
			NWKAddress:  node.NWKAddress,
		},
		NetworkInfo: BackupNetworkInfo{
			ExtendedPANID: network.ExtendedPANID,
			PANID:         network.PANID,
			NWKUpdateID:   network.NWKUpdateID,
			Channel:       network.Channel,
			ChannelMask:   network.Channels,
			NetworkKey:    BackupKeyInfo{Key: network.NetworkKey, Seq: network.NetworkKeySeq},
			TCLinkKey:     BackupKeyInfo{Key: network.TCLinkKey, PartnerIEEE: network.TCAddress},
			Source:        "zha",
			BackupTime:    time.Now().UTC().Format(time.RFC3339),
		},
	}

	for _, ieee := range c.Devices() {
		dev, ok := c.DeviceByIEEE(ieee)
		if !ok {
			continue
		}
		b.Devices = append(b.Devices, BackupDevice{
			IEEEAddress: dev.IEEEAddress,
			NWKAddress:  dev.NWKAddress,
			Status:      dev.CurrentStatus().String(),
			Endpoints:   dev.Endpoints(),
			Relays:      dev.Relays,
		})
	}

	blob, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("controller: marshal backup: %w", err)
	}
	if c.persist != nil {
		c.persist.SaveBackup(blob)
	}
	return blob, nil
}

// Restore re-forms the network from blob's parameters. The device table
// is not repopulated from the backup directly; devices re-announce and
// re-interview as they are seen.
func (c *Controller) Restore(ctx context.Context, blob []byte) error {
	var b NetworkBackup
	if err := json.Unmarshal(blob, &b); err != nil {
		return fmt.Errorf("%w: %v", ErrBackupIncompatible, err)
	}

	network := radio.NetworkParams{
		NetworkKey:    b.NetworkInfo.NetworkKey.Key,
		ExtendedPANID: b.NetworkInfo.ExtendedPANID,
		TCLinkKey:     b.NetworkInfo.TCLinkKey.Key,
		Channels:      b.NetworkInfo.ChannelMask,
		PANID:         b.NetworkInfo.PANID,
		Channel:       b.NetworkInfo.Channel,
		NetworkKeySeq: b.NetworkInfo.NetworkKey.Seq,
		TCAddress:     b.NetworkInfo.TCLinkKey.PartnerIEEE,
		NWKUpdateID:   b.NetworkInfo.NWKUpdateID,
	}
	node := radio.NodeParams{
		IEEEAddress: b.NodeInfo.IEEEAddress,
		NWKAddress:  b.NodeInfo.NWKAddress,
	}

	if err := c.radio.WriteNetworkInfo(ctx, network, node); err != nil {
		return fmt.Errorf("%w: %v", ErrBackupIncompatible, err)
	}
	c.setNetworkState(network, node)
	return nil
}
