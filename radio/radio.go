package radio

import (
	"context"
	"errors"
)

// Errors a Radio implementation may return; the controller treats all of
// these as resource errors that propagate rather than retry silently.
var (
	ErrProbeFailed      = errors.New("radio: probe failed")
	ErrNetworkFormFailed = errors.New("radio: network form failed")
	ErrNotStarted        = errors.New("radio: not started")
)

// DeviceConfig is the serial/transport configuration forwarded to Probe
// and Startup.
type DeviceConfig struct {
	Path         string
	BaudRate     int
	FlowControl  bool
}

// NetworkParams is the set of network-formation parameters the core may
// ask the radio to write during restore or auto-form.
type NetworkParams struct {
	NetworkKey      [16]byte
	ExtendedPANID   uint64
	TCLinkKey       [16]byte
	Channels        []uint8
	PANID           uint16
	Channel         uint8
	NetworkKeySeq   byte
	TCAddress       uint64
	NWKUpdateID     byte
}

// NodeParams mirrors the coordinator's own identity, written alongside
// NetworkParams during restore.
type NodeParams struct {
	IEEEAddress uint64
	NWKAddress  uint16
}

// Frame is a fully-encoded APS frame plus delivery metadata, the unit
// Request/Broadcast/MRequest accept and PacketReceived/HandleMessage
// deliver.
type Frame struct {
	Payload     []byte
	SrcAddress  uint64
	DstAddress  uint64
	GroupID     uint16
	Profile     uint16
	Cluster     uint16
	SrcEndpoint byte
	DstEndpoint byte
	Sequence    byte
	RSSI        int8
	Broadcast   bool
}

// Radio is the operations the core calls on a concrete radio driver.
// Implementations live outside this module; this package only names
// the contract.
type Radio interface {
	// Probe reports whether a radio is reachable at cfg without
	// performing a full Startup.
	Probe(ctx context.Context, cfg DeviceConfig) (bool, error)

	// Startup brings the network up. If autoForm is true and no
	// network is currently formed, the radio forms one using whatever
	// NetworkParams it was last given via WriteNetworkInfo.
	Startup(ctx context.Context, autoForm bool) error

	// ForceRemove instructs the radio to remove device from its
	// neighbor/child tables without waiting for an Mgmt-Leave exchange.
	ForceRemove(ctx context.Context, ieee uint64) error

	// PermitNCP opens joining for durationSeconds network-wide.
	PermitNCP(ctx context.Context, durationSeconds byte) error

	// PermitWithKey opens joining for a specific node using an
	// install code or pre-shared key.
	PermitWithKey(ctx context.Context, ieee uint64, key []byte, durationSeconds byte) error

	// Request sends a unicast APS frame and returns once the radio
	// confirms (or fails) delivery; it does not wait for an
	// application-layer reply.
	Request(ctx context.Context, frame Frame) error

	// Broadcast sends frame to the network-wide broadcast address.
	Broadcast(ctx context.Context, frame Frame) error

	// MRequest sends frame to a multicast group.
	MRequest(ctx context.Context, frame Frame) error

	// WriteNetworkInfo writes network and node parameters, used during
	// restore to re-form a network with identical parameters.
	WriteNetworkInfo(ctx context.Context, network NetworkParams, node NodeParams) error
}

// Callbacks is the reverse direction: operations a Radio driver invokes
// on the core as events occur. The controller implements this interface.
type Callbacks interface {
	// PacketReceived delivers a raw inbound APS frame before any
	// ZCL/ZDO parsing.
	PacketReceived(frame Frame)

	// HandleMessage delivers a parsed inbound application message.
	HandleMessage(srcAddress uint64, profile, cluster uint16, srcEndpoint, dstEndpoint byte, message []byte)

	// HandleJoin notifies the core that a device joined or rejoined.
	HandleJoin(nwk uint16, ieee uint64, parentNWK uint16)

	// HandleLeave notifies the core that a device left the network.
	HandleLeave(nwk uint16, ieee uint64)

	// HandleRelaysUpdated notifies the core of a new source-route relay
	// list for ieee.
	HandleRelaysUpdated(ieee uint64, relays []uint16)
}
