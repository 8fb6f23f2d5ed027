package zhaevents

// Kind names one of the events the controller emits.
type Kind string

const (
	RawDeviceInitialized  Kind = "raw_device_initialized"
	DeviceInitialized     Kind = "device_initialized"
	DeviceJoined          Kind = "device_joined"
	DeviceLeft            Kind = "device_left"
	DeviceRemoved         Kind = "device_removed"
	NodeDescriptorUpdated Kind = "node_descriptor_updated"
	DeviceInitFailure     Kind = "device_init_failure"
	DeviceRelaysUpdated   Kind = "device_relays_updated"
	GroupAdded            Kind = "group_added"
	GroupMemberAdded      Kind = "group_member_added"
	GroupRemoved          Kind = "group_removed"
	AttributeUpdated      Kind = "attribute_updated"
	ClusterCommand        Kind = "cluster_command"
	GeneralCommand        Kind = "general_command"
	DeviceAnnounce        Kind = "device_announce"
	PermitDuration        Kind = "permit_duration"
	UnknownClusterMessage Kind = "unknown_cluster_message"
)

// Event is one occurrence on the bus: a kind plus an opaque,
// kind-specific payload (e.g. AttributeUpdatedData for
// AttributeUpdated). Callers type-assert Data against the payload type
// documented for Kind.
type Event struct {
	Data any
	Kind Kind
}

// AttributeUpdatedData is the payload of an AttributeUpdated event.
type AttributeUpdatedData struct {
	IEEEAddress uint64
	Endpoint    byte
	ClusterID   uint16
	AttrID      uint16
	Value       any
}

// DeviceJoinedData is the payload of a DeviceJoined event.
type DeviceJoinedData struct {
	IEEEAddress uint64
	NWKAddress  uint16
}

// DeviceInitFailureData is the payload of a DeviceInitFailure event.
type DeviceInitFailureData struct {
	IEEEAddress uint64
	Step        string
}
