package cluster

import "github.com/zhacore/zha/wire"

// init registers the default cluster set as a map-literal-of-structs
// table.
func init() {
	for _, def := range defaultDefinitions {
		Register(def)
	}
}

var defaultDefinitions = []Definition{
	{
		ClusterID: Basic,
		Name:      "Basic",
		Attributes: map[uint16]Attribute{
			0x0000: {ID: 0x0000, Name: "ZCLVersion", Type: wire.TypeUint8, Access: AccessRead, Mandatory: true},
			0x0001: {ID: 0x0001, Name: "ApplicationVersion", Type: wire.TypeUint8, Access: AccessRead},
			0x0004: {ID: 0x0004, Name: "ManufacturerName", Type: wire.TypeCharStr, Access: AccessRead, Mandatory: true},
			0x0005: {ID: 0x0005, Name: "ModelIdentifier", Type: wire.TypeCharStr, Access: AccessRead, Mandatory: true},
			0x0007: {ID: 0x0007, Name: "PowerSource", Type: wire.TypeEnum8, Access: AccessRead, Mandatory: true},
			0x4000: {ID: 0x4000, Name: "SWBuildID", Type: wire.TypeCharStr, Access: AccessRead},
		},
		CommandsClientToServer: map[byte]Command{
			0x00: {ID: 0x00, Name: "ResetToFactoryDefaults", Response: -1},
		},
	},
	{
		ClusterID: PowerConfiguration,
		Name:      "Power Configuration",
		Attributes: map[uint16]Attribute{
			0x0020: {ID: 0x0020, Name: "BatteryVoltage", Type: wire.TypeUint8, Access: AccessRead | AccessReportable},
			0x0021: {ID: 0x0021, Name: "BatteryPercentageRemaining", Type: wire.TypeUint8, Access: AccessRead | AccessReportable},
		},
	},
	{
		ClusterID: Identify,
		Name:      "Identify",
		Attributes: map[uint16]Attribute{
			0x0000: {ID: 0x0000, Name: "IdentifyTime", Type: wire.TypeUint16, Access: AccessRead | AccessWrite, Mandatory: true},
		},
		CommandsClientToServer: map[byte]Command{
			0x00: {ID: 0x00, Name: "Identify", Response: -1},
			0x01: {ID: 0x01, Name: "IdentifyQuery", Response: 0x00},
		},
		CommandsServerToClient: map[byte]Command{
			0x00: {ID: 0x00, Name: "IdentifyQueryResponse", Response: -1},
		},
	},
	{
		ClusterID: Groups,
		Name:      "Groups",
		Attributes: map[uint16]Attribute{
			0x0000: {ID: 0x0000, Name: "NameSupport", Type: wire.TypeBitmap8, Access: AccessRead},
		},
		CommandsClientToServer: map[byte]Command{
			0x00: {ID: 0x00, Name: "AddGroup", Response: 0x00},
			0x01: {ID: 0x01, Name: "ViewGroup", Response: 0x01},
			0x02: {ID: 0x02, Name: "GetGroupMembership", Response: 0x02},
			0x03: {ID: 0x03, Name: "RemoveGroup", Response: 0x03},
			0x04: {ID: 0x04, Name: "RemoveAllGroups", Response: -1},
		},
		CommandsServerToClient: map[byte]Command{
			0x00: {ID: 0x00, Name: "AddGroupResponse", Response: -1},
			0x01: {ID: 0x01, Name: "ViewGroupResponse", Response: -1},
			0x02: {ID: 0x02, Name: "GetGroupMembershipResponse", Response: -1},
			0x03: {ID: 0x03, Name: "RemoveGroupResponse", Response: -1},
		},
	},
	{
		ClusterID:  Scenes,
		Name:       "Scenes",
		Attributes: map[uint16]Attribute{
			0x0000: {ID: 0x0000, Name: "SceneCount", Type: wire.TypeUint8, Access: AccessRead},
			0x0001: {ID: 0x0001, Name: "CurrentScene", Type: wire.TypeUint8, Access: AccessRead},
			0x0002: {ID: 0x0002, Name: "CurrentGroup", Type: wire.TypeUint16, Access: AccessRead},
		},
		CommandsClientToServer: map[byte]Command{
			0x00: {ID: 0x00, Name: "AddScene", Response: 0x00},
			0x05: {ID: 0x05, Name: "RecallScene", Response: -1},
		},
	},
	{
		ClusterID: OnOff,
		Name:      "On/Off",
		Attributes: map[uint16]Attribute{
			0x0000: {ID: 0x0000, Name: "OnOff", Type: wire.TypeBool, Access: AccessRead | AccessReportable, Mandatory: true},
		},
		CommandsClientToServer: map[byte]Command{
			0x00: {ID: 0x00, Name: "Off", Response: -1},
			0x01: {ID: 0x01, Name: "On", Response: -1},
			0x02: {ID: 0x02, Name: "Toggle", Response: -1},
		},
	},
	{
		ClusterID: LevelControl,
		Name:      "Level Control",
		Attributes: map[uint16]Attribute{
			0x0000: {ID: 0x0000, Name: "CurrentLevel", Type: wire.TypeUint8, Access: AccessRead | AccessReportable, Mandatory: true},
			0x0010: {ID: 0x0010, Name: "OnOffTransitionTime", Type: wire.TypeUint16, Access: AccessRead | AccessWrite},
		},
		CommandsClientToServer: map[byte]Command{
			0x00: {ID: 0x00, Name: "MoveToLevel", Response: -1},
			0x04: {ID: 0x04, Name: "MoveToLevelWithOnOff", Response: -1},
		},
	},
	{
		ClusterID: ColorControl,
		Name:      "Color Control",
		Attributes: map[uint16]Attribute{
			0x0000: {ID: 0x0000, Name: "CurrentHue", Type: wire.TypeUint8, Access: AccessRead | AccessReportable},
			0x0001: {ID: 0x0001, Name: "CurrentSaturation", Type: wire.TypeUint8, Access: AccessRead | AccessReportable},
			0x0003: {ID: 0x0003, Name: "CurrentX", Type: wire.TypeUint16, Access: AccessRead | AccessReportable},
			0x0004: {ID: 0x0004, Name: "CurrentY", Type: wire.TypeUint16, Access: AccessRead | AccessReportable},
			0x0007: {ID: 0x0007, Name: "ColorTemperatureMireds", Type: wire.TypeUint16, Access: AccessRead | AccessReportable},
		},
		CommandsClientToServer: map[byte]Command{
			0x07: {ID: 0x07, Name: "MoveToColorTemperature", Response: -1},
		},
	},
	{
		ClusterID: WindowCovering,
		Name:      "Window Covering",
		Attributes: map[uint16]Attribute{
			0x0008: {ID: 0x0008, Name: "CurrentPositionLiftPercentage", Type: wire.TypeUint8, Access: AccessRead | AccessReportable},
		},
		CommandsClientToServer: map[byte]Command{
			0x00: {ID: 0x00, Name: "UpOpen", Response: -1},
			0x01: {ID: 0x01, Name: "DownClose", Response: -1},
			0x02: {ID: 0x02, Name: "Stop", Response: -1},
			0x05: {ID: 0x05, Name: "GoToLiftPercentage", Response: -1},
		},
	},
	{
		ClusterID: Thermostat,
		Name:      "Thermostat",
		Attributes: map[uint16]Attribute{
			0x0000: {ID: 0x0000, Name: "LocalTemperature", Type: wire.TypeInt16, Access: AccessRead | AccessReportable, Mandatory: true},
			0x0012: {ID: 0x0012, Name: "OccupiedHeatingSetpoint", Type: wire.TypeInt16, Access: AccessRead | AccessWrite},
			0x001c: {ID: 0x001c, Name: "SystemMode", Type: wire.TypeEnum8, Access: AccessRead | AccessWrite, Mandatory: true},
		},
	},
	{
		ClusterID: IASZone,
		Name:      "IAS Zone",
		Attributes: map[uint16]Attribute{
			0x0000: {ID: 0x0000, Name: "ZoneState", Type: wire.TypeEnum8, Access: AccessRead, Mandatory: true},
			0x0001: {ID: 0x0001, Name: "ZoneType", Type: wire.TypeEnum16, Access: AccessRead, Mandatory: true},
			0x0002: {ID: 0x0002, Name: "ZoneStatus", Type: wire.TypeBitmap16, Access: AccessRead | AccessReportable, Mandatory: true},
			0x0010: {ID: 0x0010, Name: "IASCIEAddress", Type: wire.TypeIEEEAddr, Access: AccessRead | AccessWrite, Mandatory: true},
		},
		CommandsServerToClient: map[byte]Command{
			0x00: {ID: 0x00, Name: "ZoneStatusChangeNotification", Response: -1},
		},
	},
	{
		ClusterID: OccupancySensing,
		Name:      "Occupancy Sensing",
		Attributes: map[uint16]Attribute{
			0x0000: {ID: 0x0000, Name: "Occupancy", Type: wire.TypeBitmap8, Access: AccessRead | AccessReportable, Mandatory: true},
			0x0001: {ID: 0x0001, Name: "OccupancySensorType", Type: wire.TypeEnum8, Access: AccessRead, Mandatory: true},
		},
	},
	{
		ClusterID: ElectricalMeasurement,
		Name:      "Electrical Measurement",
		Attributes: map[uint16]Attribute{
			0x0505: {ID: 0x0505, Name: "RMSVoltage", Type: wire.TypeUint16, Access: AccessRead | AccessReportable},
			0x0508: {ID: 0x0508, Name: "RMSCurrent", Type: wire.TypeUint16, Access: AccessRead | AccessReportable},
			0x050b: {ID: 0x050b, Name: "ActivePower", Type: wire.TypeInt16, Access: AccessRead | AccessReportable},
		},
	},
	{
		ClusterID: Metering,
		Name:      "Metering",
		Attributes: map[uint16]Attribute{
			0x0000: {ID: 0x0000, Name: "CurrentSummationDelivered", Type: wire.TypeUint48, Access: AccessRead | AccessReportable, Mandatory: true},
			0x0300: {ID: 0x0300, Name: "UnitOfMeasure", Type: wire.TypeEnum8, Access: AccessRead, Mandatory: true},
		},
	},
	{
		ClusterID: PollControl,
		Name:      "Poll Control",
		Attributes: map[uint16]Attribute{
			0x0000: {ID: 0x0000, Name: "CheckInInterval", Type: wire.TypeUint32, Access: AccessRead | AccessWrite, Mandatory: true},
			0x0001: {ID: 0x0001, Name: "LongPollInterval", Type: wire.TypeUint32, Access: AccessRead, Mandatory: true},
			0x0002: {ID: 0x0002, Name: "ShortPollInterval", Type: wire.TypeUint16, Access: AccessRead, Mandatory: true},
		},
		CommandsServerToClient: map[byte]Command{
			0x00: {ID: 0x00, Name: "CheckIn", Response: -1},
		},
		CommandsClientToServer: map[byte]Command{
			0x00: {ID: 0x00, Name: "CheckInResponse", Response: -1},
			0x02: {ID: 0x02, Name: "SetLongPollInterval", Response: -1},
		},
	},
	{
		ClusterID: OTAUpgrade,
		Name:      "OTA Upgrade",
		Attributes: map[uint16]Attribute{
			0x0000: {ID: 0x0000, Name: "UpgradeServerID", Type: wire.TypeIEEEAddr, Access: AccessRead, Mandatory: true},
			0x0002: {ID: 0x0002, Name: "CurrentFileVersion", Type: wire.TypeUint32, Access: AccessRead},
			0x0006: {ID: 0x0006, Name: "ImageUpgradeStatus", Type: wire.TypeEnum8, Access: AccessRead, Mandatory: true},
		},
		CommandsClientToServer: map[byte]Command{
			0x01: {ID: 0x01, Name: "QueryNextImageRequest", Response: 0x02},
			0x03: {ID: 0x03, Name: "ImageBlockRequest", Response: 0x05},
			0x06: {ID: 0x06, Name: "UpgradeEndRequest", Response: 0x07},
		},
		CommandsServerToClient: map[byte]Command{
			0x02: {ID: 0x02, Name: "QueryNextImageResponse", Response: -1},
			0x05: {ID: 0x05, Name: "ImageBlockResponse", Response: -1},
			0x07: {ID: 0x07, Name: "UpgradeEndResponse", Response: -1},
		},
	},
}
