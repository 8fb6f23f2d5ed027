package cluster

// Standard ZCL cluster identifiers this registry ships definitions for,
// including the OTA and Poll Control clusters the OTA engine and
// long-poll devices need.
const (
	Basic                 uint16 = 0x0000
	PowerConfiguration    uint16 = 0x0001
	Identify              uint16 = 0x0003
	Groups                uint16 = 0x0004
	Scenes                uint16 = 0x0005
	OnOff                 uint16 = 0x0006
	LevelControl          uint16 = 0x0008
	PollControl           uint16 = 0x0020
	OTAUpgrade            uint16 = 0x0019
	WindowCovering        uint16 = 0x0102
	Thermostat            uint16 = 0x0201
	IASZone               uint16 = 0x0500
	OccupancySensing      uint16 = 0x0406
	ElectricalMeasurement uint16 = 0x0b04
	Metering              uint16 = 0x0702
	ColorControl          uint16 = 0x0300
)
