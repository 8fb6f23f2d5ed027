package cluster

import (
	"testing"

	"github.com/zhacore/zha/wire"
)

func TestDefaultClustersRegistered(t *testing.T) {
	for _, id := range []uint16{Basic, OnOff, LevelControl, ColorControl, WindowCovering, Thermostat, IASZone, OccupancySensing, ElectricalMeasurement, Metering, PowerConfiguration, OTAUpgrade, PollControl, Groups, Scenes, Identify} {
		if _, ok := Get(id); !ok {
			t.Errorf("cluster 0x%04x not registered", id)
		}
	}
}

func TestOnOffAttribute(t *testing.T) {
	def, ok := Get(OnOff)
	if !ok {
		t.Fatal("OnOff not registered")
	}
	attr, ok := def.Attribute(0x0000)
	if !ok || attr.Type != wire.TypeBool || !attr.Mandatory {
		t.Fatalf("got %+v", attr)
	}
}

func TestResolveAttributeType(t *testing.T) {
	typ, err := ResolveAttributeType(Basic, 0x0004)
	if err != nil || typ != wire.TypeCharStr {
		t.Fatalf("got %v %v", typ, err)
	}

	if _, err := ResolveAttributeType(0xffff, 0x0000); err != ErrUnsupportedCluster {
		t.Fatalf("got %v", err)
	}

	if _, err := ResolveAttributeType(Basic, 0x9999); err != ErrAttributeNotSupported {
		t.Fatalf("got %v", err)
	}
}

func TestManufacturerSpecificFallback(t *testing.T) {
	// No manufacturer override registered: falls back to the standard
	// definition for the cluster id.
	def, ok := GetManufacturerSpecific(0x117c, OnOff)
	if !ok || def.Name != "On/Off" {
		t.Fatalf("got %+v", def)
	}

	custom := Definition{ClusterID: 0xfc00, Name: "Custom Tuya"}
	RegisterManufacturerSpecific(0x117c, custom)

	got, ok := GetManufacturerSpecific(0x117c, 0xfc00)
	if !ok || got.Name != "Custom Tuya" {
		t.Fatalf("got %+v", got)
	}

	// A different manufacturer code with the same cluster id degrades to
	// "unknown cluster" rather than picking up someone else's override.
	if _, ok := GetManufacturerSpecific(0x9999, 0xfc00); ok {
		t.Fatalf("expected no definition for unrelated manufacturer code")
	}
}
