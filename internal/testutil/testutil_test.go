package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/zhacore/zha/radio"
)

type interviewFixture struct {
	NodeDescriptor struct {
		LogicalType      int `json:"logical_type"`
		MACFlags         int `json:"mac_flags"`
		ManufacturerCode int `json:"manufacturer_code"`
	} `json:"node_descriptor"`
	ActiveEndpoints []int `json:"active_endpoints"`
	BasicAttributes struct {
		Manufacturer string `json:"manufacturer"`
		Model        string `json:"model"`
	} `json:"basic_attributes"`
}

func TestLoadFixtureJSON(t *testing.T) {
	var f interviewFixture
	AssertNoError(t, LoadFixtureJSON("interview_ikea_outlet.json", &f))
	AssertEqual(t, 4476, f.NodeDescriptor.ManufacturerCode)
	AssertEqual(t, "IKEA of Sweden", f.BasicAttributes.Manufacturer)
	AssertLen(t, f.ActiveEndpoints, 2)
	AssertContains(t, f.ActiveEndpoints, 242)
}

func TestLoadFixtureMissing(t *testing.T) {
	_, err := LoadFixture("does_not_exist.json")
	AssertError(t, err)
}

type otaIndexEntry struct {
	URL              string `json:"url"`
	ManufacturerCode uint16 `json:"manufacturerCode"`
	FileVersion      uint32 `json:"fileVersion"`
}

func TestLoadOTAVendorIndexFixture(t *testing.T) {
	var entries []otaIndexEntry
	AssertNoError(t, LoadFixtureJSON("ota_vendor_index.json", &entries))
	AssertLen(t, entries, 2)
	AssertEqual(t, uint16(4476), entries[0].ManufacturerCode)
	AssertTrue(t, entries[0].FileVersion > entries[1].FileVersion)
}

func TestMockRadioRecordsFrames(t *testing.T) {
	m := NewMockRadio()
	ok, err := m.Probe(context.Background(), radio.DeviceConfig{})
	AssertNoError(t, err)
	AssertTrue(t, ok)

	frame := radio.Frame{DstAddress: 0x1122334455667788, Cluster: 6}
	AssertNoError(t, m.Request(context.Background(), frame))

	last, err := m.LastFrame()
	AssertNoError(t, err)
	AssertEqual(t, "Request", last.Method)
	AssertEqual(t, uint16(6), last.Frame.Cluster)
	AssertLen(t, m.FramesFor("Request"), 1)
	AssertLen(t, m.FramesFor("Broadcast"), 0)
}

func TestMockRadioRequestHandlerOverride(t *testing.T) {
	wantErr := errors.New("delivery failed")
	m := NewMockRadio().OnRequest(func(radio.Frame) error { return wantErr })
	err := m.Request(context.Background(), radio.Frame{})
	AssertError(t, err)
	AssertEqual(t, wantErr, err)
}

func TestAssertJSONEqualIgnoresKeyOrder(t *testing.T) {
	AssertJSONEqual(t, []byte(`{"a":1,"b":2}`), []byte(`{"b":2,"a":1}`))
}
