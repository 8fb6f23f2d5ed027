package zcl

import (
	"testing"

	"github.com/zhacore/zha/wire"
)

func TestFrameBuilderRoundTrip(t *testing.T) {
	b := NewFrameBuilder(CommandReadAttributes, 0x42)
	raw, err := b.Build(EncodeReadAttributes([]uint16{4, 5}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	hdr, payload, err := ParseFrame(raw)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if hdr.TSN != 0x42 || hdr.CommandID != CommandReadAttributes {
		t.Fatalf("got %+v", hdr)
	}
	if hdr.ManufacturerSpecific {
		t.Fatalf("expected non-manufacturer-specific frame")
	}
	if hdr.Direction != ClientToServer {
		t.Fatalf("expected ClientToServer, got %v", hdr.Direction)
	}

	ids, err := DecodeReadAttributes(payload)
	if err != nil {
		t.Fatalf("DecodeReadAttributes: %v", err)
	}
	if len(ids) != 2 || ids[0] != 4 || ids[1] != 5 {
		t.Fatalf("got %v", ids)
	}
}

func TestFrameManufacturerSpecific(t *testing.T) {
	b := NewFrameBuilder(CommandReadAttributes, 0x01)
	b.ManufacturerSpecific = true
	b.ManufacturerCode = 0x117c
	b.Direction = ServerToClient

	raw, err := b.Build(nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	hdr, _, err := ParseFrame(raw)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if !hdr.ManufacturerSpecific || hdr.ManufacturerCode != 0x117c {
		t.Fatalf("got %+v", hdr)
	}
	if hdr.Direction != ServerToClient {
		t.Fatalf("got direction %v", hdr.Direction)
	}
}

func TestParseFrameTooShort(t *testing.T) {
	if _, _, err := ParseFrame(nil); err != ErrFrameTooShort {
		t.Fatalf("got %v", err)
	}
	if _, _, err := ParseFrame([]byte{0x04, 0x00, 0x00}); err != ErrFrameTooShort {
		// manufacturer-specific bit set but only 2 bytes remain after it
		t.Fatalf("got %v", err)
	}
}

func TestReadAttributesResponseRoundTrip(t *testing.T) {
	records := []ReadAttributeStatus{
		{AttrID: 4, Status: StatusSuccess, Value: wire.Value{Type: wire.TypeCharStr, Data: "IKEA of Sweden"}},
		{AttrID: 5, Status: StatusSuccess, Value: wire.Value{Type: wire.TypeCharStr, Data: "TRADFRI control outlet"}},
		{AttrID: 99, Status: StatusUnsupportedAttribute},
	}

	raw, err := EncodeReadAttributesResponse(records)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodeReadAttributesResponse(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records", len(got))
	}
	if got[0].Value.Data != "IKEA of Sweden" {
		t.Errorf("got %#v", got[0].Value.Data)
	}
	if got[2].Status != StatusUnsupportedAttribute || got[2].Value.Data != nil {
		t.Errorf("got %+v", got[2])
	}
}

func TestWriteAttributesRoundTrip(t *testing.T) {
	records := []AttributeRecord{
		{AttrID: 0x0010, Value: wire.Value{Type: wire.TypeUint16, Data: uint64(60)}},
	}
	raw, err := EncodeWriteAttributes(records)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodeWriteAttributes(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 1 || got[0].AttrID != 0x0010 || got[0].Value.Data != uint64(60) {
		t.Fatalf("got %+v", got)
	}
}

func TestWriteAttributesResponseRoundTrip(t *testing.T) {
	records := []WriteAttributeStatus{
		{AttrID: 1, Status: StatusSuccess},
		{AttrID: 2, Status: StatusReadOnly},
	}
	raw := EncodeWriteAttributesResponse(records)
	got, err := DecodeWriteAttributesResponse(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 2 || got[1].Status != StatusReadOnly {
		t.Fatalf("got %+v", got)
	}
}

func TestReportAttributesRoundTrip(t *testing.T) {
	records := []AttributeRecord{
		{AttrID: 0x0000, Value: wire.Value{Type: wire.TypeInt16, Data: int64(2150)}},
	}
	raw, err := EncodeReportAttributes(records)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodeReportAttributes(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 1 || got[0].Value.Data != int64(2150) {
		t.Fatalf("got %+v", got)
	}
}

func TestDefaultResponseRoundTrip(t *testing.T) {
	raw := EncodeDefaultResponse(DefaultResponsePayload{CommandID: CommandWriteAttributes, Status: StatusSuccess})
	got, err := DecodeDefaultResponse(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.CommandID != CommandWriteAttributes || got.Status != StatusSuccess {
		t.Fatalf("got %+v", got)
	}
}

func TestShouldSendDefaultResponse(t *testing.T) {
	cases := []struct {
		name       string
		disableBit bool
		explicit   bool
		want       bool
	}{
		{"bit0 no explicit -> send", false, false, true},
		{"bit0 with explicit -> suppress", false, true, false},
		{"bit1 -> always suppress", true, false, false},
		{"bit1 with explicit -> suppress", true, true, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := Header{DisableDefaultResponse: c.disableBit}
			if got := ShouldSendDefaultResponse(h, c.explicit); got != c.want {
				t.Errorf("got %v want %v", got, c.want)
			}
		})
	}
}

func TestCommandRegistryDispatch(t *testing.T) {
	reg := NewCommandRegistry()
	var received []byte
	reg.OnCommand(CommandReportAttributes, func(h Header, payload []byte) {
		received = payload
	})

	handled := reg.Dispatch(Header{CommandID: CommandReportAttributes}, []byte{0x01, 0x02})
	if !handled {
		t.Fatal("expected handled=true")
	}
	if len(received) != 2 {
		t.Fatalf("got %v", received)
	}

	if reg.Dispatch(Header{CommandID: CommandDefaultResponse}, nil) {
		t.Fatal("expected no handler for unregistered command")
	}
}
