package controller

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/zhacore/zha/cluster"
	"github.com/zhacore/zha/internal/testutil"
	"github.com/zhacore/zha/ota"
	"github.com/zhacore/zha/zcl"
	"github.com/zhacore/zha/zhaevents"
)

const testOTAIEEE uint64 = 0xec1bbdfffe544f40
const testOTAProfile uint16 = 0x0104

type stubOTAProvider struct {
	img *ota.Image
}

func (p *stubOTAProvider) Name() string  { return "stub" }
func (p *stubOTAProvider) Priority() int { return ota.PriorityLocal }
func (p *stubOTAProvider) Refresh(ctx context.Context) error { return nil }
func (p *stubOTAProvider) GetImage(ctx context.Context, manufacturerCode, imageType, minHW, maxHW uint16) (*ota.Image, bool, error) {
	if p.img == nil {
		return nil, false, nil
	}
	if p.img.Header.ManufacturerCode != manufacturerCode || p.img.Header.ImageType != imageType {
		return nil, false, nil
	}
	return p.img, true, nil
}

func buildQueryNextImageFrame(tsn byte, manufacturerCode, imageType uint16, currentFileVersion uint32) []byte {
	builder := &zcl.FrameBuilder{FrameType: zcl.FrameTypeClusterSpecific, Direction: zcl.ClientToServer, TSN: tsn, CommandID: cmdQueryNextImageRequest}
	payload := make([]byte, 0, 9)
	payload = append(payload, 0x00)
	payload = binary.LittleEndian.AppendUint16(payload, manufacturerCode)
	payload = binary.LittleEndian.AppendUint16(payload, imageType)
	payload = binary.LittleEndian.AppendUint32(payload, currentFileVersion)
	frame, _ := builder.Build(payload)
	return frame
}

func buildImageBlockFrame(tsn byte, manufacturerCode, imageType uint16, fileVersion, offset uint32, maxSize byte) []byte {
	builder := &zcl.FrameBuilder{FrameType: zcl.FrameTypeClusterSpecific, Direction: zcl.ClientToServer, TSN: tsn, CommandID: cmdImageBlockRequest}
	payload := make([]byte, 0, 14)
	payload = append(payload, 0x00)
	payload = binary.LittleEndian.AppendUint16(payload, manufacturerCode)
	payload = binary.LittleEndian.AppendUint16(payload, imageType)
	payload = binary.LittleEndian.AppendUint32(payload, fileVersion)
	payload = binary.LittleEndian.AppendUint32(payload, offset)
	payload = append(payload, maxSize)
	frame, _ := builder.Build(payload)
	return frame
}

func buildUpgradeEndFrame(tsn byte, status byte, manufacturerCode, imageType uint16, fileVersion uint32) []byte {
	builder := &zcl.FrameBuilder{FrameType: zcl.FrameTypeClusterSpecific, Direction: zcl.ClientToServer, TSN: tsn, CommandID: cmdUpgradeEndRequest}
	payload := make([]byte, 0, 9)
	payload = append(payload, status)
	payload = binary.LittleEndian.AppendUint16(payload, manufacturerCode)
	payload = binary.LittleEndian.AppendUint16(payload, imageType)
	payload = binary.LittleEndian.AppendUint32(payload, fileVersion)
	frame, _ := builder.Build(payload)
	return frame
}

func TestOTAFullUpgradeThroughDispatch(t *testing.T) {
	payload := make([]byte, 20)
	for i := range payload {
		payload[i] = byte(i)
	}
	img := &ota.Image{
		Header: ota.Header{ManufacturerCode: 4476, ImageType: 1, FileVersion: 0x01000020, TotalImageSize: uint32(len(payload))},
		SubElements: []ota.SubElement{{Tag: ota.TagUpgradeImage, Data: payload}},
	}
	engine := ota.New([]ota.Provider{&stubOTAProvider{img: img}})

	r := testutil.NewMockRadio()
	bus := zhaevents.NewEventBus(zhaevents.WithHistorySize(32))
	c := New(r, bus, WithOTAEngine(engine))

	c.HandleMessage(testOTAIEEE, testOTAProfile, cluster.OTAUpgrade, 1, 1, buildQueryNextImageFrame(10, 4476, 1, 0x01000001))
	frames := r.FramesFor("Request")
	testutil.AssertLen(t, frames, 1)
	_, respPayload, err := zcl.ParseFrame(frames[0].Frame.Payload)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, byte(zcl.StatusSuccess), respPayload[0])

	c.HandleMessage(testOTAIEEE, testOTAProfile, cluster.OTAUpgrade, 1, 1, buildImageBlockFrame(11, 4476, 1, 0x01000020, 0, 64))
	testutil.AssertLen(t, r.FramesFor("Request"), 2)

	c.HandleMessage(testOTAIEEE, testOTAProfile, cluster.OTAUpgrade, 1, 1, buildUpgradeEndFrame(12, 0x00, 4476, 1, 0x01000020))
	testutil.AssertLen(t, r.FramesFor("Request"), 3)
	if engine.TransferState(testOTAIEEE) != ota.StateApplied {
		t.Fatalf("expected transfer state applied, got %v", engine.TransferState(testOTAIEEE))
	}
}
