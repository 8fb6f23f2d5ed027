package controller

import (
	"context"
	"encoding/binary"

	"github.com/zhacore/zha/cluster"
	"github.com/zhacore/zha/radio"
	"github.com/zhacore/zha/zcl"
)

// OTA cluster (0x0019) command ids, valid when Header.FrameType is
// FrameTypeClusterSpecific and the cluster id is cluster.OTAUpgrade.
const (
	cmdQueryNextImageRequest byte = 0x01
	cmdImageBlockRequest     byte = 0x03
	cmdUpgradeEndRequest     byte = 0x06

	cmdQueryNextImageResponse byte = 0x02
	cmdImageBlockResponse     byte = 0x05
	cmdUpgradeEndResponse     byte = 0x07
)

// Query-Next-Image-Request field control bits.
const otaQueryHardwareVersionPresent byte = 0x01

// Image-Block-Request field control bits.
const (
	otaBlockRequestNodeAddrPresent      byte = 0x01
	otaBlockMinimumBlockPeriodPresent   byte = 0x02
)

// handleOTAMessage dispatches an inbound OTA-cluster command from ieee to
// the OTA engine and replies on the same profile/endpoints/TSN.
func (c *Controller) handleOTAMessage(ieee uint64, profile uint16, srcEndpoint, dstEndpoint byte, header zcl.Header, payload []byte) {
	switch header.CommandID {
	case cmdQueryNextImageRequest:
		c.handleOTAQueryNextImage(ieee, profile, srcEndpoint, dstEndpoint, header.TSN, payload)
	case cmdImageBlockRequest:
		c.handleOTAImageBlock(ieee, profile, srcEndpoint, dstEndpoint, header.TSN, payload)
	case cmdUpgradeEndRequest:
		c.handleOTAUpgradeEnd(ieee, profile, srcEndpoint, dstEndpoint, header.TSN, payload)
	default:
		c.log.Warnf("controller: unhandled OTA command %#02x from %x", header.CommandID, ieee)
	}
}

func (c *Controller) handleOTAQueryNextImage(ieee uint64, profile uint16, srcEndpoint, dstEndpoint, tsn byte, payload []byte) {
	if len(payload) < 9 {
		c.log.Warnf("controller: truncated query-next-image-request from %x", ieee)
		return
	}
	fieldControl := payload[0]
	manufacturerCode := binary.LittleEndian.Uint16(payload[1:3])
	imageType := binary.LittleEndian.Uint16(payload[3:5])
	currentFileVersion := binary.LittleEndian.Uint32(payload[5:9])

	var minHW, maxHW uint16
	if fieldControl&otaQueryHardwareVersionPresent != 0 && len(payload) >= 11 {
		hw := binary.LittleEndian.Uint16(payload[9:11])
		minHW, maxHW = hw, hw
	} else {
		maxHW = 0xFFFF
	}

	img, err := c.ota.QueryNextImage(context.Background(), ieee, manufacturerCode, imageType, currentFileVersion, minHW, maxHW)
	var resp []byte
	if err != nil {
		resp = []byte{byte(otaStatusNoImageAvailable)}
	} else {
		resp = make([]byte, 0, 13)
		resp = append(resp, byte(zcl.StatusSuccess))
		resp = binary.LittleEndian.AppendUint16(resp, img.Header.ManufacturerCode)
		resp = binary.LittleEndian.AppendUint16(resp, img.Header.ImageType)
		resp = binary.LittleEndian.AppendUint32(resp, img.Header.FileVersion)
		resp = binary.LittleEndian.AppendUint32(resp, img.Header.TotalImageSize)
	}
	c.sendOTAResponse(ieee, profile, srcEndpoint, dstEndpoint, tsn, cmdQueryNextImageResponse, resp)
}

func (c *Controller) handleOTAImageBlock(ieee uint64, profile uint16, srcEndpoint, dstEndpoint, tsn byte, payload []byte) {
	if len(payload) < 14 {
		c.log.Warnf("controller: truncated image-block-request from %x", ieee)
		return
	}
	manufacturerCode := binary.LittleEndian.Uint16(payload[1:3])
	imageType := binary.LittleEndian.Uint16(payload[3:5])
	fileVersion := binary.LittleEndian.Uint32(payload[5:9])
	offset := binary.LittleEndian.Uint32(payload[9:13])
	maxSize := payload[13]

	block, _, err := c.ota.ImageBlock(context.Background(), ieee, offset, maxSize)
	if err != nil {
		c.sendOTAResponse(ieee, profile, srcEndpoint, dstEndpoint, tsn, cmdImageBlockResponse, []byte{byte(otaStatusAbort)})
		return
	}

	resp := make([]byte, 0, 14+len(block))
	resp = append(resp, byte(zcl.StatusSuccess))
	resp = binary.LittleEndian.AppendUint16(resp, manufacturerCode)
	resp = binary.LittleEndian.AppendUint16(resp, imageType)
	resp = binary.LittleEndian.AppendUint32(resp, fileVersion)
	resp = binary.LittleEndian.AppendUint32(resp, offset)
	resp = append(resp, byte(len(block)))
	resp = append(resp, block...)
	c.sendOTAResponse(ieee, profile, srcEndpoint, dstEndpoint, tsn, cmdImageBlockResponse, resp)
}

func (c *Controller) handleOTAUpgradeEnd(ieee uint64, profile uint16, srcEndpoint, dstEndpoint, tsn byte, payload []byte) {
	if len(payload) < 9 {
		c.log.Warnf("controller: truncated upgrade-end-request from %x", ieee)
		return
	}
	status := payload[0]
	manufacturerCode := binary.LittleEndian.Uint16(payload[1:3])
	imageType := binary.LittleEndian.Uint16(payload[3:5])
	fileVersion := binary.LittleEndian.Uint32(payload[5:9])

	currentTime, upgradeTime, applied, err := c.ota.UpgradeEnd(context.Background(), ieee, status)
	if err != nil || !applied {
		// A failed upgrade leaves the device on its previous firmware;
		// no Upgrade-End-Response is owed when the device itself
		// reported failure or abort.
		return
	}

	resp := make([]byte, 0, 16)
	resp = binary.LittleEndian.AppendUint16(resp, manufacturerCode)
	resp = binary.LittleEndian.AppendUint16(resp, imageType)
	resp = binary.LittleEndian.AppendUint32(resp, fileVersion)
	resp = binary.LittleEndian.AppendUint32(resp, currentTime)
	resp = binary.LittleEndian.AppendUint32(resp, upgradeTime)
	c.sendOTAResponse(ieee, profile, srcEndpoint, dstEndpoint, tsn, cmdUpgradeEndResponse, resp)
}

// ZCL status codes used in OTA responses beyond the shared zcl.Status
// enumeration's Success.
const (
	otaStatusAbort            = 0x95
	otaStatusNoImageAvailable = 0x98
)

// sendOTAResponse mirrors the request's TSN and swaps endpoints/direction
// to reply on the OTA cluster. Responses are fire-and-forget from the
// controller's point of view: the device does not expect the controller
// to wait for a further reply.
func (c *Controller) sendOTAResponse(ieee uint64, profile uint16, requestSrcEP, requestDstEP, tsn byte, commandID byte, payload []byte) {
	builder := &zcl.FrameBuilder{
		FrameType: zcl.FrameTypeClusterSpecific,
		Direction: zcl.ServerToClient,
		TSN:       tsn,
		CommandID: commandID,
	}
	frame, err := builder.Build(payload)
	if err != nil {
		c.log.Errorf("controller: build OTA response %#02x for %x: %v", commandID, ieee, err)
		return
	}
	req := radio.Frame{
		Payload:     frame,
		DstAddress:  ieee,
		Profile:     profile,
		Cluster:     cluster.OTAUpgrade,
		SrcEndpoint: requestDstEP,
		DstEndpoint: requestSrcEP,
		Sequence:    tsn,
	}
	if err := c.radio.Request(context.Background(), req); err != nil {
		c.log.Warnf("controller: send OTA response %#02x to %x: %v", commandID, ieee, err)
	}
}
