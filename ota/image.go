package ota

import (
	"encoding/binary"
	"fmt"
)

// fileIdentifier is the fixed magic every Zigbee OTA upgrade file
// begins with.
const fileIdentifier uint32 = 0x0BEEF11E

// Field control bits governing which optional header fields follow the
// fixed portion of the header.
const (
	fieldSecurityCredentialVersion = 1 << 0
	fieldDeviceSpecific            = 1 << 1
	fieldHardwareVersions          = 1 << 2
)

// Sub-element tags.
const (
	TagUpgradeImage     uint16 = 0x0000
	TagECDSASignature   uint16 = 0x0001
	TagECDSACertificate uint16 = 0x0002
	TagImageIntegrity   uint16 = 0x0003
)

// Header is the fixed + optional portion of a Zigbee OTA upgrade file
// header.
type Header struct {
	HeaderString            [32]byte
	HeaderVersion           uint16
	HeaderLength            uint16
	FieldControl            uint16
	ManufacturerCode        uint16
	ImageType               uint16
	FileVersion             uint32
	ZigbeeStackVersion      uint16
	TotalImageSize          uint32
	SecurityCredentialVersion byte
	DestinationIEEE         uint64
	MinHardwareVersion      uint16
	MaxHardwareVersion      uint16
	HasSecurityCredential   bool
	HasDestinationIEEE      bool
	HasHardwareVersions     bool
}

// SubElement is one tagged TLV region of the image following the
// header.
type SubElement struct {
	Tag  uint16
	Data []byte
}

// Image is a fully parsed Zigbee OTA upgrade file.
type Image struct {
	Header      Header
	SubElements []SubElement
}

// Key returns the (manufacturer_code, image_type, file_version) tuple
// providers index images by.
func (img *Image) Key() ImageKey {
	return ImageKey{
		ManufacturerCode: img.Header.ManufacturerCode,
		ImageType:        img.Header.ImageType,
		FileVersion:      img.Header.FileVersion,
	}
}

// UpgradeData returns the tag 0x0000 "upgrade image" sub-element's raw
// bytes, the payload actually streamed to devices via Image-Block
// responses.
func (img *Image) UpgradeData() ([]byte, bool) {
	for _, se := range img.SubElements {
		if se.Tag == TagUpgradeImage {
			return se.Data, true
		}
	}
	return nil, false
}

// ImageKey is the three-tuple providers index images by.
type ImageKey struct {
	ManufacturerCode uint16
	ImageType        uint16
	FileVersion      uint32
}

// ParseImage decodes raw as a Zigbee OTA upgrade file.
func ParseImage(raw []byte) (*Image, error) {
	if len(raw) < 4+2+2+2+2+2+4+2+32+4 {
		return nil, fmt.Errorf("%w: header truncated", ErrInvalidImage)
	}

	pos := 0
	readU16 := func() uint16 { v := binary.LittleEndian.Uint16(raw[pos:]); pos += 2; return v }
	readU32 := func() uint32 { v := binary.LittleEndian.Uint32(raw[pos:]); pos += 4; return v }

	if id := readU32(); id != fileIdentifier {
		return nil, fmt.Errorf("%w: file identifier %#08x", ErrInvalidImage, id)
	}

	h := Header{}
	h.HeaderVersion = readU16()
	h.HeaderLength = readU16()
	h.FieldControl = readU16()
	h.ManufacturerCode = readU16()
	h.ImageType = readU16()
	h.FileVersion = readU32()
	h.ZigbeeStackVersion = readU16()
	copy(h.HeaderString[:], raw[pos:pos+32])
	pos += 32
	h.TotalImageSize = readU32()

	h.HasSecurityCredential = h.FieldControl&fieldSecurityCredentialVersion != 0
	if h.HasSecurityCredential {
		if len(raw) < pos+1 {
			return nil, fmt.Errorf("%w: security credential version truncated", ErrInvalidImage)
		}
		h.SecurityCredentialVersion = raw[pos]
		pos++
	}

	h.HasDestinationIEEE = h.FieldControl&fieldDeviceSpecific != 0
	if h.HasDestinationIEEE {
		if len(raw) < pos+8 {
			return nil, fmt.Errorf("%w: destination IEEE truncated", ErrInvalidImage)
		}
		h.DestinationIEEE = binary.LittleEndian.Uint64(raw[pos:])
		pos += 8
	}

	h.HasHardwareVersions = h.FieldControl&fieldHardwareVersions != 0
	if h.HasHardwareVersions {
		if len(raw) < pos+4 {
			return nil, fmt.Errorf("%w: hardware versions truncated", ErrInvalidImage)
		}
		h.MinHardwareVersion = readU16()
		h.MaxHardwareVersion = readU16()
	}

	img := &Image{Header: h}
	for pos < len(raw) {
		if len(raw)-pos < 6 {
			return nil, fmt.Errorf("%w: sub-element header truncated", ErrInvalidImage)
		}
		tag := readU16()
		length := readU32()
		if uint32(len(raw)-pos) < length {
			return nil, fmt.Errorf("%w: sub-element %#04x data truncated", ErrInvalidImage, tag)
		}
		data := make([]byte, length)
		copy(data, raw[pos:pos+int(length)])
		pos += int(length)
		img.SubElements = append(img.SubElements, SubElement{Tag: tag, Data: data})
	}

	return img, nil
}

// EncodeImage serializes img back to its wire form, used by tests and
// by a local-directory provider that wants to synthesize fixtures.
func EncodeImage(img *Image) []byte {
	h := img.Header
	out := make([]byte, 0, 64+len(img.SubElements)*8)
	put32 := func(v uint32) { out = binary.LittleEndian.AppendUint32(out, v) }
	put16 := func(v uint16) { out = binary.LittleEndian.AppendUint16(out, v) }

	put32(fileIdentifier)
	put16(h.HeaderVersion)
	put16(h.HeaderLength)
	put16(h.FieldControl)
	put16(h.ManufacturerCode)
	put16(h.ImageType)
	put32(h.FileVersion)
	put16(h.ZigbeeStackVersion)
	out = append(out, h.HeaderString[:]...)
	put32(h.TotalImageSize)

	if h.HasSecurityCredential {
		out = append(out, h.SecurityCredentialVersion)
	}
	if h.HasDestinationIEEE {
		out = binary.LittleEndian.AppendUint64(out, h.DestinationIEEE)
	}
	if h.HasHardwareVersions {
		put16(h.MinHardwareVersion)
		put16(h.MaxHardwareVersion)
	}

	for _, se := range img.SubElements {
		put16(se.Tag)
		put32(uint32(len(se.Data)))
		out = append(out, se.Data...)
	}
	return out
}
