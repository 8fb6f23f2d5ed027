package zcl

import "github.com/zhacore/zha/wire"

// General command ids, valid when Header.FrameType is FrameTypeGeneral.
const (
	CommandReadAttributes               byte = 0x00
	CommandReadAttributesResponse       byte = 0x01
	CommandWriteAttributes              byte = 0x02
	CommandWriteAttributesUndivided     byte = 0x03
	CommandWriteAttributesResponse      byte = 0x04
	CommandWriteAttributesNoResponse    byte = 0x05
	CommandConfigureReporting           byte = 0x06
	CommandConfigureReportingResponse   byte = 0x07
	CommandReadReportingConfiguration   byte = 0x08
	CommandReadReportingConfigResponse  byte = 0x09
	CommandReportAttributes             byte = 0x0a
	CommandDefaultResponse              byte = 0x0b
	CommandDiscoverAttributes           byte = 0x0c
	CommandDiscoverAttributesResponse   byte = 0x0d
	CommandDiscoverCommandsReceived     byte = 0x11
	CommandDiscoverCommandsReceivedResp byte = 0x12
	CommandDiscoverCommandsGenerated    byte = 0x13
	CommandDiscoverCommandsGeneratedResp byte = 0x14
	CommandDiscoverAttributesExtended   byte = 0x15
	CommandDiscoverAttributesExtResponse byte = 0x16
)

// Status is the one-byte ZCL status code used in Default-Response and in
// most *-Response payloads.
type Status byte

const (
	StatusSuccess            Status = 0x00
	StatusFailure            Status = 0x01
	StatusNotAuthorized      Status = 0x7e
	StatusMalformedCommand   Status = 0x80
	StatusUnsupClusterCmd    Status = 0x81
	StatusUnsupGeneralCmd    Status = 0x82
	StatusUnsupManufClusterCmd Status = 0x83
	StatusUnsupManufGeneralCmd Status = 0x84
	StatusInvalidField       Status = 0x85
	StatusUnsupportedAttribute Status = 0x86
	StatusInvalidValue       Status = 0x87
	StatusReadOnly           Status = 0x88
	StatusInsufficientSpace  Status = 0x89
	StatusDuplicateExists    Status = 0x8a
	StatusNotFound           Status = 0x8b
	StatusTimeout            Status = 0x94
)

// AttributeRecord is one (attr_id, value) pair as carried by
// Write-Attributes requests and Report-Attributes notifications.
type AttributeRecord struct {
	Value  wire.Value
	AttrID uint16
}

// ReadAttributeStatus is one record of a Read-Attributes-Response: the
// attribute id, a status, and the value when status is success.
type ReadAttributeStatus struct {
	Value  wire.Value
	AttrID uint16
	Status Status
}

// WriteAttributeStatus is one record of a Write-Attributes-Response.
// Per the ZCL spec, attributes that wrote successfully are omitted from
// the response entirely unless Undivided semantics require echoing all
// of them; this package always reports every attempted write.
type WriteAttributeStatus struct {
	AttrID uint16
	Status Status
}

// ReportingConfig is one record of a Configure-Reporting request, for
// the "report" direction (the "receive" direction, used to configure
// reports this node expects from a remote attribute, carries only
// AttrID, AttrType and Timeout and is encoded with Direction=1).
type ReportingConfig struct {
	AttrType          wire.TypeID
	AttrID            uint16
	MinInterval       uint16
	MaxInterval       uint16
	ReportableChange  wire.Value
	TimeoutPeriod     uint16
	Direction         byte // 0 = report direction, 1 = receive direction
}

// DefaultResponsePayload is the two-byte body of a Default-Response
// frame: the command id being responded to and its status.
type DefaultResponsePayload struct {
	CommandID byte
	Status    Status
}

// EncodeReadAttributes serializes a Read-Attributes request body: a flat
// list of attribute ids.
func EncodeReadAttributes(attrIDs []uint16) []byte {
	out := make([]byte, 0, len(attrIDs)*2)
	for _, id := range attrIDs {
		out = append(out, byte(id), byte(id>>8))
	}
	return out
}

// DecodeReadAttributes parses a Read-Attributes request body.
func DecodeReadAttributes(payload []byte) ([]uint16, error) {
	b := wire.NewBuffer(payload)
	var ids []uint16
	for b.Len() > 0 {
		v, err := b.Uint(2)
		if err != nil {
			return nil, err
		}
		ids = append(ids, uint16(v))
	}
	return ids, nil
}

// EncodeReadAttributesResponse serializes the records of a
// Read-Attributes-Response.
func EncodeReadAttributesResponse(records []ReadAttributeStatus) ([]byte, error) {
	var out []byte
	for _, r := range records {
		out = append(out, byte(r.AttrID), byte(r.AttrID>>8), byte(r.Status))
		if r.Status == StatusSuccess {
			tagged, err := wire.EncodeTagged(nil, r.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, tagged...)
		}
	}
	return out, nil
}

// DecodeReadAttributesResponse parses a Read-Attributes-Response body.
func DecodeReadAttributesResponse(payload []byte) ([]ReadAttributeStatus, error) {
	b := wire.NewBuffer(payload)
	var out []ReadAttributeStatus
	for b.Len() > 0 {
		idRaw, err := b.Uint(2)
		if err != nil {
			return nil, err
		}
		statusRaw, err := b.Byte()
		if err != nil {
			return nil, err
		}
		rec := ReadAttributeStatus{AttrID: uint16(idRaw), Status: Status(statusRaw)}
		if rec.Status == StatusSuccess {
			v, err := wire.DecodeTagged(b)
			if err != nil {
				return nil, err
			}
			rec.Value = v
		}
		out = append(out, rec)
	}
	return out, nil
}

// EncodeWriteAttributes serializes a Write-Attributes request body.
func EncodeWriteAttributes(records []AttributeRecord) ([]byte, error) {
	var out []byte
	for _, r := range records {
		out = append(out, byte(r.AttrID), byte(r.AttrID>>8))
		tagged, err := wire.EncodeTagged(nil, r.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, tagged...)
	}
	return out, nil
}

// DecodeWriteAttributes parses a Write-Attributes request body.
func DecodeWriteAttributes(payload []byte) ([]AttributeRecord, error) {
	b := wire.NewBuffer(payload)
	var out []AttributeRecord
	for b.Len() > 0 {
		idRaw, err := b.Uint(2)
		if err != nil {
			return nil, err
		}
		v, err := wire.DecodeTagged(b)
		if err != nil {
			return nil, err
		}
		out = append(out, AttributeRecord{AttrID: uint16(idRaw), Value: v})
	}
	return out, nil
}

// EncodeWriteAttributesResponse serializes the records of a
// Write-Attributes-Response.
func EncodeWriteAttributesResponse(records []WriteAttributeStatus) []byte {
	out := make([]byte, 0, len(records)*3)
	for _, r := range records {
		out = append(out, byte(r.Status), byte(r.AttrID), byte(r.AttrID>>8))
	}
	return out
}

// DecodeWriteAttributesResponse parses a Write-Attributes-Response body.
func DecodeWriteAttributesResponse(payload []byte) ([]WriteAttributeStatus, error) {
	b := wire.NewBuffer(payload)
	var out []WriteAttributeStatus
	for b.Len() > 0 {
		statusRaw, err := b.Byte()
		if err != nil {
			return nil, err
		}
		idRaw, err := b.Uint(2)
		if err != nil {
			return nil, err
		}
		out = append(out, WriteAttributeStatus{Status: Status(statusRaw), AttrID: uint16(idRaw)})
	}
	return out, nil
}

// EncodeReportAttributes serializes a Report-Attributes body: records
// with no status byte, always carrying a value.
func EncodeReportAttributes(records []AttributeRecord) ([]byte, error) {
	var out []byte
	for _, r := range records {
		out = append(out, byte(r.AttrID), byte(r.AttrID>>8))
		tagged, err := wire.EncodeTagged(nil, r.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, tagged...)
	}
	return out, nil
}

// DecodeReportAttributes parses a Report-Attributes body.
func DecodeReportAttributes(payload []byte) ([]AttributeRecord, error) {
	b := wire.NewBuffer(payload)
	var out []AttributeRecord
	for b.Len() > 0 {
		idRaw, err := b.Uint(2)
		if err != nil {
			return nil, err
		}
		v, err := wire.DecodeTagged(b)
		if err != nil {
			return nil, err
		}
		out = append(out, AttributeRecord{AttrID: uint16(idRaw), Value: v})
	}
	return out, nil
}

// EncodeDefaultResponse serializes a Default-Response body.
func EncodeDefaultResponse(p DefaultResponsePayload) []byte {
	return []byte{p.CommandID, byte(p.Status)}
}

// DecodeDefaultResponse parses a Default-Response body.
func DecodeDefaultResponse(payload []byte) (DefaultResponsePayload, error) {
	if len(payload) < 2 {
		return DefaultResponsePayload{}, ErrFrameTooShort
	}
	return DefaultResponsePayload{CommandID: payload[0], Status: Status(payload[1])}, nil
}
