package zdo

import "github.com/zhacore/zha/wire"

// NodeDescriptor is the 13-field descriptor fetched once per device
// during interview.
type NodeDescriptor struct {
	LogicalType              byte
	ComplexDescriptorAvail   bool
	UserDescriptorAvail      bool
	APSFlags                 byte
	FrequencyBand            byte
	MACCapabilityFlags       byte
	ManufacturerCode         uint16
	MaxBufferSize            byte
	MaxIncomingTransferSize  uint16
	ServerMask               uint16
	MaxOutgoingTransferSize  uint16
	DescriptorCapability     byte
}

// NodeDescriptorRequest is the Node_Desc_req body: the target's own
// network address.
type NodeDescriptorRequest struct {
	NWKAddr uint16
}

func EncodeNodeDescriptorRequest(r NodeDescriptorRequest) []byte {
	return []byte{byte(r.NWKAddr), byte(r.NWKAddr >> 8)}
}

func DecodeNodeDescriptorRequest(payload []byte) (NodeDescriptorRequest, error) {
	b := wire.NewBuffer(payload)
	v, err := b.Uint(2)
	if err != nil {
		return NodeDescriptorRequest{}, err
	}
	return NodeDescriptorRequest{NWKAddr: uint16(v)}, nil
}

// NodeDescriptorResponse is the Node_Desc_rsp body.
type NodeDescriptorResponse struct {
	Descriptor NodeDescriptor
	NWKAddr    uint16
	Status     Status
}

func EncodeNodeDescriptorResponse(r NodeDescriptorResponse) []byte {
	out := []byte{byte(r.Status), byte(r.NWKAddr), byte(r.NWKAddr >> 8)}

	b0 := r.Descriptor.LogicalType & 0x07
	if r.Descriptor.ComplexDescriptorAvail {
		b0 |= 1 << 3
	}
	if r.Descriptor.UserDescriptorAvail {
		b0 |= 1 << 4
	}
	out = append(out, b0, r.Descriptor.APSFlags<<3|r.Descriptor.FrequencyBand)
	out = append(out, r.Descriptor.MACCapabilityFlags)
	out = append(out, byte(r.Descriptor.ManufacturerCode), byte(r.Descriptor.ManufacturerCode>>8))
	out = append(out, r.Descriptor.MaxBufferSize)
	out = append(out, byte(r.Descriptor.MaxIncomingTransferSize), byte(r.Descriptor.MaxIncomingTransferSize>>8))
	out = append(out, byte(r.Descriptor.ServerMask), byte(r.Descriptor.ServerMask>>8))
	out = append(out, byte(r.Descriptor.MaxOutgoingTransferSize), byte(r.Descriptor.MaxOutgoingTransferSize>>8))
	out = append(out, r.Descriptor.DescriptorCapability)
	return out
}

func DecodeNodeDescriptorResponse(payload []byte) (NodeDescriptorResponse, error) {
	b := wire.NewBuffer(payload)
	statusRaw, err := b.Byte()
	if err != nil {
		return NodeDescriptorResponse{}, err
	}
	nwkRaw, err := b.Uint(2)
	if err != nil {
		return NodeDescriptorResponse{}, err
	}
	b0, err := b.Byte()
	if err != nil {
		return NodeDescriptorResponse{}, err
	}
	b1, err := b.Byte()
	if err != nil {
		return NodeDescriptorResponse{}, err
	}
	macFlags, err := b.Byte()
	if err != nil {
		return NodeDescriptorResponse{}, err
	}
	manuf, err := b.Uint(2)
	if err != nil {
		return NodeDescriptorResponse{}, err
	}
	maxBuf, err := b.Byte()
	if err != nil {
		return NodeDescriptorResponse{}, err
	}
	maxIn, err := b.Uint(2)
	if err != nil {
		return NodeDescriptorResponse{}, err
	}
	serverMask, err := b.Uint(2)
	if err != nil {
		return NodeDescriptorResponse{}, err
	}
	maxOut, err := b.Uint(2)
	if err != nil {
		return NodeDescriptorResponse{}, err
	}
	descCap, err := b.Byte()
	if err != nil {
		return NodeDescriptorResponse{}, err
	}

	return NodeDescriptorResponse{
		Status:  Status(statusRaw),
		NWKAddr: uint16(nwkRaw),
		Descriptor: NodeDescriptor{
			LogicalType:             b0 & 0x07,
			ComplexDescriptorAvail:  b0&(1<<3) != 0,
			UserDescriptorAvail:     b0&(1<<4) != 0,
			APSFlags:                b1 >> 3,
			FrequencyBand:           b1 & 0x07,
			MACCapabilityFlags:      macFlags,
			ManufacturerCode:        uint16(manuf),
			MaxBufferSize:           maxBuf,
			MaxIncomingTransferSize: uint16(maxIn),
			ServerMask:              uint16(serverMask),
			MaxOutgoingTransferSize: uint16(maxOut),
			DescriptorCapability:    descCap,
		},
	}, nil
}

// ActiveEndpointsRequest is the Active_EP_req body.
type ActiveEndpointsRequest struct {
	NWKAddr uint16
}

func EncodeActiveEndpointsRequest(r ActiveEndpointsRequest) []byte {
	return []byte{byte(r.NWKAddr), byte(r.NWKAddr >> 8)}
}

func DecodeActiveEndpointsRequest(payload []byte) (ActiveEndpointsRequest, error) {
	b := wire.NewBuffer(payload)
	v, err := b.Uint(2)
	if err != nil {
		return ActiveEndpointsRequest{}, err
	}
	return ActiveEndpointsRequest{NWKAddr: uint16(v)}, nil
}

// ActiveEndpointsResponse is the Active_EP_rsp body: the endpoint id
// list discovered by the device.
type ActiveEndpointsResponse struct {
	Endpoints []byte
	NWKAddr   uint16
	Status    Status
}

func EncodeActiveEndpointsResponse(r ActiveEndpointsResponse) []byte {
	out := []byte{byte(r.Status), byte(r.NWKAddr), byte(r.NWKAddr >> 8), byte(len(r.Endpoints))}
	return append(out, r.Endpoints...)
}

func DecodeActiveEndpointsResponse(payload []byte) (ActiveEndpointsResponse, error) {
	b := wire.NewBuffer(payload)
	statusRaw, err := b.Byte()
	if err != nil {
		return ActiveEndpointsResponse{}, err
	}
	nwkRaw, err := b.Uint(2)
	if err != nil {
		return ActiveEndpointsResponse{}, err
	}
	count, err := b.Byte()
	if err != nil {
		return ActiveEndpointsResponse{}, err
	}
	eps, err := b.Next(int(count))
	if err != nil {
		return ActiveEndpointsResponse{}, err
	}
	out := make([]byte, len(eps))
	copy(out, eps)
	return ActiveEndpointsResponse{Status: Status(statusRaw), NWKAddr: uint16(nwkRaw), Endpoints: out}, nil
}

// SimpleDescriptor is the per-endpoint profile/device-type/cluster-set
// descriptor fetched during interview.
type SimpleDescriptor struct {
	InClusters  []uint16
	OutClusters []uint16
	Endpoint    byte
	ProfileID   uint16
	DeviceType  uint16
	DeviceVer   byte
}

// SimpleDescriptorRequest is the Simple_Desc_req body.
type SimpleDescriptorRequest struct {
	NWKAddr  uint16
	Endpoint byte
}

func EncodeSimpleDescriptorRequest(r SimpleDescriptorRequest) []byte {
	return []byte{byte(r.NWKAddr), byte(r.NWKAddr >> 8), r.Endpoint}
}

func DecodeSimpleDescriptorRequest(payload []byte) (SimpleDescriptorRequest, error) {
	b := wire.NewBuffer(payload)
	nwk, err := b.Uint(2)
	if err != nil {
		return SimpleDescriptorRequest{}, err
	}
	ep, err := b.Byte()
	if err != nil {
		return SimpleDescriptorRequest{}, err
	}
	return SimpleDescriptorRequest{NWKAddr: uint16(nwk), Endpoint: ep}, nil
}

// SimpleDescriptorResponse is the Simple_Desc_rsp body.
type SimpleDescriptorResponse struct {
	Descriptor SimpleDescriptor
	NWKAddr    uint16
	Status     Status
}

func EncodeSimpleDescriptorResponse(r SimpleDescriptorResponse) []byte {
	d := r.Descriptor
	body := []byte{d.Endpoint, byte(d.ProfileID), byte(d.ProfileID >> 8), byte(d.DeviceType), byte(d.DeviceType >> 8), d.DeviceVer}
	body = append(body, byte(len(d.InClusters)))
	for _, c := range d.InClusters {
		body = append(body, byte(c), byte(c>>8))
	}
	body = append(body, byte(len(d.OutClusters)))
	for _, c := range d.OutClusters {
		body = append(body, byte(c), byte(c>>8))
	}

	out := []byte{byte(r.Status), byte(r.NWKAddr), byte(r.NWKAddr >> 8), byte(len(body))}
	return append(out, body...)
}

func DecodeSimpleDescriptorResponse(payload []byte) (SimpleDescriptorResponse, error) {
	b := wire.NewBuffer(payload)
	statusRaw, err := b.Byte()
	if err != nil {
		return SimpleDescriptorResponse{}, err
	}
	nwkRaw, err := b.Uint(2)
	if err != nil {
		return SimpleDescriptorResponse{}, err
	}
	if _, err := b.Byte(); err != nil { // length prefix, unused by this decoder
		return SimpleDescriptorResponse{}, err
	}

	ep, err := b.Byte()
	if err != nil {
		return SimpleDescriptorResponse{}, err
	}
	profile, err := b.Uint(2)
	if err != nil {
		return SimpleDescriptorResponse{}, err
	}
	devType, err := b.Uint(2)
	if err != nil {
		return SimpleDescriptorResponse{}, err
	}
	devVer, err := b.Byte()
	if err != nil {
		return SimpleDescriptorResponse{}, err
	}

	inCount, err := b.Byte()
	if err != nil {
		return SimpleDescriptorResponse{}, err
	}
	in := make([]uint16, 0, inCount)
	for i := byte(0); i < inCount; i++ {
		v, err := b.Uint(2)
		if err != nil {
			return SimpleDescriptorResponse{}, err
		}
		in = append(in, uint16(v))
	}

	outCount, err := b.Byte()
	if err != nil {
		return SimpleDescriptorResponse{}, err
	}
	out := make([]uint16, 0, outCount)
	for i := byte(0); i < outCount; i++ {
		v, err := b.Uint(2)
		if err != nil {
			return SimpleDescriptorResponse{}, err
		}
		out = append(out, uint16(v))
	}

	return SimpleDescriptorResponse{
		Status:  Status(statusRaw),
		NWKAddr: uint16(nwkRaw),
		Descriptor: SimpleDescriptor{
			Endpoint:    ep,
			ProfileID:   uint16(profile),
			DeviceType:  uint16(devType),
			DeviceVer:   devVer,
			InClusters:  in,
			OutClusters: out,
		},
	}, nil
}
