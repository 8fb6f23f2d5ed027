package zdo

import "github.com/zhacore/zha/wire"

// BindTarget discriminates the bind destination shape: a single device
// (group-address-style binds are represented with DestEndpoint == 0 and
// DestIEEE == 0, DestGroup set instead).
type BindTarget struct {
	DestIEEE     uint64
	DestGroup    uint16
	DestEndpoint byte
	IsGroup      bool
}

// BindRequest is the Bind_req / Unbind_req body: a source binding
// (ieee, endpoint, cluster) pointed at a destination.
type BindRequest struct {
	Target       BindTarget
	SrcIEEE      uint64
	ClusterID    uint16
	SrcEndpoint  byte
}

func encodeBindRequest(r BindRequest) []byte {
	out := make([]byte, 0, 21)
	out = appendUint64(out, r.SrcIEEE)
	out = append(out, r.SrcEndpoint, byte(r.ClusterID), byte(r.ClusterID>>8))
	if r.Target.IsGroup {
		out = append(out, 0x01)
		out = append(out, byte(r.Target.DestGroup), byte(r.Target.DestGroup>>8))
	} else {
		out = append(out, 0x03)
		out = appendUint64(out, r.Target.DestIEEE)
		out = append(out, r.Target.DestEndpoint)
	}
	return out
}

func decodeBindRequest(payload []byte) (BindRequest, error) {
	b := wire.NewBuffer(payload)
	srcIEEE, err := b.Uint(8)
	if err != nil {
		return BindRequest{}, err
	}
	srcEP, err := b.Byte()
	if err != nil {
		return BindRequest{}, err
	}
	cluster, err := b.Uint(2)
	if err != nil {
		return BindRequest{}, err
	}
	addrMode, err := b.Byte()
	if err != nil {
		return BindRequest{}, err
	}

	r := BindRequest{SrcIEEE: srcIEEE, SrcEndpoint: srcEP, ClusterID: uint16(cluster)}
	if addrMode == 0x01 {
		group, err := b.Uint(2)
		if err != nil {
			return BindRequest{}, err
		}
		r.Target = BindTarget{IsGroup: true, DestGroup: uint16(group)}
		return r, nil
	}

	destIEEE, err := b.Uint(8)
	if err != nil {
		return BindRequest{}, err
	}
	destEP, err := b.Byte()
	if err != nil {
		return BindRequest{}, err
	}
	r.Target = BindTarget{DestIEEE: destIEEE, DestEndpoint: destEP}
	return r, nil
}

// EncodeBindRequest serializes a Bind_req body.
func EncodeBindRequest(r BindRequest) []byte { return encodeBindRequest(r) }

// DecodeBindRequest parses a Bind_req body.
func DecodeBindRequest(payload []byte) (BindRequest, error) { return decodeBindRequest(payload) }

// EncodeUnbindRequest serializes an Unbind_req body (identical shape to Bind_req).
func EncodeUnbindRequest(r BindRequest) []byte { return encodeBindRequest(r) }

// DecodeUnbindRequest parses an Unbind_req body.
func DecodeUnbindRequest(payload []byte) (BindRequest, error) { return decodeBindRequest(payload) }

// BindResponse is the Bind_rsp / Unbind_rsp body: just a status.
type BindResponse struct {
	Status Status
}

func EncodeBindResponse(r BindResponse) []byte { return []byte{byte(r.Status)} }

func DecodeBindResponse(payload []byte) (BindResponse, error) {
	if len(payload) < 1 {
		return BindResponse{}, wire.ErrBufferTooShort
	}
	return BindResponse{Status: Status(payload[0])}, nil
}

func appendUint64(dst []byte, v uint64) []byte {
	for i := 0; i < 8; i++ {
		dst = append(dst, byte(v))
		v >>= 8
	}
	return dst
}
