package zdo

import "github.com/zhacore/zha/wire"

// Neighbor is one entry of a Mgmt_Lqi_rsp neighbor table listing.
type Neighbor struct {
	ExtendedPANID  uint64
	IEEE           uint64
	NWK            uint16
	DeviceType     byte
	RxOnWhenIdle   byte
	Relationship   byte
	PermitJoining  byte
	Depth          byte
	LQI            byte
}

// MgmtLqiRequest is the Mgmt_Lqi_req body: a paging index into the
// neighbor table.
type MgmtLqiRequest struct {
	StartIndex byte
}

func EncodeMgmtLqiRequest(r MgmtLqiRequest) []byte { return []byte{r.StartIndex} }

func DecodeMgmtLqiRequest(payload []byte) (MgmtLqiRequest, error) {
	if len(payload) < 1 {
		return MgmtLqiRequest{}, wire.ErrBufferTooShort
	}
	return MgmtLqiRequest{StartIndex: payload[0]}, nil
}

// MgmtLqiResponse is the Mgmt_Lqi_rsp body.
type MgmtLqiResponse struct {
	Neighbors       []Neighbor
	NeighborTableEntries byte
	StartIndex      byte
	Status          Status
}

func EncodeMgmtLqiResponse(r MgmtLqiResponse) []byte {
	out := []byte{byte(r.Status), r.NeighborTableEntries, r.StartIndex, byte(len(r.Neighbors))}
	for _, n := range r.Neighbors {
		out = appendUint64(out, n.ExtendedPANID)
		out = appendUint64(out, n.IEEE)
		out = append(out, byte(n.NWK), byte(n.NWK>>8))
		out = append(out, n.DeviceType&0x03|n.RxOnWhenIdle<<2|n.Relationship<<4)
		out = append(out, n.PermitJoining&0x03)
		out = append(out, n.Depth)
		out = append(out, n.LQI)
	}
	return out
}

func DecodeMgmtLqiResponse(payload []byte) (MgmtLqiResponse, error) {
	b := wire.NewBuffer(payload)
	statusRaw, err := b.Byte()
	if err != nil {
		return MgmtLqiResponse{}, err
	}
	entries, err := b.Byte()
	if err != nil {
		return MgmtLqiResponse{}, err
	}
	startIdx, err := b.Byte()
	if err != nil {
		return MgmtLqiResponse{}, err
	}
	count, err := b.Byte()
	if err != nil {
		return MgmtLqiResponse{}, err
	}

	resp := MgmtLqiResponse{Status: Status(statusRaw), NeighborTableEntries: entries, StartIndex: startIdx}
	for i := byte(0); i < count; i++ {
		extPan, err := b.Uint(8)
		if err != nil {
			return MgmtLqiResponse{}, err
		}
		ieee, err := b.Uint(8)
		if err != nil {
			return MgmtLqiResponse{}, err
		}
		nwk, err := b.Uint(2)
		if err != nil {
			return MgmtLqiResponse{}, err
		}
		typeByte, err := b.Byte()
		if err != nil {
			return MgmtLqiResponse{}, err
		}
		permit, err := b.Byte()
		if err != nil {
			return MgmtLqiResponse{}, err
		}
		depth, err := b.Byte()
		if err != nil {
			return MgmtLqiResponse{}, err
		}
		lqi, err := b.Byte()
		if err != nil {
			return MgmtLqiResponse{}, err
		}
		resp.Neighbors = append(resp.Neighbors, Neighbor{
			ExtendedPANID: extPan,
			IEEE:          ieee,
			NWK:           uint16(nwk),
			DeviceType:    typeByte & 0x03,
			RxOnWhenIdle:  (typeByte >> 2) & 0x03,
			Relationship:  (typeByte >> 4) & 0x07,
			PermitJoining: permit & 0x03,
			Depth:         depth,
			LQI:           lqi,
		})
	}
	return resp, nil
}

// Route is one entry of a Mgmt_Rtg_rsp routing table listing.
type Route struct {
	DestNWK     uint16
	RouteStatus byte
	MemoryConstrained bool
	ManyToOne   bool
	RecordRequired bool
	NextHop     uint16
}

// MgmtRtgRequest is the Mgmt_Rtg_req body.
type MgmtRtgRequest struct {
	StartIndex byte
}

func EncodeMgmtRtgRequest(r MgmtRtgRequest) []byte { return []byte{r.StartIndex} }

func DecodeMgmtRtgRequest(payload []byte) (MgmtRtgRequest, error) {
	if len(payload) < 1 {
		return MgmtRtgRequest{}, wire.ErrBufferTooShort
	}
	return MgmtRtgRequest{StartIndex: payload[0]}, nil
}

// MgmtRtgResponse is the Mgmt_Rtg_rsp body.
type MgmtRtgResponse struct {
	Routes          []Route
	RoutingTableEntries byte
	StartIndex      byte
	Status          Status
}

func EncodeMgmtRtgResponse(r MgmtRtgResponse) []byte {
	out := []byte{byte(r.Status), r.RoutingTableEntries, r.StartIndex, byte(len(r.Routes))}
	for _, rt := range r.Routes {
		out = append(out, byte(rt.DestNWK), byte(rt.DestNWK>>8))
		flags := rt.RouteStatus & 0x07
		if rt.MemoryConstrained {
			flags |= 1 << 3
		}
		if rt.ManyToOne {
			flags |= 1 << 4
		}
		if rt.RecordRequired {
			flags |= 1 << 5
		}
		out = append(out, flags)
		out = append(out, byte(rt.NextHop), byte(rt.NextHop>>8))
	}
	return out
}

func DecodeMgmtRtgResponse(payload []byte) (MgmtRtgResponse, error) {
	b := wire.NewBuffer(payload)
	statusRaw, err := b.Byte()
	if err != nil {
		return MgmtRtgResponse{}, err
	}
	entries, err := b.Byte()
	if err != nil {
		return MgmtRtgResponse{}, err
	}
	startIdx, err := b.Byte()
	if err != nil {
		return MgmtRtgResponse{}, err
	}
	count, err := b.Byte()
	if err != nil {
		return MgmtRtgResponse{}, err
	}

	resp := MgmtRtgResponse{Status: Status(statusRaw), RoutingTableEntries: entries, StartIndex: startIdx}
	for i := byte(0); i < count; i++ {
		dst, err := b.Uint(2)
		if err != nil {
			return MgmtRtgResponse{}, err
		}
		flags, err := b.Byte()
		if err != nil {
			return MgmtRtgResponse{}, err
		}
		nextHop, err := b.Uint(2)
		if err != nil {
			return MgmtRtgResponse{}, err
		}
		resp.Routes = append(resp.Routes, Route{
			DestNWK:           uint16(dst),
			RouteStatus:       flags & 0x07,
			MemoryConstrained: flags&(1<<3) != 0,
			ManyToOne:         flags&(1<<4) != 0,
			RecordRequired:    flags&(1<<5) != 0,
			NextHop:           uint16(nextHop),
		})
	}
	return resp, nil
}

// MgmtPermitJoiningRequest is the Mgmt_Permit_Joining_req body.
type MgmtPermitJoiningRequest struct {
	PermitDuration byte // seconds, 0..254; 255 = permanent
	TCSignificance byte
}

func EncodeMgmtPermitJoiningRequest(r MgmtPermitJoiningRequest) []byte {
	return []byte{r.PermitDuration, r.TCSignificance}
}

func DecodeMgmtPermitJoiningRequest(payload []byte) (MgmtPermitJoiningRequest, error) {
	if len(payload) < 2 {
		return MgmtPermitJoiningRequest{}, wire.ErrBufferTooShort
	}
	return MgmtPermitJoiningRequest{PermitDuration: payload[0], TCSignificance: payload[1]}, nil
}

// MgmtLeaveRequest is the Mgmt_Leave_req body.
type MgmtLeaveRequest struct {
	DeviceAddress uint64
	RemoveChildren bool
	Rejoin         bool
}

func EncodeMgmtLeaveRequest(r MgmtLeaveRequest) []byte {
	out := appendUint64(nil, r.DeviceAddress)
	var flags byte
	if r.RemoveChildren {
		flags |= 1 << 6
	}
	if r.Rejoin {
		flags |= 1 << 7
	}
	return append(out, flags)
}

func DecodeMgmtLeaveRequest(payload []byte) (MgmtLeaveRequest, error) {
	b := wire.NewBuffer(payload)
	addr, err := b.Uint(8)
	if err != nil {
		return MgmtLeaveRequest{}, err
	}
	flags, err := b.Byte()
	if err != nil {
		return MgmtLeaveRequest{}, err
	}
	return MgmtLeaveRequest{
		DeviceAddress:  addr,
		RemoveChildren: flags&(1<<6) != 0,
		Rejoin:         flags&(1<<7) != 0,
	}, nil
}

// Mgmt_Leave_rsp and Mgmt_Permit_Joining_rsp have no types of their own
// here; both carry only a status, the same shape as BindResponse.

// MgmtNWKUpdateRequest is the Mgmt_NWK_Update_req body (energy/channel scan
// or channel-change request).
type MgmtNWKUpdateRequest struct {
	ScanChannels uint32
	ScanDuration byte // 0..5 = scan; 0xfe = channel change; 0xff = set channel mask
	ScanCount    byte
	NWKUpdateID  byte
	NWKManagerAddr uint16
}

func EncodeMgmtNWKUpdateRequest(r MgmtNWKUpdateRequest) []byte {
	out := []byte{byte(r.ScanChannels), byte(r.ScanChannels >> 8), byte(r.ScanChannels >> 16), byte(r.ScanChannels >> 24), r.ScanDuration}
	if r.ScanDuration <= 5 {
		out = append(out, r.ScanCount)
	} else if r.ScanDuration == 0xfe {
		out = append(out, r.NWKUpdateID)
	}
	if r.ScanDuration == 0xff {
		out = append(out, byte(r.NWKManagerAddr), byte(r.NWKManagerAddr>>8))
	}
	return out
}

func DecodeMgmtNWKUpdateRequest(payload []byte) (MgmtNWKUpdateRequest, error) {
	b := wire.NewBuffer(payload)
	chans, err := b.Uint(4)
	if err != nil {
		return MgmtNWKUpdateRequest{}, err
	}
	duration, err := b.Byte()
	if err != nil {
		return MgmtNWKUpdateRequest{}, err
	}
	r := MgmtNWKUpdateRequest{ScanChannels: uint32(chans), ScanDuration: duration}
	if duration <= 5 && b.Len() > 0 {
		count, err := b.Byte()
		if err != nil {
			return MgmtNWKUpdateRequest{}, err
		}
		r.ScanCount = count
	} else if duration == 0xfe && b.Len() > 0 {
		id, err := b.Byte()
		if err != nil {
			return MgmtNWKUpdateRequest{}, err
		}
		r.NWKUpdateID = id
	}
	if duration == 0xff && b.Len() > 0 {
		mgr, err := b.Uint(2)
		if err != nil {
			return MgmtNWKUpdateRequest{}, err
		}
		r.NWKManagerAddr = uint16(mgr)
	}
	return r, nil
}

// MgmtNWKUpdateNotify is the Mgmt_NWK_Update_notify body, sent
// unsolicited or in response to a scan request.
type MgmtNWKUpdateNotify struct {
	ScannedChannels uint32
	TotalTransmissions uint16
	TransmissionFailures uint16
	EnergyValues    []byte
	Status          Status
}

func EncodeMgmtNWKUpdateNotify(n MgmtNWKUpdateNotify) []byte {
	out := []byte{byte(n.Status)}
	out = append(out, byte(n.ScannedChannels), byte(n.ScannedChannels>>8), byte(n.ScannedChannels>>16), byte(n.ScannedChannels>>24))
	out = append(out, byte(n.TotalTransmissions), byte(n.TotalTransmissions>>8))
	out = append(out, byte(n.TransmissionFailures), byte(n.TransmissionFailures>>8))
	out = append(out, byte(len(n.EnergyValues)))
	return append(out, n.EnergyValues...)
}

func DecodeMgmtNWKUpdateNotify(payload []byte) (MgmtNWKUpdateNotify, error) {
	b := wire.NewBuffer(payload)
	statusRaw, err := b.Byte()
	if err != nil {
		return MgmtNWKUpdateNotify{}, err
	}
	chans, err := b.Uint(4)
	if err != nil {
		return MgmtNWKUpdateNotify{}, err
	}
	total, err := b.Uint(2)
	if err != nil {
		return MgmtNWKUpdateNotify{}, err
	}
	failures, err := b.Uint(2)
	if err != nil {
		return MgmtNWKUpdateNotify{}, err
	}
	count, err := b.Byte()
	if err != nil {
		return MgmtNWKUpdateNotify{}, err
	}
	energy, err := b.Next(int(count))
	if err != nil {
		return MgmtNWKUpdateNotify{}, err
	}
	cp := make([]byte, len(energy))
	copy(cp, energy)
	return MgmtNWKUpdateNotify{
		Status:               Status(statusRaw),
		ScannedChannels:      uint32(chans),
		TotalTransmissions:   uint16(total),
		TransmissionFailures: uint16(failures),
		EnergyValues:         cp,
	}, nil
}
