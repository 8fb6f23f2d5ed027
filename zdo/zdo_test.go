package zdo

import "testing"

func TestNodeDescriptorRoundTrip(t *testing.T) {
	want := NodeDescriptorResponse{
		Status:  StatusSuccess,
		NWKAddr: 0x1234,
		Descriptor: NodeDescriptor{
			LogicalType:             1,
			MACCapabilityFlags:      0x8e,
			ManufacturerCode:        4476,
			MaxBufferSize:           0x52,
			MaxIncomingTransferSize: 0x0054,
			ServerMask:              0x0000,
			MaxOutgoingTransferSize: 0x0054,
			DescriptorCapability:    0x00,
		},
	}
	raw := EncodeNodeDescriptorResponse(want)
	got, err := DecodeNodeDescriptorResponse(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestActiveEndpointsRoundTrip(t *testing.T) {
	want := ActiveEndpointsResponse{Status: StatusSuccess, NWKAddr: 0x1234, Endpoints: []byte{1, 242}}
	raw := EncodeActiveEndpointsResponse(want)
	got, err := DecodeActiveEndpointsResponse(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.NWKAddr != want.NWKAddr || len(got.Endpoints) != 2 || got.Endpoints[1] != 242 {
		t.Fatalf("got %+v", got)
	}
}

func TestSimpleDescriptorRoundTrip(t *testing.T) {
	want := SimpleDescriptorResponse{
		Status:  StatusSuccess,
		NWKAddr: 0x1234,
		Descriptor: SimpleDescriptor{
			Endpoint:    1,
			ProfileID:   0x0104,
			DeviceType:  266,
			InClusters:  []uint16{0, 3, 4, 5, 6, 8, 4096},
			OutClusters: []uint16{25},
		},
	}
	raw := EncodeSimpleDescriptorResponse(want)
	got, err := DecodeSimpleDescriptorResponse(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Descriptor.ProfileID != 0x0104 || len(got.Descriptor.InClusters) != 7 || got.Descriptor.InClusters[6] != 4096 {
		t.Fatalf("got %+v", got.Descriptor)
	}
	if len(got.Descriptor.OutClusters) != 1 || got.Descriptor.OutClusters[0] != 25 {
		t.Fatalf("got %+v", got.Descriptor)
	}
}

func TestBindRequestRoundTripUnicast(t *testing.T) {
	want := BindRequest{
		SrcIEEE:     0x0011223344556677,
		SrcEndpoint: 1,
		ClusterID:   0x0006,
		Target:      BindTarget{DestIEEE: 0x8899aabbccddeeff, DestEndpoint: 1},
	}
	raw := EncodeBindRequest(want)
	got, err := DecodeBindRequest(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestBindRequestRoundTripGroup(t *testing.T) {
	want := BindRequest{
		SrcIEEE:     0x0011223344556677,
		SrcEndpoint: 1,
		ClusterID:   0x0006,
		Target:      BindTarget{IsGroup: true, DestGroup: 0x4242},
	}
	raw := EncodeBindRequest(want)
	got, err := DecodeBindRequest(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.Target.IsGroup || got.Target.DestGroup != 0x4242 {
		t.Fatalf("got %+v", got)
	}
}

func TestMgmtLqiRoundTrip(t *testing.T) {
	want := MgmtLqiResponse{
		Status:               StatusSuccess,
		NeighborTableEntries: 2,
		StartIndex:           0,
		Neighbors: []Neighbor{
			{ExtendedPANID: 0x1122334455667788, IEEE: 0x1, NWK: 0x1234, DeviceType: 1, RxOnWhenIdle: 1, Relationship: 2, PermitJoining: 1, Depth: 1, LQI: 200},
		},
	}
	raw := EncodeMgmtLqiResponse(want)
	got, err := DecodeMgmtLqiResponse(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Neighbors) != 1 || got.Neighbors[0].LQI != 200 || got.Neighbors[0].NWK != 0x1234 {
		t.Fatalf("got %+v", got.Neighbors)
	}
}

func TestMgmtRtgRoundTrip(t *testing.T) {
	want := MgmtRtgResponse{
		Status:              StatusSuccess,
		RoutingTableEntries: 1,
		Routes: []Route{
			{DestNWK: 0x5678, RouteStatus: 0, ManyToOne: true, NextHop: 0x0000},
		},
	}
	raw := EncodeMgmtRtgResponse(want)
	got, err := DecodeMgmtRtgResponse(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Routes) != 1 || !got.Routes[0].ManyToOne || got.Routes[0].DestNWK != 0x5678 {
		t.Fatalf("got %+v", got.Routes)
	}
}

func TestMgmtPermitJoiningRoundTrip(t *testing.T) {
	raw := EncodeMgmtPermitJoiningRequest(MgmtPermitJoiningRequest{PermitDuration: 60, TCSignificance: 1})
	got, err := DecodeMgmtPermitJoiningRequest(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.PermitDuration != 60 {
		t.Fatalf("got %+v", got)
	}
}

func TestMgmtLeaveRoundTrip(t *testing.T) {
	want := MgmtLeaveRequest{DeviceAddress: 0x1234567890abcdef, RemoveChildren: true}
	raw := EncodeMgmtLeaveRequest(want)
	got, err := DecodeMgmtLeaveRequest(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestMgmtNWKUpdateNotifyRoundTrip(t *testing.T) {
	want := MgmtNWKUpdateNotify{
		Status:               StatusSuccess,
		ScannedChannels:      0x07fff800,
		TotalTransmissions:   100,
		TransmissionFailures: 2,
		EnergyValues:         []byte{10, 20, 30},
	}
	raw := EncodeMgmtNWKUpdateNotify(want)
	got, err := DecodeMgmtNWKUpdateNotify(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.ScannedChannels != want.ScannedChannels || len(got.EnergyValues) != 3 {
		t.Fatalf("got %+v", got)
	}
}
