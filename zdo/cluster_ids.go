package zdo

// ZDO cluster identifiers. Request clusters occupy 0x0000-0x00ff;
// the matching response carries the same low byte with bit 0x8000 set.
const (
	ClusterNWKAddrReq          uint16 = 0x0000
	ClusterIEEEAddrReq         uint16 = 0x0001
	ClusterNodeDescReq         uint16 = 0x0002
	ClusterNodeDescRsp         uint16 = 0x8002
	ClusterSimpleDescReq       uint16 = 0x0004
	ClusterSimpleDescRsp       uint16 = 0x8004
	ClusterActiveEPReq         uint16 = 0x0005
	ClusterActiveEPRsp         uint16 = 0x8005
	ClusterBindReq             uint16 = 0x0021
	ClusterBindRsp             uint16 = 0x8021
	ClusterUnbindReq           uint16 = 0x0022
	ClusterUnbindRsp           uint16 = 0x8022
	ClusterMgmtLqiReq          uint16 = 0x0031
	ClusterMgmtLqiRsp          uint16 = 0x8031
	ClusterMgmtRtgReq          uint16 = 0x0032
	ClusterMgmtRtgRsp          uint16 = 0x8032
	ClusterMgmtLeaveReq        uint16 = 0x0034
	ClusterMgmtLeaveRsp        uint16 = 0x8034
	ClusterMgmtPermitJoinReq   uint16 = 0x0036
	ClusterMgmtPermitJoinRsp   uint16 = 0x8036
	ClusterMgmtNWKUpdateReq    uint16 = 0x0038
	ClusterMgmtNWKUpdateNotify uint16 = 0x8038
)

// Status is the one-byte ZDO status code.
type Status byte

const (
	StatusSuccess    Status = 0x00
	StatusInvalidEP  Status = 0x82
	StatusNotActive  Status = 0x83
	StatusDeviceNotFound Status = 0x89
	StatusTimeout    Status = 0xb4
)
