package controller

import (
	"context"

	"github.com/zhacore/zha/cluster"
	"github.com/zhacore/zha/radio"
	"github.com/zhacore/zha/zcl"
	"github.com/zhacore/zha/zhaevents"
	"github.com/zhacore/zha/zigdev"
)

// zdoProfileID is the reserved profile id ZDO request/response traffic
// is addressed to; it carries no ZCL frame header, only a leading
// transaction sequence number byte, so HandleMessage parses it
// separately from ordinary ZCL application profiles.
const zdoProfileID uint16 = 0x0000

// Controller implements radio.Callbacks so a radio.Radio driver can be
// wired straight to it.
var _ radio.Callbacks = (*Controller)(nil)

// PacketReceived is a low-level hook for drivers that want to surface
// raw APS frames before ZCL/ZDO parsing; this controller has no use for
// the pre-parsed form and ignores it.
func (c *Controller) PacketReceived(frame radio.Frame) {}

// HandleMessage parses an inbound application frame and either resolves
// a pending request, updates the cluster attribute cache, or emits one
// of the unsolicited command events. Codec errors from malformed frames
// are logged and dropped.
func (c *Controller) HandleMessage(srcAddress uint64, profile, cluster_ uint16, srcEndpoint, dstEndpoint byte, message []byte) {
	dev, ok := c.DeviceByIEEE(srcAddress)
	if ok {
		dev.Touch()
	}

	if profile == zdoProfileID {
		c.handleZDOMessage(srcAddress, cluster_, message)
		return
	}

	header, payload, err := zcl.ParseFrame(message)
	if err != nil {
		c.log.Warnf("controller: malformed frame from %x: %v", srcAddress, err)
		return
	}

	// A reply to one of our own requests resolves the pending slot
	// before anything else, using the (srcEP, dstEP, cluster) tiebreak
	// from the requester's point of view. All coordinator-originated
	// requests are client-to-server, so that is the fixed direction
	// used both at registration and here.
	if c.tsn.resolve(header.TSN, dstEndpoint, srcEndpoint, cluster_, zcl.ClientToServer, payload) {
		return
	}

	explicitResponseSent := false
	switch {
	case header.FrameType == zcl.FrameTypeGeneral && header.CommandID == zcl.CommandReportAttributes:
		c.handleReportAttributes(srcAddress, cluster_, srcEndpoint, payload)
	case header.FrameType == zcl.FrameTypeGeneral && header.CommandID == zcl.CommandReadAttributesResponse:
		c.handleReadAttributesResponse(srcAddress, cluster_, srcEndpoint, payload)
	case header.FrameType == zcl.FrameTypeClusterSpecific && cluster_ == cluster.OTAUpgrade && c.ota != nil:
		c.handleOTAMessage(srcAddress, profile, srcEndpoint, dstEndpoint, header, payload)
		explicitResponseSent = true
	case header.FrameType == zcl.FrameTypeGeneral:
		c.bus.Publish(zhaevents.Event{Kind: zhaevents.GeneralCommand, Data: GeneralCommandData{
			IEEEAddress: srcAddress, Endpoint: srcEndpoint, ClusterID: cluster_, CommandID: header.CommandID, Payload: payload,
		}})
	default:
		if _, ok := cluster.Get(cluster_); !ok {
			c.bus.Publish(zhaevents.Event{Kind: zhaevents.UnknownClusterMessage, Data: UnknownClusterData{
				IEEEAddress: srcAddress, ClusterID: cluster_, Payload: payload,
			}})
			return
		}
		c.bus.Publish(zhaevents.Event{Kind: zhaevents.ClusterCommand, Data: ClusterCommandData{
			IEEEAddress: srcAddress, Endpoint: srcEndpoint, ClusterID: cluster_, CommandID: header.CommandID, Payload: payload,
		}})
	}

	if zcl.ShouldSendDefaultResponse(header, explicitResponseSent) {
		c.sendDefaultResponse(srcAddress, profile, cluster_, srcEndpoint, dstEndpoint, header, zcl.StatusSuccess)
	}
}

// sendDefaultResponse builds and sends a Default-Response frame carrying
// the command id it acknowledges and status, mirroring the request's TSN
// and swapping endpoints the same way sendOTAResponse does.
func (c *Controller) sendDefaultResponse(ieee uint64, profile, clusterID uint16, requestSrcEP, requestDstEP byte, header zcl.Header, status zcl.Status) {
	builder := &zcl.FrameBuilder{
		FrameType:              zcl.FrameTypeGeneral,
		Direction:              zcl.ServerToClient,
		DisableDefaultResponse: true,
		TSN:                    header.TSN,
		CommandID:              zcl.CommandDefaultResponse,
	}
	frame, err := builder.Build(zcl.EncodeDefaultResponse(zcl.DefaultResponsePayload{CommandID: header.CommandID, Status: status}))
	if err != nil {
		c.log.Errorf("controller: build default response to %x: %v", ieee, err)
		return
	}
	req := radio.Frame{
		Payload:     frame,
		DstAddress:  ieee,
		Profile:     profile,
		Cluster:     clusterID,
		SrcEndpoint: requestDstEP,
		DstEndpoint: requestSrcEP,
		Sequence:    header.TSN,
	}
	if err := c.radio.Request(context.Background(), req); err != nil {
		c.log.Warnf("controller: send default response to %x: %v", ieee, err)
	}
}

// handleZDOMessage resolves a ZDO response against its pending request.
// ZDO frames carry their transaction sequence number as the first
// payload byte rather than inside a ZCL header. Every ZDO response
// cluster id is its request cluster id with bit 0x8000 set, so the
// tiebreak match is done against the request cluster.
func (c *Controller) handleZDOMessage(srcAddress uint64, clusterID uint16, message []byte) {
	if len(message) < 1 {
		c.log.Warnf("controller: empty zdo message from %x", srcAddress)
		return
	}
	tsn, payload := message[0], message[1:]
	requestCluster := clusterID &^ 0x8000
	c.tsn.resolve(tsn, 0, 0, requestCluster, zcl.ClientToServer, payload)
}

// GeneralCommandData is the payload of a GeneralCommand event.
type GeneralCommandData struct {
	Payload     []byte
	IEEEAddress uint64
	ClusterID   uint16
	Endpoint    byte
	CommandID   byte
}

// ClusterCommandData is the payload of a ClusterCommand event.
type ClusterCommandData struct {
	Payload     []byte
	IEEEAddress uint64
	ClusterID   uint16
	Endpoint    byte
	CommandID   byte
}

// UnknownClusterData is the payload of an UnknownClusterMessage event,
// emitted instead of failing the dispatch when no definition is
// registered for the cluster.
type UnknownClusterData struct {
	Payload     []byte
	IEEEAddress uint64
	ClusterID   uint16
}

func (c *Controller) handleReportAttributes(ieee uint64, clusterID uint16, endpoint byte, payload []byte) {
	records, err := zcl.DecodeReportAttributes(payload)
	if err != nil {
		c.log.Warnf("controller: bad report-attributes from %x: %v", ieee, err)
		return
	}
	dev, ok := c.DeviceByIEEE(ieee)
	if !ok {
		return
	}
	ep, ok := dev.Endpoint(endpoint)
	if !ok {
		return
	}
	cl, ok := ep.InCluster(clusterID)
	if !ok {
		return
	}
	for _, rec := range records {
		cl.SetAttribute(rec.AttrID, rec.Value)
		c.bus.Publish(zhaevents.Event{Kind: zhaevents.AttributeUpdated, Data: zhaevents.AttributeUpdatedData{
			IEEEAddress: ieee, Endpoint: endpoint, ClusterID: clusterID, AttrID: rec.AttrID, Value: rec.Value.Data,
		}})
	}
	if c.persist != nil {
		c.persist.UpsertDevice(dev.Device)
	}
}

func (c *Controller) handleReadAttributesResponse(ieee uint64, clusterID uint16, endpoint byte, payload []byte) {
	records, err := zcl.DecodeReadAttributesResponse(payload)
	if err != nil {
		c.log.Warnf("controller: bad read-attributes-response from %x: %v", ieee, err)
		return
	}
	dev, ok := c.DeviceByIEEE(ieee)
	if !ok {
		return
	}
	ep, ok := dev.Endpoint(endpoint)
	if !ok {
		return
	}
	cl, ok := ep.InCluster(clusterID)
	if !ok {
		return
	}
	for _, rec := range records {
		if rec.Status == zcl.StatusUnsupportedAttribute {
			cl.MarkUnsupported(rec.AttrID)
			continue
		}
		if rec.Status != zcl.StatusSuccess {
			continue
		}
		cl.SetAttribute(rec.AttrID, rec.Value)
		c.bus.Publish(zhaevents.Event{Kind: zhaevents.AttributeUpdated, Data: zhaevents.AttributeUpdatedData{
			IEEEAddress: ieee, Endpoint: endpoint, ClusterID: clusterID, AttrID: rec.AttrID, Value: rec.Value.Data,
		}})
	}
	if c.persist != nil {
		c.persist.UpsertDevice(dev.Device)
	}
}

// HandleJoin registers a newly joined or rejoined device and kicks off
// its interview. A device already known by ieee has only its NWK
// address refreshed.
func (c *Controller) HandleJoin(nwk uint16, ieee uint64, parentNWK uint16) {
	if c.inJoinSuppressionWindow() {
		c.log.Debugf("controller: suppressing device_joined for %x inside permit(0) grace window", ieee)
		return
	}

	c.devicesMu.Lock()
	existing, known := c.devices[ieee]
	if known {
		existing.UpdateNWKAddress(nwk)
		c.devicesMu.Unlock()
		return
	}
	d := &Device{Device: zigdev.NewDevice(ieee, nwk)}
	d.Progress = zigdev.NewInterviewProgress(func(step zigdev.InterviewStep) {
		c.bus.Publish(zhaevents.Event{Kind: zhaevents.DeviceInitFailure, Data: zhaevents.DeviceInitFailureData{
			IEEEAddress: ieee, Step: interviewStepName(step),
		}})
	})
	c.devices[ieee] = d
	c.devicesMu.Unlock()

	c.bus.Publish(zhaevents.Event{Kind: zhaevents.DeviceJoined, Data: zhaevents.DeviceJoinedData{IEEEAddress: ieee, NWKAddress: nwk}})
	if c.persist != nil {
		c.persist.UpsertDevice(d.Device)
	}

	go c.runInterview(context.Background(), d)
}

// HandleLeave marks dev as left and removes it from the device table,
// the terminal state of the device lifecycle.
func (c *Controller) HandleLeave(nwk uint16, ieee uint64) {
	dev, ok := c.DeviceByIEEE(ieee)
	if ok {
		_ = dev.TransitionTo(zigdev.StatusLeft)
	}
	c.bus.Publish(zhaevents.Event{Kind: zhaevents.DeviceLeft, Data: ieee})
	_ = c.RemoveDevice(context.Background(), ieee)
}

// HandleRelaysUpdated records a new source-route relay list for ieee.
func (c *Controller) HandleRelaysUpdated(ieee uint64, relays []uint16) {
	dev, ok := c.DeviceByIEEE(ieee)
	if !ok {
		return
	}
	dev.Relays = relays
	if c.persist != nil {
		c.persist.UpsertDevice(dev.Device)
	}
	c.bus.Publish(zhaevents.Event{Kind: zhaevents.DeviceRelaysUpdated, Data: struct {
		IEEEAddress uint64
		Relays      []uint16
	}{ieee, relays}})
}

func interviewStepName(step zigdev.InterviewStep) string {
	switch step {
	case zigdev.StepNodeDescriptor:
		return "node_descriptor"
	case zigdev.StepActiveEndpoints:
		return "active_endpoints"
	case zigdev.StepSimpleDescriptor:
		return "simple_descriptor"
	case zigdev.StepBasicAttributes:
		return "basic_attributes"
	default:
		return "unknown"
	}
}

// decodeBasicStrings pulls ManufacturerName (attr 0x0004) and
// ModelIdentifier (attr 0x0005) out of a Basic cluster
// Read-Attributes-Response, returning zero values for either that came
// back unsupported.
func decodeBasicStrings(records []zcl.ReadAttributeStatus) (manufacturer, model string) {
	for _, rec := range records {
		if rec.Status != zcl.StatusSuccess {
			continue
		}
		s, ok := rec.Value.Data.(string)
		if !ok {
			continue
		}
		switch rec.AttrID {
		case 0x0004:
			manufacturer = s
		case 0x0005:
			model = s
		}
	}
	return manufacturer, model
}
