package controller

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	"github.com/zhacore/zha/cluster"
	"github.com/zhacore/zha/zcl"
	"github.com/zhacore/zha/zdo"
	"github.com/zhacore/zha/zhaevents"
	"github.com/zhacore/zha/zigdev"
)

// coordinatorEndpoint is the endpoint id the controller itself answers
// on when reading a newly joined device's Basic cluster during
// interview.
const coordinatorEndpoint byte = 1

// runInterview drives a single device from StatusNew through
// StatusInitialized, retrying each step with zigdev.InterviewBackoff
// and recording failures via d.Progress. A step
// that exhausts its retry budget stops the interview for this join;
// device_init_failure has already been published by the
// InterviewProgress callback at that point.
func (c *Controller) runInterview(ctx context.Context, d *Device) {
	nd, err := c.fetchNodeDescriptor(ctx, d)
	if err != nil {
		return
	}
	d.NodeDescriptor = nd
	if err := d.TransitionTo(zigdev.StatusZDOInit); err != nil {
		c.log.Warnf("controller: %x: %v", d.IEEEAddress, err)
	}
	c.bus.Publish(zhaevents.Event{Kind: zhaevents.NodeDescriptorUpdated, Data: struct {
		IEEEAddress uint64
		Descriptor  zdo.NodeDescriptor
	}{d.IEEEAddress, nd}})
	if c.persist != nil {
		c.persist.UpsertDevice(d.Device)
	}

	endpointIDs, err := c.fetchActiveEndpoints(ctx, d)
	if err != nil {
		return
	}
	if err := d.TransitionTo(zigdev.StatusEndpointsInit); err != nil {
		c.log.Warnf("controller: %x: %v", d.IEEEAddress, err)
	}

	var basicEndpoint byte
	var haveBasicEndpoint bool
	for _, epID := range endpointIDs {
		desc, err := c.fetchSimpleDescriptor(ctx, d, epID)
		if err != nil {
			return
		}
		ep := zigdev.NewEndpoint(epID, desc.ProfileID, desc.DeviceType)
		for _, cl := range desc.InClusters {
			ep.AddInCluster(cl)
			if cl == cluster.Basic {
				basicEndpoint, haveBasicEndpoint = epID, true
			}
		}
		for _, cl := range desc.OutClusters {
			ep.AddOutCluster(cl)
		}
		d.AddEndpoint(ep)
	}
	if c.persist != nil {
		c.persist.UpsertDevice(d.Device)
	}

	if haveBasicEndpoint {
		c.fetchBasicAttributes(ctx, d, basicEndpoint)
	}

	if err := d.TransitionTo(zigdev.StatusInitialized); err != nil {
		c.log.Warnf("controller: %x: %v", d.IEEEAddress, err)
		return
	}
	c.bus.Publish(zhaevents.Event{Kind: zhaevents.RawDeviceInitialized, Data: d.IEEEAddress})
	c.bus.Publish(zhaevents.Event{Kind: zhaevents.DeviceInitialized, Data: d.IEEEAddress})
	if c.persist != nil {
		c.persist.UpsertDevice(d.Device)
	}
}

func (c *Controller) fetchNodeDescriptor(ctx context.Context, d *Device) (zdo.NodeDescriptor, error) {
	var resp zdo.NodeDescriptorResponse
	err := backoff.Retry(func() error {
		if !d.Progress.RecordAttempt(zigdev.StepNodeDescriptor, zigdev.DefaultDescriptorRetries) {
			return backoff.Permanent(fmt.Errorf("%w: node descriptor retries exhausted", ErrTimeout))
		}
		raw, err := c.Request(ctx, d.IEEEAddress, zdoProfileID, zdo.ClusterNodeDescReq, 0, 0, zcl.ClientToServer,
			func(tsn byte) []byte {
				return append([]byte{tsn}, zdo.EncodeNodeDescriptorRequest(zdo.NodeDescriptorRequest{NWKAddr: d.NWKAddress})...)
			}, true, DefaultInterviewTimeout)
		if err != nil {
			return err
		}
		resp, err = zdo.DecodeNodeDescriptorResponse(raw)
		return err
	}, zigdev.InterviewBackoff(uint64(zigdev.DefaultDescriptorRetries)))
	d.Progress.Reset(zigdev.StepNodeDescriptor)
	return resp.Descriptor, err
}

func (c *Controller) fetchActiveEndpoints(ctx context.Context, d *Device) ([]byte, error) {
	var resp zdo.ActiveEndpointsResponse
	err := backoff.Retry(func() error {
		if !d.Progress.RecordAttempt(zigdev.StepActiveEndpoints, zigdev.DefaultDescriptorRetries) {
			return backoff.Permanent(fmt.Errorf("%w: active endpoints retries exhausted", ErrTimeout))
		}
		raw, err := c.Request(ctx, d.IEEEAddress, zdoProfileID, zdo.ClusterActiveEPReq, 0, 0, zcl.ClientToServer,
			func(tsn byte) []byte {
				return append([]byte{tsn}, zdo.EncodeActiveEndpointsRequest(zdo.ActiveEndpointsRequest{NWKAddr: d.NWKAddress})...)
			}, true, DefaultInterviewTimeout)
		if err != nil {
			return err
		}
		resp, err = zdo.DecodeActiveEndpointsResponse(raw)
		return err
	}, zigdev.InterviewBackoff(uint64(zigdev.DefaultDescriptorRetries)))
	d.Progress.Reset(zigdev.StepActiveEndpoints)
	return resp.Endpoints, err
}

func (c *Controller) fetchSimpleDescriptor(ctx context.Context, d *Device, endpoint byte) (zdo.SimpleDescriptor, error) {
	var resp zdo.SimpleDescriptorResponse
	err := backoff.Retry(func() error {
		if !d.Progress.RecordAttempt(zigdev.StepSimpleDescriptor, zigdev.DefaultSimpleDescriptorRetries) {
			return backoff.Permanent(fmt.Errorf("%w: simple descriptor retries exhausted", ErrTimeout))
		}
		raw, err := c.Request(ctx, d.IEEEAddress, zdoProfileID, zdo.ClusterSimpleDescReq, 0, 0, zcl.ClientToServer,
			func(tsn byte) []byte {
				req := zdo.SimpleDescriptorRequest{NWKAddr: d.NWKAddress, Endpoint: endpoint}
				return append([]byte{tsn}, zdo.EncodeSimpleDescriptorRequest(req)...)
			}, true, DefaultInterviewTimeout)
		if err != nil {
			return err
		}
		resp, err = zdo.DecodeSimpleDescriptorResponse(raw)
		return err
	}, zigdev.InterviewBackoff(uint64(zigdev.DefaultSimpleDescriptorRetries)))
	d.Progress.Reset(zigdev.StepSimpleDescriptor)
	return resp.Descriptor, err
}

// fetchBasicAttributes reads ManufacturerName and ModelIdentifier from
// the device's Basic cluster. Failure here does not fail the interview;
// a device that refuses to answer Basic reads still reaches
// StatusInitialized with those fields unset.
func (c *Controller) fetchBasicAttributes(ctx context.Context, d *Device, endpoint byte) {
	ep, ok := d.Endpoint(endpoint)
	if !ok {
		return
	}
	cl, ok := ep.InCluster(cluster.Basic)
	if !ok {
		return
	}

	_ = d.Progress.RecordAttempt(zigdev.StepBasicAttributes, 1)
	raw, err := c.Request(ctx, d.IEEEAddress, ep.ProfileID, cluster.Basic, coordinatorEndpoint, endpoint, zcl.ClientToServer,
		func(tsn byte) []byte {
			fb := zcl.NewFrameBuilder(zcl.CommandReadAttributes, tsn)
			out, _ := fb.Build(zcl.EncodeReadAttributes([]uint16{0x0004, 0x0005}))
			return out
		}, true, DefaultUnicastTimeout)
	if err != nil {
		c.log.Warnf("controller: %x: basic attribute read failed: %v", d.IEEEAddress, err)
		return
	}

	records, err := zcl.DecodeReadAttributesResponse(raw)
	if err != nil {
		c.log.Warnf("controller: %x: malformed basic attributes response: %v", d.IEEEAddress, err)
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
	}
	d.Progress.Reset(zigdev.StepBasicAttributes)
}
