package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zhacore/zha/ota"
	"github.com/zhacore/zha/radio"
	"github.com/zhacore/zha/zcl"
	"github.com/zhacore/zha/zhaevents"
	"github.com/zhacore/zha/zhalog"
	"github.com/zhacore/zha/zigdev"
)

// DefaultUnicastTimeout and DefaultInterviewTimeout are the default
// request timeouts applied when a caller does not specify its own.
const (
	DefaultUnicastTimeout   = 10 * time.Second
	DefaultInterviewTimeout = 60 * time.Second
)

// joinSuppressionWindow is the worst-case in-flight join window: a
// device that was mid-join when permit(0) closed the network is still
// allowed to finish associating at the MAC layer, but the controller
// will not emit device_joined for any HandleJoin that arrives within
// this window of a permit(0) call.
const joinSuppressionWindow = 5 * time.Second

// Option configures a Controller at construction time.
type Option func(*Controller)

// WithLogger overrides the controller's logger (default zhalog.Noop()).
func WithLogger(l zhalog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithPersister wires a write-through persistence backend (default
// none, i.e. in-memory only).
func WithPersister(p Persister) Option {
	return func(c *Controller) { c.persist = p }
}

// WithOTAEngine wires the OTA cluster (0x0019) server role to e (default
// none: OTA traffic falls through to the generic ClusterCommand event
// like any other unhandled cluster-specific command).
func WithOTAEngine(e *ota.Engine) Option {
	return func(c *Controller) { c.ota = e }
}

// Controller is the Application Controller: the central orchestrator.
// It owns the device table exclusively and implements radio.Callbacks
// so a radio.Radio driver can deliver inbound traffic directly to it.
type Controller struct {
	radio   radio.Radio
	bus     *zhaevents.EventBus
	log     zhalog.Logger
	persist Persister
	ota     *ota.Engine

	devices   map[uint64]*Device
	devicesMu sync.RWMutex

	tsn      *tsnAllocator
	outbound *outboundQueues
	groups   *groupTable

	started         bool
	permitClosed    time.Time
	hasPermitClosed bool
	network         radio.NetworkParams
	node            radio.NodeParams
	mu              sync.Mutex
}

// Device pairs a *zigdev.Device with its controller-managed interview
// bookkeeping.
type Device struct {
	*zigdev.Device
	Progress *zigdev.InterviewProgress
}

// New returns a Controller bound to r, publishing to bus. The
// Controller does not start interacting with r until Start is called.
func New(r radio.Radio, bus *zhaevents.EventBus, opts ...Option) *Controller {
	c := &Controller{
		radio:    r,
		bus:      bus,
		log:      zhalog.Noop(),
		devices:  make(map[uint64]*Device),
		tsn:      newTSNAllocator(),
		outbound: newOutboundQueues(),
		groups:   newGroupTable(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start brings the network up, forming one if autoForm is true and none
// already exists.
func (c *Controller) Start(ctx context.Context, autoForm bool) error {
	if err := c.radio.Startup(ctx, autoForm); err != nil {
		c.log.Errorf("controller: startup failed: %v", err)
		return fmt.Errorf("%w: %v", ErrRadioUnavailable, err)
	}
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
	return nil
}

// Shutdown releases the radio and stops every per-device outbound
// worker. Persistence is expected to already be write-through, so
// Shutdown performs no final flush beyond closing queues.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	c.started = false
	c.mu.Unlock()
	c.outbound.closeAll()
	return nil
}

// Permit opens (or closes, when durationSeconds is 0) joining for
// durationSeconds, network-wide or targeted at a single ieee when node
// is non-zero.
func (c *Controller) Permit(ctx context.Context, durationSeconds byte, node *uint64) error {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if !started {
		return ErrNotInitialized
	}

	var err error
	if node != nil {
		err = c.radio.PermitWithKey(ctx, *node, nil, durationSeconds)
	} else {
		err = c.radio.PermitNCP(ctx, durationSeconds)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRadioUnavailable, err)
	}

	if durationSeconds == 0 {
		c.mu.Lock()
		c.permitClosed = time.Now()
		c.hasPermitClosed = true
		c.mu.Unlock()
	}

	c.bus.Publish(zhaevents.Event{Kind: zhaevents.PermitDuration, Data: durationSeconds})
	return nil
}

// inJoinSuppressionWindow reports whether a HandleJoin observed right
// now falls inside the grace window opened by the most recent permit(0)
// call.
func (c *Controller) inJoinSuppressionWindow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasPermitClosed && time.Since(c.permitClosed) < joinSuppressionWindow
}

// Request sends a unicast application frame to dev and, if expectReply
// is true, waits for the correlated reply (or a Default-Response with a
// failing status) up to timeout. Delivery to a single device is
// serialized FIFO by submission order.
//
// build receives the TSN the allocator assigned so the caller's
// zcl.FrameBuilder can stamp the same value into the frame header that
// the controller uses to correlate the reply.
func (c *Controller) Request(ctx context.Context, dev uint64, profile, cluster uint16, srcEP, dstEP byte, direction zcl.Direction, build func(tsn byte) []byte, expectReply bool, timeout time.Duration) ([]byte, error) {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if !started {
		return nil, ErrNotInitialized
	}
	if timeout <= 0 {
		timeout = DefaultUnicastTimeout
	}

	var reply []byte
	var opErr error
	q := c.outbound.forDevice(dev)
	q.submit(func() {
		tsn, pr := c.tsn.register(srcEP, dstEP, cluster, direction, expectReply)
		frame := radio.Frame{
			Payload:     build(tsn),
			DstAddress:  dev,
			Profile:     profile,
			Cluster:     cluster,
			SrcEndpoint: srcEP,
			DstEndpoint: dstEP,
			Sequence:    tsn,
		}

		if err := c.radio.Request(ctx, frame); err != nil {
			if pr != nil {
				c.tsn.release(pr)
			}
			opErr = fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
			return
		}

		if pr == nil {
			return
		}

		waitCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		reply, opErr = c.tsn.wait(waitCtx, pr)
	})
	return reply, opErr
}

// Broadcast sends payload to the network-wide broadcast address.
func (c *Controller) Broadcast(ctx context.Context, profile, cluster uint16, srcEP, dstEP byte, payload []byte) error {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if !started {
		return ErrNotInitialized
	}
	frame := radio.Frame{
		Payload:     payload,
		Profile:     profile,
		Cluster:     cluster,
		SrcEndpoint: srcEP,
		DstEndpoint: dstEP,
		Broadcast:   true,
	}
	if err := c.radio.Broadcast(ctx, frame); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// Multicast sends payload to groupID.
func (c *Controller) Multicast(ctx context.Context, groupID uint16, profile, cluster uint16, srcEP byte, payload []byte) error {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if !started {
		return ErrNotInitialized
	}
	frame := radio.Frame{
		Payload:     payload,
		GroupID:     groupID,
		Profile:     profile,
		Cluster:     cluster,
		SrcEndpoint: srcEP,
	}
	if err := c.radio.MRequest(ctx, frame); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// DeviceByIEEE returns the controller's record of ieee, if any.
func (c *Controller) DeviceByIEEE(ieee uint64) (*Device, bool) {
	c.devicesMu.RLock()
	defer c.devicesMu.RUnlock()
	d, ok := c.devices[ieee]
	return d, ok
}

// Devices returns a snapshot of every IEEE address currently tracked.
func (c *Controller) Devices() []uint64 {
	c.devicesMu.RLock()
	defer c.devicesMu.RUnlock()
	out := make([]uint64, 0, len(c.devices))
	for ieee := range c.devices {
		out = append(out, ieee)
	}
	return out
}

// RemoveDevice deletes dev from the device table, cascading group
// membership and persistence, then emits device_removed.
func (c *Controller) RemoveDevice(ctx context.Context, ieee uint64) error {
	c.devicesMu.Lock()
	_, ok := c.devices[ieee]
	delete(c.devices, ieee)
	c.devicesMu.Unlock()
	if !ok {
		return nil
	}

	c.groups.removeDeviceEverywhere(ieee)
	c.outbound.remove(ieee)
	if c.persist != nil {
		c.persist.DeleteDevice(ieee)
	}
	if err := c.radio.ForceRemove(ctx, ieee); err != nil {
		c.log.Warnf("controller: force_remove %x: %v", ieee, err)
	}
	c.bus.Publish(zhaevents.Event{Kind: zhaevents.DeviceRemoved, Data: ieee})
	return nil
}

// AddGroupMember adds (ieee, endpoint) to groupID, creating the group
// if it does not yet exist.
func (c *Controller) AddGroupMember(groupID uint16, name string, ieee uint64, endpoint byte) {
	g, created := c.groups.getOrCreate(groupID, name)
	if created {
		c.bus.Publish(zhaevents.Event{Kind: zhaevents.GroupAdded, Data: g.ID})
	}
	ref := EndpointRef{IEEEAddress: ieee, Endpoint: endpoint}
	if g.AddMember(ref) {
		c.bus.Publish(zhaevents.Event{Kind: zhaevents.GroupMemberAdded, Data: ref})
		if c.persist != nil {
			c.persist.UpsertGroupMember(groupID, g.Name, ieee, endpoint)
		}
	}
}

// RemoveGroupMember removes (ieee, endpoint) from groupID, deleting the
// group once it becomes empty.
func (c *Controller) RemoveGroupMember(groupID uint16, ieee uint64, endpoint byte) {
	g, ok := c.groups.get(groupID)
	if !ok {
		return
	}
	ref := EndpointRef{IEEEAddress: ieee, Endpoint: endpoint}
	empty := g.RemoveMember(ref)
	if c.persist != nil {
		c.persist.RemoveGroupMember(groupID, ieee, endpoint)
	}
	if empty {
		c.groups.delete(groupID)
		c.bus.Publish(zhaevents.Event{Kind: zhaevents.GroupRemoved, Data: groupID})
		if c.persist != nil {
			c.persist.DeleteGroup(groupID)
		}
	}
}

// Groups returns every currently tracked group.
func (c *Controller) Groups() []*Group {
	return c.groups.all()
}
