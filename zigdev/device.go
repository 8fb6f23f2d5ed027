package zigdev

import (
	"errors"
	"sync"
	"time"

	"github.com/zhacore/zha/zdo"
)

// ErrInvalidTransition is returned by Device.TransitionTo when the
// requested move does not follow the device lifecycle table.
var ErrInvalidTransition = errors.New("zigdev: invalid state transition")

// Device is a joined Zigbee node: its addressing, interview state, node
// descriptor, and endpoint set. The Application Controller is the only
// writer of the device table itself; a *Device's own fields are safe
// for concurrent use via its mutex.
type Device struct {
	endpoints  map[byte]*Endpoint
	Relays     []uint16
	Neighbors  []zdo.Neighbor
	LastSeen   time.Time
	NodeDescriptor zdo.NodeDescriptor
	IEEEAddress uint64
	mu         sync.RWMutex
	NWKAddress uint16
	Status     Status
}

// NewDevice returns a freshly joined device in StatusNew.
func NewDevice(ieee uint64, nwk uint16) *Device {
	return &Device{
		IEEEAddress: ieee,
		NWKAddress:  nwk,
		Status:      StatusNew,
		LastSeen:    time.Now(),
		endpoints:   make(map[byte]*Endpoint),
	}
}

// TransitionTo moves the device to the next lifecycle state, validating
// the edge against the lifecycle table.
func (d *Device) TransitionTo(to Status) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !CanTransition(d.Status, to) {
		return ErrInvalidTransition
	}
	d.Status = to
	return nil
}

// CurrentStatus returns the device's current lifecycle state.
func (d *Device) CurrentStatus() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.Status
}

// UpdateNWKAddress rewrites the device's short address on rejoin,
// preserving IEEE-keyed referential integrity.
func (d *Device) UpdateNWKAddress(nwk uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.NWKAddress = nwk
	d.LastSeen = time.Now()
}

// Touch updates LastSeen to now, called on every observed frame from
// this device.
func (d *Device) Touch() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.LastSeen = time.Now()
}

// AddEndpoint registers ep under its own id, creating the endpoint set
// entry. Endpoints are owned by their Device.
func (d *Device) AddEndpoint(ep *Endpoint) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.endpoints[ep.ID] = ep
}

// Endpoint looks up an endpoint by id.
func (d *Device) Endpoint(id byte) (*Endpoint, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ep, ok := d.endpoints[id]
	return ep, ok
}

// Endpoints returns every endpoint id currently registered.
func (d *Device) Endpoints() []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]byte, 0, len(d.endpoints))
	for id := range d.endpoints {
		ids = append(ids, id)
	}
	return ids
}

// EndpointCount reports how many endpoints are currently registered, so
// the interview step can tell when every active endpoint's
// Simple-Descriptor has come back.
func (d *Device) EndpointCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.endpoints)
}

// IsInitialized reports whether the device has reached
// StatusInitialized. The endpoint count is not checked: a device whose
// interview found no active endpoints can still be initialized.
func (d *Device) IsInitialized() bool {
	return d.CurrentStatus() == StatusInitialized
}
