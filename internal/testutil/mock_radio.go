package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/zhacore/zha/radio"
)

// RequestHandler answers a Request/Broadcast/MRequest call. Returning a
// non-nil error simulates a delivery failure at the radio layer.
type RequestHandler func(frame radio.Frame) error

// RecordedFrame records one outbound frame the core handed to the mock
// radio, tagged with which method carried it.
type RecordedFrame struct {
	Frame  radio.Frame
	Method string
}

// MockRadio is a radio.Radio test double: the core under test can be
// wired straight to it, per-method behavior is overridden with OnXxx
// registration, and every outbound call is recorded for assertion.
type MockRadio struct {
	mu sync.Mutex

	requestHandler   RequestHandler
	broadcastHandler RequestHandler
	mrequestHandler  RequestHandler

	startupErr        error
	probeResult       bool
	probeErr          error
	forceRemoveErr    error
	permitNCPErr      error
	permitWithKeyErr  error
	writeNetworkErr   error

	frames []RecordedFrame
}

// NewMockRadio returns a MockRadio whose Probe/Startup/Permit/ForceRemove
// calls succeed by default; Request/Broadcast/MRequest succeed and are
// simply recorded until a handler overrides them.
func NewMockRadio() *MockRadio {
	return &MockRadio{probeResult: true}
}

// OnRequest overrides how Request(frame) behaves.
func (m *MockRadio) OnRequest(h RequestHandler) *MockRadio {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestHandler = h
	return m
}

// OnBroadcast overrides how Broadcast(frame) behaves.
func (m *MockRadio) OnBroadcast(h RequestHandler) *MockRadio {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcastHandler = h
	return m
}

// OnMRequest overrides how MRequest(frame) behaves.
func (m *MockRadio) OnMRequest(h RequestHandler) *MockRadio {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mrequestHandler = h
	return m
}

// WithStartupError makes Startup fail with err.
func (m *MockRadio) WithStartupError(err error) *MockRadio {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupErr = err
	return m
}

// WithProbeResult fixes Probe's return value.
func (m *MockRadio) WithProbeResult(ok bool, err error) *MockRadio {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probeResult, m.probeErr = ok, err
	return m
}

func (m *MockRadio) Probe(ctx context.Context, cfg radio.DeviceConfig) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.probeResult, m.probeErr
}

func (m *MockRadio) Startup(ctx context.Context, autoForm bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startupErr
}

func (m *MockRadio) ForceRemove(ctx context.Context, ieee uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forceRemoveErr
}

func (m *MockRadio) PermitNCP(ctx context.Context, durationSeconds byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.permitNCPErr
}

func (m *MockRadio) PermitWithKey(ctx context.Context, ieee uint64, key []byte, durationSeconds byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.permitWithKeyErr
}

func (m *MockRadio) WriteNetworkInfo(ctx context.Context, network radio.NetworkParams, node radio.NodeParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeNetworkErr
}

func (m *MockRadio) Request(ctx context.Context, frame radio.Frame) error {
	return m.record("Request", frame, m.requestHandler)
}

func (m *MockRadio) Broadcast(ctx context.Context, frame radio.Frame) error {
	return m.record("Broadcast", frame, m.broadcastHandler)
}

func (m *MockRadio) MRequest(ctx context.Context, frame radio.Frame) error {
	return m.record("MRequest", frame, m.mrequestHandler)
}

func (m *MockRadio) record(method string, frame radio.Frame, h RequestHandler) error {
	m.mu.Lock()
	m.frames = append(m.frames, RecordedFrame{Method: method, Frame: frame})
	m.mu.Unlock()
	if h == nil {
		return nil
	}
	return h(frame)
}

// Frames returns every recorded outbound frame in call order.
func (m *MockRadio) Frames() []RecordedFrame {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedFrame, len(m.frames))
	copy(out, m.frames)
	return out
}

// FramesFor returns the recorded frames for a single method ("Request",
// "Broadcast", or "MRequest").
func (m *MockRadio) FramesFor(method string) []RecordedFrame {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []RecordedFrame
	for _, f := range m.frames {
		if f.Method == method {
			out = append(out, f)
		}
	}
	return out
}

// LastFrame returns the most recently recorded frame, or an error if
// none were recorded.
func (m *MockRadio) LastFrame() (RecordedFrame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.frames) == 0 {
		return RecordedFrame{}, fmt.Errorf("testutil: no frames recorded")
	}
	return m.frames[len(m.frames)-1], nil
}

// Reset clears recorded frames but keeps registered handlers.
func (m *MockRadio) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = nil
}

var _ radio.Radio = (*MockRadio)(nil)
