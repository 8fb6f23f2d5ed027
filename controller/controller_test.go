package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zhacore/zha/internal/testutil"
	"github.com/zhacore/zha/radio"
	"github.com/zhacore/zha/zcl"
	"github.com/zhacore/zha/zhaevents"
)

// requestFrames extracts just the radio.Frame values handed to Request,
// in call order.
func requestFrames(r *testutil.MockRadio) []radio.Frame {
	recorded := r.FramesFor("Request")
	out := make([]radio.Frame, len(recorded))
	for i, rec := range recorded {
		out[i] = rec.Frame
	}
	return out
}

func newTestController() (*Controller, *testutil.MockRadio, *zhaevents.EventBus) {
	r := testutil.NewMockRadio()
	bus := zhaevents.NewEventBus(zhaevents.WithHistorySize(32))
	c := New(r, bus)
	return c, r, bus
}

func TestStartShutdown(t *testing.T) {
	c, _, _ := newTestController()
	if err := c.Start(context.Background(), true); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestRequestBeforeStartReturnsNotInitialized(t *testing.T) {
	c, _, _ := newTestController()
	_, err := c.Request(context.Background(), 1, 0x0104, 0x0006, 1, 1, zcl.ClientToServer,
		func(tsn byte) []byte { return []byte{tsn} }, false, 0)
	if err != ErrNotInitialized {
		t.Fatalf("got %v", err)
	}
}

func TestPermitPublishesEvent(t *testing.T) {
	c, _, bus := newTestController()
	_ = c.Start(context.Background(), true)

	var got []byte
	bus.Subscribe(func(ev zhaevents.Event) {
		if ev.Kind == zhaevents.PermitDuration {
			got = append(got, ev.Data.(byte))
		}
	})

	if err := c.Permit(context.Background(), 60, nil); err != nil {
		t.Fatalf("Permit: %v", err)
	}
	if len(got) != 1 || got[0] != 60 {
		t.Fatalf("got %v", got)
	}
}

// TestPermitZeroSuppressesJoinWindow verifies that after permit(0), no
// device_joined is emitted for an in-flight join that still lands
// shortly afterward.
func TestPermitZeroSuppressesJoinWindow(t *testing.T) {
	c, _, bus := newTestController()
	_ = c.Start(context.Background(), true)

	var joined int
	var mu sync.Mutex
	bus.Subscribe(func(ev zhaevents.Event) {
		if ev.Kind == zhaevents.DeviceJoined {
			mu.Lock()
			joined++
			mu.Unlock()
		}
	})

	if err := c.Permit(context.Background(), 0, nil); err != nil {
		t.Fatalf("Permit: %v", err)
	}
	c.HandleJoin(0x1234, 0x0011223344556677, 0x0000)

	mu.Lock()
	defer mu.Unlock()
	if joined != 0 {
		t.Fatalf("expected device_joined suppressed, got %d events", joined)
	}
	if _, ok := c.DeviceByIEEE(0x0011223344556677); ok {
		t.Fatal("expected device not added to the table while suppressed")
	}
}

func TestHandleJoinPublishesDeviceJoined(t *testing.T) {
	c, _, bus := newTestController()
	_ = c.Start(context.Background(), true)

	done := make(chan zhaevents.DeviceJoinedData, 1)
	bus.Subscribe(func(ev zhaevents.Event) {
		if ev.Kind == zhaevents.DeviceJoined {
			done <- ev.Data.(zhaevents.DeviceJoinedData)
		}
	})

	c.HandleJoin(0x1234, 0xec1bbdfffe544f40, 0x0000)

	select {
	case data := <-done:
		if data.IEEEAddress != 0xec1bbdfffe544f40 || data.NWKAddress != 0x1234 {
			t.Fatalf("got %+v", data)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for device_joined")
	}

	if _, ok := c.DeviceByIEEE(0xec1bbdfffe544f40); !ok {
		t.Fatal("expected device registered in the table")
	}
}

// TestRequestSerializesPerDevice verifies that a second request to the
// same device does not reach the radio until the first one's job has
// finished running.
func TestRequestSerializesPerDevice(t *testing.T) {
	c, fr, _ := newTestController()
	_ = c.Start(context.Background(), true)

	release := make(chan struct{})
	var order []string
	var mu sync.Mutex
	fr.OnRequest(func(frame radio.Frame) error {
		mu.Lock()
		order = append(order, "start")
		mu.Unlock()
		if frame.Sequence == 0 {
			<-release
		}
		mu.Lock()
		order = append(order, "end")
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = c.Request(context.Background(), 1, 0x0104, 0x0006, 1, 1, zcl.ClientToServer,
			func(tsn byte) []byte { return []byte{tsn} }, false, 0)
	}()
	time.Sleep(10 * time.Millisecond) // ensure the first job is enqueued first
	go func() {
		defer wg.Done()
		_, _ = c.Request(context.Background(), 1, 0x0104, 0x0006, 1, 1, zcl.ClientToServer,
			func(tsn byte) []byte { return []byte{tsn} }, false, 0)
	}()
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	got := append([]string(nil), order...)
	mu.Unlock()
	if len(got) != 1 || got[0] != "start" {
		t.Fatalf("expected only the first job's radio.Request to have fired, got %v", got)
	}

	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	want := []string{"start", "end", "start", "end"}
	if len(order) != len(want) {
		t.Fatalf("got %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v", order)
		}
	}
	testutil.AssertTrue(t, len(requestFrames(fr)) > 0)
}

func TestRequestResolvesPendingReply(t *testing.T) {
	c, fr, _ := newTestController()
	_ = c.Start(context.Background(), true)

	fr.OnRequest(func(frame radio.Frame) error {
		// frame control 0x18: general, server-to-client, default
		// response disabled; command id 0x01 is arbitrary here since
		// resolution happens purely on TSN + endpoint/cluster tiebreak.
		go c.HandleMessage(1, 0x0104, 0x0006, 1, 1, []byte{0x18, frame.Sequence, 0x01, 0xAB, 0xCD})
		return nil
	})

	reply, err := c.Request(context.Background(), 1, 0x0104, 0x0006, 1, 1, zcl.ClientToServer,
		func(tsn byte) []byte {
			fb := zcl.NewFrameBuilder(0x00, tsn)
			out, _ := fb.Build(nil)
			return out
		}, true, time.Second)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if len(reply) != 2 || reply[0] != 0xAB || reply[1] != 0xCD {
		t.Fatalf("got %v", reply)
	}
}

// TestDefaultResponseSuppression verifies that a Write-Attributes with
// disable-default-response=1 gets no reply frame, while the bit cleared
// produces exactly one Default-Response echoing the request's TSN with
// status 0x00.
func TestDefaultResponseSuppression(t *testing.T) {
	c, fr, _ := newTestController()
	_ = c.Start(context.Background(), true)

	suppressed := zcl.NewFrameBuilder(zcl.CommandWriteAttributes, 21)
	suppressed.DisableDefaultResponse = true
	frame, err := suppressed.Build([]byte{0x00, 0x00, 0x20, 0x01})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	c.HandleMessage(1, 0x0104, 0x0006, 1, 1, frame)
	if got := requestFrames(fr); len(got) != 0 {
		t.Fatalf("expected no reply frame with disable-default-response=1, got %v", got)
	}

	unsuppressed := zcl.NewFrameBuilder(zcl.CommandWriteAttributes, 22)
	frame, err = unsuppressed.Build([]byte{0x00, 0x00, 0x20, 0x01})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	c.HandleMessage(1, 0x0104, 0x0006, 1, 1, frame)
	got := requestFrames(fr)
	if len(got) != 1 {
		t.Fatalf("expected exactly one default response, got %v", got)
	}
	header, payload, err := zcl.ParseFrame(got[0].Payload)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if header.CommandID != zcl.CommandDefaultResponse || header.TSN != 22 {
		t.Fatalf("got header %+v", header)
	}
	resp, err := zcl.DecodeDefaultResponse(payload)
	if err != nil {
		t.Fatalf("DecodeDefaultResponse: %v", err)
	}
	if resp.CommandID != zcl.CommandWriteAttributes || resp.Status != zcl.StatusSuccess {
		t.Fatalf("got %+v", resp)
	}
}

func TestGroupMembershipLifecycle(t *testing.T) {
	c, _, bus := newTestController()
	var events []zhaevents.Kind
	var mu sync.Mutex
	bus.Subscribe(func(ev zhaevents.Event) {
		mu.Lock()
		events = append(events, ev.Kind)
		mu.Unlock()
	})

	c.AddGroupMember(1, "living room", 0xAA, 1)
	c.AddGroupMember(1, "living room", 0xBB, 1)
	c.RemoveGroupMember(1, 0xAA, 1)
	c.RemoveGroupMember(1, 0xBB, 1)

	mu.Lock()
	defer mu.Unlock()
	want := []zhaevents.Kind{zhaevents.GroupAdded, zhaevents.GroupMemberAdded, zhaevents.GroupMemberAdded, zhaevents.GroupRemoved}
	if len(events) != len(want) {
		t.Fatalf("got %v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("got %v", events)
		}
	}
	if _, ok := c.groups.get(1); ok {
		t.Fatal("expected group deleted once empty")
	}
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	c, _, _ := newTestController()
	_ = c.Start(context.Background(), true)
	c.setNetworkState(radio.NetworkParams{
		ExtendedPANID: 0x0123456789abcdef,
		PANID:         0x1a2b,
		Channel:       15,
	}, radio.NodeParams{IEEEAddress: 0xaabbccddeeff0011, NWKAddress: 0x0000})

	blob, err := c.Backup(context.Background())
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}

	c2, _, _ := newTestController()
	_ = c2.Start(context.Background(), true)
	if err := c2.Restore(context.Background(), blob); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if c2.node.IEEEAddress != 0xaabbccddeeff0011 || c2.network.PANID != 0x1a2b {
		t.Fatalf("got node=%+v network=%+v", c2.node, c2.network)
	}
}

func TestRestoreRejectsMalformedBlob(t *testing.T) {
	c, _, _ := newTestController()
	_ = c.Start(context.Background(), true)
	err := c.Restore(context.Background(), []byte("not json"))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRemoveDeviceCascadesGroupMembership(t *testing.T) {
	c, _, _ := newTestController()
	_ = c.Start(context.Background(), true)
	c.HandleJoin(0x1234, 0xAA, 0)
	c.AddGroupMember(5, "kitchen", 0xAA, 1)

	if err := c.RemoveDevice(context.Background(), 0xAA); err != nil {
		t.Fatalf("RemoveDevice: %v", err)
	}
	if _, ok := c.DeviceByIEEE(0xAA); ok {
		t.Fatal("expected device removed")
	}
	if _, ok := c.groups.get(5); ok {
		t.Fatal("expected group cascaded to empty and deleted")
	}
}
