package zigdev

import (
	"testing"

	"github.com/zhacore/zha/internal/testutil"
	"github.com/zhacore/zha/wire"
	"github.com/zhacore/zha/zcl"
)

func TestLifecycleHappyPath(t *testing.T) {
	d := NewDevice(0x0011223344556677, 0x1234)
	testutil.AssertEqual(t, StatusNew, d.CurrentStatus())

	steps := []Status{StatusZDOInit, StatusEndpointsInit, StatusInitialized}
	for _, s := range steps {
		testutil.AssertNoError(t, d.TransitionTo(s))
	}
	testutil.AssertTrue(t, d.IsInitialized())
}

func TestLifecycleInvalidTransition(t *testing.T) {
	d := NewDevice(1, 0x1234)
	testutil.AssertEqual(t, ErrInvalidTransition, d.TransitionTo(StatusInitialized))
}

func TestLifecycleLeftFromAnyState(t *testing.T) {
	d := NewDevice(1, 0x1234)
	if err := d.TransitionTo(StatusLeft); err != nil {
		t.Fatalf("got %v", err)
	}
	if err := d.TransitionTo(StatusZDOInit); err != ErrInvalidTransition {
		t.Fatalf("expected terminal state to reject further transitions, got %v", err)
	}
}

func TestUpdateNWKAddressPreservesIEEE(t *testing.T) {
	d := NewDevice(0xabc, 0x1234)
	d.UpdateNWKAddress(0x5678)
	if d.NWKAddress != 0x5678 || d.IEEEAddress != 0xabc {
		t.Fatalf("got nwk=%x ieee=%x", d.NWKAddress, d.IEEEAddress)
	}
}

func TestEndpointAndClusterOwnership(t *testing.T) {
	d := NewDevice(1, 0x1234)
	ep := NewEndpoint(1, 0x0104, 266)
	d.AddEndpoint(ep)

	c := ep.AddInCluster(0x0006)
	c.SetAttribute(0x0000, wire.Value{Type: wire.TypeBool, Data: true})

	got, ok := d.Endpoint(1)
	if !ok {
		t.Fatal("expected endpoint 1")
	}
	cluster, ok := got.InCluster(0x0006)
	if !ok {
		t.Fatal("expected in-cluster 0x0006")
	}
	v, ok := cluster.Attribute(0x0000)
	if !ok || v.Data != true {
		t.Fatalf("got %+v", v)
	}
}

func TestClusterUnsupportedAttribute(t *testing.T) {
	c := NewCluster(0x0000, DirectionIn)
	c.SetAttribute(0x0005, wire.Value{Type: wire.TypeCharStr, Data: "x"})
	c.MarkUnsupported(0x0005)

	if !c.IsUnsupported(0x0005) {
		t.Fatal("expected unsupported")
	}
	if _, ok := c.Attribute(0x0005); ok {
		t.Fatal("expected attribute cleared once marked unsupported")
	}
}

func TestClusterReportConfig(t *testing.T) {
	c := NewCluster(0x0402, DirectionIn)
	cfg := zcl.ReportingConfig{AttrID: 0x0000, AttrType: wire.TypeInt16, MinInterval: 10, MaxInterval: 60}
	c.SetReportConfig(0x0000, cfg)

	got, ok := c.ReportConfig(0x0000)
	if !ok || got.MaxInterval != 60 {
		t.Fatalf("got %+v", got)
	}
}

func TestInterviewProgressRetryExhaustion(t *testing.T) {
	var failedStep InterviewStep = -1
	p := NewInterviewProgress(func(step InterviewStep) { failedStep = step })

	for i := 0; i < 3; i++ {
		if !p.RecordAttempt(StepNodeDescriptor, 3) {
			t.Fatalf("attempt %d should still be within budget", i)
		}
	}
	if p.RecordAttempt(StepNodeDescriptor, 3) {
		t.Fatal("expected budget exhausted")
	}
	if failedStep != StepNodeDescriptor {
		t.Fatalf("expected onFailure called with StepNodeDescriptor, got %v", failedStep)
	}
}

func TestInterviewProgressReset(t *testing.T) {
	p := NewInterviewProgress(nil)
	p.RecordAttempt(StepSimpleDescriptor, 2)
	p.RecordAttempt(StepSimpleDescriptor, 2)
	p.Reset(StepSimpleDescriptor)
	if p.Attempts(StepSimpleDescriptor) != 0 {
		t.Fatalf("got %d", p.Attempts(StepSimpleDescriptor))
	}
}
