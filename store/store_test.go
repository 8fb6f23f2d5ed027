package store

import (
	"context"
	"testing"
	"time"

	"github.com/zhacore/zha/internal/testutil"
	"github.com/zhacore/zha/wire"
	"github.com/zhacore/zha/zdo"
	"github.com/zhacore/zha/zigdev"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "", WithQuietWindow(time.Millisecond))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	testutil.AssertNoError(t, migrate(context.Background(), s.db))
	v, err := schemaVersion(context.Background(), s.db)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, currentSchemaVersion, v)
}

func buildDevice(ieee uint64, nwk uint16) *zigdev.Device {
	d := zigdev.NewDevice(ieee, nwk)
	d.Status = zigdev.StatusInitialized
	d.NodeDescriptor = zdo.NodeDescriptor{LogicalType: 1, ManufacturerCode: 0x1234}
	ep := zigdev.NewEndpoint(1, 0x0104, 0x0100)
	d.AddEndpoint(ep)
	cl := ep.AddInCluster(0x0006)
	cl.SetAttribute(0x0000, wire.Value{Type: wire.TypeBool, Data: true})
	cl.MarkUnsupported(0x4000)
	d.Relays = []uint16{0x1122, 0x3344}
	d.Neighbors = []zdo.Neighbor{{IEEE: 0xaabb, NWK: 0x5566, LQI: 200}}
	return d
}

func TestUpsertAndLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d := buildDevice(0x1, 0x2200)

	s.UpsertDevice(d)
	s.Flush(ctx)

	devices, _, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, ok := devices[0x1]
	if !ok {
		t.Fatalf("device 0x1 not loaded")
	}
	if got.CurrentStatus() != zigdev.StatusInitialized {
		t.Fatalf("status = %v, want initialized", got.CurrentStatus())
	}
	if got.NodeDescriptor.ManufacturerCode != 0x1234 {
		t.Fatalf("manufacturer code = %#x", got.NodeDescriptor.ManufacturerCode)
	}
	ep, ok := got.Endpoint(1)
	if !ok {
		t.Fatalf("endpoint 1 not loaded")
	}
	cl, ok := ep.InCluster(0x0006)
	if !ok {
		t.Fatalf("cluster 0x0006 not loaded")
	}
	v, ok := cl.Attribute(0x0000)
	if !ok || v.Data != true {
		t.Fatalf("attribute 0x0000 = %+v, ok=%v", v, ok)
	}
	if !cl.IsUnsupported(0x4000) {
		t.Fatalf("attribute 0x4000 should be unsupported")
	}
	if len(got.Relays) != 2 || got.Relays[0] != 0x1122 || got.Relays[1] != 0x3344 {
		t.Fatalf("relays = %v", got.Relays)
	}
	if len(got.Neighbors) != 1 || got.Neighbors[0].IEEE != 0xaabb {
		t.Fatalf("neighbors = %v", got.Neighbors)
	}
}

// TestDeleteDeviceCascades verifies that removing a device cascades
// through every child table without explicit application code.
func TestDeleteDeviceCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d := buildDevice(0x2, 0x2201)
	s.UpsertDevice(d)
	s.Flush(ctx)

	s.DeleteDevice(0x2)
	s.Flush(ctx)

	devices, _, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := devices[0x2]; ok {
		t.Fatalf("device 0x2 still present after delete")
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM endpoints WHERE device_ieee = ?`, ieeeToInt64(0x2)).Scan(&count); err != nil {
		t.Fatalf("count endpoints: %v", err)
	}
	if count != 0 {
		t.Fatalf("endpoints still present after cascade delete: %d", count)
	}
}

// TestUpsertReplacesPriorSnapshot exercises the full-replace strategy:
// a second UpsertDevice with fewer endpoints must remove the endpoint
// that the first snapshot had.
func TestUpsertReplacesPriorSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d := buildDevice(0x3, 0x2202)
	s.UpsertDevice(d)
	s.Flush(ctx)

	d2 := zigdev.NewDevice(0x3, 0x2202)
	d2.Status = zigdev.StatusInitialized
	s.UpsertDevice(d2)
	s.Flush(ctx)

	devices, _, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := devices[0x3]
	if _, ok := got.Endpoint(1); ok {
		t.Fatalf("endpoint 1 should have been replaced away")
	}
}

func TestGroupMembershipPersistence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// group_members rows reference devices, so the members must exist.
	s.UpsertDevice(buildDevice(0xaaaa, 0x2205))
	s.UpsertDevice(buildDevice(0xbbbb, 0x2206))
	s.UpsertGroupMember(10, "Kitchen", 0xaaaa, 1)
	s.UpsertGroupMember(10, "Kitchen", 0xbbbb, 2)
	s.Flush(ctx)

	_, groups, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	if groups[0].ID != 10 || groups[0].Name != "Kitchen" || len(groups[0].Members) != 2 {
		t.Fatalf("group = %+v", groups[0])
	}

	s.RemoveGroupMember(10, 0xaaaa, 1)
	s.DeleteGroup(10)
	s.Flush(ctx)

	_, groups, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("groups after delete = %d, want 0", len(groups))
	}
}

func TestWriteThroughCoalescesWithinQuietWindow(t *testing.T) {
	s, err := Open(context.Background(), "", WithQuietWindow(50*time.Millisecond))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close(context.Background())

	d := buildDevice(0x4, 0x2203)
	s.UpsertDevice(d)
	d.UpdateNWKAddress(0x9999)
	s.UpsertDevice(d)

	time.Sleep(150 * time.Millisecond)

	devices, _, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, ok := devices[0x4]
	if !ok {
		t.Fatalf("device 0x4 not persisted")
	}
	if got.NWKAddress != 0x9999 {
		t.Fatalf("nwk = %#x, want the later write to win", got.NWKAddress)
	}
}

// TestNodeDescriptorReshapeDefault verifies that a node descriptor
// written through the current (v8 and later) node_descriptors table
// reads back stack_revision at its defined default (0).
func TestNodeDescriptorReshapeDefault(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d := buildDevice(0x5, 0x2204)
	s.UpsertDevice(d)
	s.Flush(ctx)

	var rev int
	if err := s.db.QueryRowContext(ctx, `SELECT stack_revision FROM node_descriptors WHERE device_ieee = ?`, ieeeToInt64(0x5)).Scan(&rev); err != nil {
		t.Fatalf("query stack_revision: %v", err)
	}
	if rev != 0 {
		t.Fatalf("stack_revision = %d, want 0", rev)
	}
}

func TestSaveAndLoadBackup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	blob := []byte(`{"node_info":{"ieee":1},"network_info":{},"devices":[]}`)

	s.SaveBackup(blob)

	backups, err := s.LoadBackups(ctx)
	if err != nil {
		t.Fatalf("LoadBackups: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("backups = %d, want 1", len(backups))
	}
	if string(backups[0].Blob) != string(blob) {
		t.Fatalf("blob round-trip mismatch: got %s", backups[0].Blob)
	}
	if backups[0].ID == "" {
		t.Fatalf("backup id should not be empty")
	}
}
