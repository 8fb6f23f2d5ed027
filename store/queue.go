package store

import (
	"sync"
	"time"

	"github.com/zhacore/zha/zigdev"
)

// DefaultQuietWindow is the coalescing window write-through commits
// wait out before flushing (≈100ms).
const DefaultQuietWindow = 100 * time.Millisecond

// groupMemberKey identifies one pending group-membership row.
type groupMemberKey struct {
	ieee     uint64
	groupID  uint16
	endpoint byte
}

// writeQueue coalesces device/group mutations within a quiet window
// into a single transaction, mirroring the mutex-guarded pending-state
// shape of zhaevents.EventBus (subscriptions guarded by one mutex,
// history by a second) without importing it: here one mutex guards the
// pending maps and the pending timer both.
type writeQueue struct {
	pendingUpserts      map[uint64]*zigdev.Device
	pendingDeletes      map[uint64]bool
	pendingGroupAdds    map[groupMemberKey]string
	pendingGroupRemoves map[groupMemberKey]bool
	pendingGroupDeletes map[uint16]bool

	flush func()

	mu     sync.Mutex
	timer  *time.Timer
	window time.Duration
}

func newWriteQueue(window time.Duration, flush func()) *writeQueue {
	return &writeQueue{
		pendingUpserts:      make(map[uint64]*zigdev.Device),
		pendingDeletes:      make(map[uint64]bool),
		pendingGroupAdds:    make(map[groupMemberKey]string),
		pendingGroupRemoves: make(map[groupMemberKey]bool),
		pendingGroupDeletes: make(map[uint16]bool),
		flush:               flush,
		window:              window,
	}
}

// enqueueUpsert records d as the latest snapshot for its IEEE address.
// The later observation always wins, since this falls out of map
// overwrite plus this call always running after the in-memory mutation
// it reflects.
func (q *writeQueue) enqueueUpsert(d *zigdev.Device) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pendingDeletes, d.IEEEAddress)
	q.pendingUpserts[d.IEEEAddress] = d
	q.arm()
}

func (q *writeQueue) enqueueDelete(ieee uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pendingUpserts, ieee)
	q.pendingDeletes[ieee] = true
	q.arm()
}

func (q *writeQueue) enqueueGroupAdd(groupID uint16, name string, ieee uint64, endpoint byte) {
	q.mu.Lock()
	defer q.mu.Unlock()
	key := groupMemberKey{ieee: ieee, groupID: groupID, endpoint: endpoint}
	delete(q.pendingGroupRemoves, key)
	q.pendingGroupAdds[key] = name
	q.arm()
}

func (q *writeQueue) enqueueGroupRemove(groupID uint16, ieee uint64, endpoint byte) {
	q.mu.Lock()
	defer q.mu.Unlock()
	key := groupMemberKey{ieee: ieee, groupID: groupID, endpoint: endpoint}
	delete(q.pendingGroupAdds, key)
	q.pendingGroupRemoves[key] = true
	q.arm()
}

func (q *writeQueue) enqueueGroupDelete(groupID uint16) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pendingGroupDeletes[groupID] = true
	q.arm()
}

// arm (re)starts the quiet-window timer. Called with q.mu held.
func (q *writeQueue) arm() {
	if q.timer != nil {
		q.timer.Stop()
	}
	q.timer = time.AfterFunc(q.window, q.flush)
}

// drain empties every pending map and returns a snapshot, used by
// flush and by Close's final synchronous commit.
func (q *writeQueue) drain() (upserts map[uint64]*zigdev.Device, deletes map[uint64]bool, groupAdds map[groupMemberKey]string, groupRemoves map[groupMemberKey]bool, groupDeletes map[uint16]bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	upserts, deletes = q.pendingUpserts, q.pendingDeletes
	groupAdds, groupRemoves, groupDeletes = q.pendingGroupAdds, q.pendingGroupRemoves, q.pendingGroupDeletes
	q.pendingUpserts = make(map[uint64]*zigdev.Device)
	q.pendingDeletes = make(map[uint64]bool)
	q.pendingGroupAdds = make(map[groupMemberKey]string)
	q.pendingGroupRemoves = make(map[groupMemberKey]bool)
	q.pendingGroupDeletes = make(map[uint16]bool)
	return
}

// stop cancels any pending timer without flushing, used once Close has
// taken over the final flush.
func (q *writeQueue) stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.timer != nil {
		q.timer.Stop()
	}
}
