package controller

import (
	"context"
	"sync"

	"github.com/zhacore/zha/zcl"
)

// tsnAllocator hands out transaction sequence numbers from a single
// counter that wraps through 0..255. Because a byte-wide TSN space
// wraps far sooner than a typical request-id counter, collisions are a
// normal occurrence here and are resolved by also matching (srcEP,
// dstEP, cluster, direction).
type tsnAllocator struct {
	pending map[byte][]*pendingReply
	mu      sync.Mutex
	next    byte
}

// pendingReply is one outstanding request awaiting a correlated inbound
// frame or default response.
type pendingReply struct {
	done      chan struct{}
	payload   []byte
	err       error
	tsn       byte
	srcEP     byte
	dstEP     byte
	cluster   uint16
	direction zcl.Direction
	resolved  bool
}

func newTSNAllocator() *tsnAllocator {
	return &tsnAllocator{pending: make(map[byte][]*pendingReply)}
}

// register allocates the next TSN and, if expectReply is true, files a
// pendingReply for it keyed additionally by the (srcEP, dstEP, cluster,
// direction) tiebreak tuple.
func (a *tsnAllocator) register(srcEP, dstEP byte, cluster uint16, direction zcl.Direction, expectReply bool) (byte, *pendingReply) {
	a.mu.Lock()
	defer a.mu.Unlock()

	tsn := a.next
	a.next++

	if !expectReply {
		return tsn, nil
	}

	pr := &pendingReply{
		done:      make(chan struct{}),
		tsn:       tsn,
		srcEP:     srcEP,
		dstEP:     dstEP,
		cluster:   cluster,
		direction: direction,
	}
	a.pending[tsn] = append(a.pending[tsn], pr)
	return tsn, pr
}

// resolve matches an inbound frame to a pendingReply by TSN, then by
// the tiebreak tuple if more than one candidate shares the TSN after
// wraparound. Returns false if nothing matched.
func (a *tsnAllocator) resolve(tsn byte, srcEP, dstEP byte, cluster uint16, direction zcl.Direction, payload []byte) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	candidates := a.pending[tsn]
	for i, pr := range candidates {
		if pr.srcEP == srcEP && pr.dstEP == dstEP && pr.cluster == cluster && pr.direction == direction {
			pr.payload = payload
			pr.resolved = true
			close(pr.done)
			a.pending[tsn] = append(candidates[:i], candidates[i+1:]...)
			if len(a.pending[tsn]) == 0 {
				delete(a.pending, tsn)
			}
			return true
		}
	}
	return false
}

// release removes pr from the pending table without resolving it,
// called on cancellation so a later TSN reuse cannot deliver a stale
// reply to an abandoned awaiter.
func (a *tsnAllocator) release(pr *pendingReply) {
	a.mu.Lock()
	defer a.mu.Unlock()
	list := a.pending[pr.tsn]
	for i, c := range list {
		if c == pr {
			a.pending[pr.tsn] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(a.pending[pr.tsn]) == 0 {
		delete(a.pending, pr.tsn)
	}
}

// wait blocks until pr resolves, ctx is canceled, or its timeout fires,
// releasing the pending slot in every case but the successful one.
func (a *tsnAllocator) wait(ctx context.Context, pr *pendingReply) ([]byte, error) {
	select {
	case <-pr.done:
		return pr.payload, nil
	case <-ctx.Done():
		a.release(pr)
		return nil, ErrTimeout
	}
}
