package controller

import "sync"

// deviceQueue serializes outbound requests to a single device, one
// in-flight request at a time with a short backlog. Jobs run on one
// goroutine per device in submission order, so a later request() call
// can never overtake an earlier one that is still awaiting delivery
// confirmation.
type deviceQueue struct {
	jobs chan func()
	stop chan struct{}
}

func newDeviceQueue() *deviceQueue {
	dq := &deviceQueue{
		jobs: make(chan func(), 32),
		stop: make(chan struct{}),
	}
	go dq.run()
	return dq
}

func (dq *deviceQueue) run() {
	for {
		select {
		case fn := <-dq.jobs:
			fn()
		case <-dq.stop:
			return
		}
	}
}

// submit enqueues fn and blocks until it has run, which is what gives
// request() its synchronous, FIFO-ordered public contract.
func (dq *deviceQueue) submit(fn func()) {
	done := make(chan struct{})
	dq.jobs <- func() {
		fn()
		close(done)
	}
	<-done
}

func (dq *deviceQueue) close() {
	close(dq.stop)
}

// outboundQueues owns one deviceQueue per destination IEEE address,
// created lazily on first use.
type outboundQueues struct {
	queues map[uint64]*deviceQueue
	mu     sync.Mutex
}

func newOutboundQueues() *outboundQueues {
	return &outboundQueues{queues: make(map[uint64]*deviceQueue)}
}

func (o *outboundQueues) forDevice(ieee uint64) *deviceQueue {
	o.mu.Lock()
	defer o.mu.Unlock()
	dq, ok := o.queues[ieee]
	if !ok {
		dq = newDeviceQueue()
		o.queues[ieee] = dq
	}
	return dq
}

func (o *outboundQueues) closeAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for ieee, dq := range o.queues {
		dq.close()
		delete(o.queues, ieee)
	}
}

func (o *outboundQueues) remove(ieee uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if dq, ok := o.queues[ieee]; ok {
		dq.close()
		delete(o.queues, ieee)
	}
}
