package ws

import "sync"

// outbox is a connection's private unbounded ordered delivery queue. Push
// never blocks and becomes a no-op once the outbox is closed; Pop blocks
// until a message is available, draining any queued messages before
// reporting closure.
type outbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  [][]byte
	closed bool
}

func newOutbox() *outbox {
	o := &outbox{}
	o.cond = sync.NewCond(&o.mu)
	return o
}

// Push enqueues a message for delivery
func (o *outbox) Push(msg []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.queue = append(o.queue, msg)
	o.cond.Signal()
}

// Pop dequeues the next message in order, blocking while the queue is
// empty. Returns false once the outbox is closed and drained.
func (o *outbox) Pop() ([]byte, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for len(o.queue) == 0 && !o.closed {
		o.cond.Wait()
	}
	if len(o.queue) == 0 {
		return nil, false
	}
	msg := o.queue[0]
	o.queue = o.queue[1:]
	return msg, true
}

// Close marks the outbox closed and wakes any blocked Pop
func (o *outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.cond.Broadcast()
}
