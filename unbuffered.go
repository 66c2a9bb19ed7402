package luasync

// An UnbufferedQueue is a rendezvous [Queue]: it holds no buffer, and a
// Push never completes until some Pop has actually consumed the value.
// This is a genuine synchronous hand-off, not a capacity-1 buffer.
type UnbufferedQueue struct {
	slot   *handoff
	recvq  waitlist // blocked poppers, oldest first
	pushq  waitlist // pushers waiting for the slot to free up, oldest first
	closed bool
}

// A handoff is the single in-flight value, together with the wake handle of
// the pusher that placed it. It exists only between a push placing it and
// a pop claiming it.
type handoff struct {
	v      Value
	pusher *waiter
}

// NewUnbufferedQueue creates an empty rendezvous queue.
func NewUnbufferedQueue() *UnbufferedQueue {
	return new(UnbufferedQueue)
}

// Push implements [Queue]. The Operation completes only after a Pop has
// claimed v.
//
// Pushers contending for the slot queue up in FIFO order; each claiming Pop
// lets the oldest pending pusher occupy the freed slot.
func (q *UnbufferedQueue) Push(v Value, done func(error)) Operation {
	var self *waiter
	placed := false
	return func(t *Task) Result {
		if q.closed {
			if done != nil {
				done(ErrClosed)
			}
			return t.End()
		}

		if placed && self.woken {
			// A pop claimed our value.
			if done != nil {
				done(nil)
			}
			return t.End()
		}

		if q.slot != nil {
			if self.spent() {
				self = new(waiter)
				q.pushq.add(self)
			}
			return t.Await(self)
		}

		self = new(waiter)
		q.slot = &handoff{v: v, pusher: self}
		placed = true
		q.recvq.wakeOne()
		return t.Await(self)
	}
}

// Pop implements [Queue]. Unlike [BufferedQueue.Pop], there is nothing to
// drain: once the queue is closed, Pop reports ErrClosed immediately.
func (q *UnbufferedQueue) Pop(done func(Value, error)) Operation {
	var w *waiter
	return func(t *Task) Result {
		if q.closed {
			if done != nil {
				done(nil, ErrClosed)
			}
			return t.End()
		}

		if s := q.slot; s != nil {
			q.slot = nil
			s.pusher.wake()
			// The slot is free; let the oldest pending pusher occupy it.
			q.pushq.wakeOne()
			if done != nil {
				done(s.v, nil)
			}
			return t.End()
		}

		if w.spent() {
			w = new(waiter)
			q.recvq.add(w)
		}
		return t.Await(w)
	}
}

// Close implements [Queue]. Any in-flight value is discarded and its pusher
// woken, so every pending operation observes ErrClosed on its next poll.
func (q *UnbufferedQueue) Close() bool {
	wasClosed := q.closed
	q.closed = true
	q.recvq.wakeAll()
	q.pushq.wakeAll()
	if s := q.slot; s != nil {
		q.slot = nil
		s.pusher.wake()
	}
	return wasClosed
}

// IsClosed implements [Queue].
func (q *UnbufferedQueue) IsClosed() bool {
	return q.closed
}
