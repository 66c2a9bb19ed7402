package luasync

// A BufferedQueue is a [Queue] with a fixed-capacity FIFO buffer.
// Push suspends while the buffer is full; Pop suspends while it is empty.
//
// Once closed, Push always reports ErrClosed, but Pop keeps draining
// buffered values and only reports ErrClosed when the buffer is empty.
type BufferedQueue struct {
	buf    []Value
	cap    int
	wl     waitlist
	closed bool
}

// NewBufferedQueue creates a BufferedQueue holding up to capacity values.
// It panics if capacity is less than 1; use an [UnbufferedQueue] for
// rendezvous semantics.
func NewBufferedQueue(capacity int) *BufferedQueue {
	if capacity < 1 {
		panic("luasync(BufferedQueue): capacity is not greater than 0")
	}
	return &BufferedQueue{buf: make([]Value, 0, capacity), cap: capacity}
}

// Push implements [Queue].
func (q *BufferedQueue) Push(v Value, done func(error)) Operation {
	var w *waiter
	return func(t *Task) Result {
		if q.closed {
			if done != nil {
				done(ErrClosed)
			}
			return t.End()
		}

		if len(q.buf) >= q.cap {
			if w.spent() {
				w = new(waiter)
				q.wl.add(w)
			}
			return t.Await(w)
		}

		wasEmpty := len(q.buf) == 0
		q.buf = append(q.buf, v)
		if wasEmpty {
			// Blocked callers on an empty buffer are poppers; hand the
			// oldest one this value.
			q.wl.wakeOne()
		}
		if done != nil {
			done(nil)
		}
		return t.End()
	}
}

// Pop implements [Queue].
// The buffer is consulted before the closed flag, so values pushed before
// [BufferedQueue.Close] remain poppable.
func (q *BufferedQueue) Pop(done func(Value, error)) Operation {
	var w *waiter
	return func(t *Task) Result {
		if len(q.buf) > 0 {
			wasFull := len(q.buf) == q.cap
			v := q.buf[0]
			q.buf[0] = nil
			q.buf = q.buf[1:]
			if wasFull {
				// Blocked callers on a full buffer are pushers; one slot
				// just opened up.
				q.wl.wakeOne()
			}
			if done != nil {
				done(v, nil)
			}
			return t.End()
		}

		if q.closed {
			if done != nil {
				done(nil, ErrClosed)
			}
			return t.End()
		}

		if w.spent() {
			w = new(waiter)
			q.wl.add(w)
		}
		return t.Await(w)
	}
}

// Close implements [Queue].
func (q *BufferedQueue) Close() bool {
	wasClosed := q.closed
	q.closed = true
	q.wl.wakeAll()
	return wasClosed
}

// IsClosed implements [Queue].
func (q *BufferedQueue) IsClosed() bool {
	return q.closed
}
