package luasync

import (
	"runtime"
	"sync/atomic"
)

// A Sender is the sending handle of a channel.
// Sender and [Receiver] are independent handles to the same queue; either
// side may close it, and how many handles exist says nothing about whether
// the channel is open.
//
// Handles compare by identity. Copying a Sender by value is not supported.
type Sender struct {
	c *chanref
}

// A Receiver is the receiving handle of a channel.
//
// Handles compare by identity. Copying a Receiver by value is not supported.
type Receiver struct {
	c *chanref
}

// chanref shares one queue between the two handles, counting them so the
// queue self-closes when the last one is collected.
type chanref struct {
	q       Queue
	e       *Executor
	handles atomic.Int32
}

// NewChannel creates a channel for script code and returns its two handles.
// A capacity of 0 makes the channel a rendezvous ([UnbufferedQueue]); a
// positive capacity makes it a bounded FIFO ([BufferedQueue]). A negative
// capacity panics.
//
// When both handles become unreachable, the queue is closed automatically
// (on the executor thread, via e), releasing any task still blocked on it.
func NewChannel(e *Executor, capacity int) (*Sender, *Receiver) {
	var q Queue
	switch {
	case capacity < 0:
		panic("luasync(Channel): negative capacity")
	case capacity == 0:
		q = NewUnbufferedQueue()
	default:
		q = NewBufferedQueue(capacity)
	}

	c := &chanref{q: q, e: e}
	c.handles.Store(2)

	s := &Sender{c: c}
	r := &Receiver{c: c}
	runtime.SetFinalizer(s, func(*Sender) { releaseHandle(c) })
	runtime.SetFinalizer(r, func(*Receiver) { releaseHandle(c) })
	return s, r
}

// releaseHandle runs on the cleanup goroutine; queue state must only be
// touched on the executor thread, so the close is routed through Spawn.
func releaseHandle(c *chanref) {
	if c.handles.Add(-1) > 0 {
		return
	}
	q := c.q
	c.e.Spawn("/", Do(func() {
		q.Close()
	}))
}

// Send returns an [Operation] that sends v on the channel.
// The outcome is delivered to done: nil on success, [ErrClosed] if the
// channel is closed. done may be nil.
func (s *Sender) Send(v Value, done func(error)) Operation {
	return s.c.q.Push(v, done)
}

// Close closes the channel and reports whether it was already closed.
func (s *Sender) Close() bool {
	return s.c.q.Close()
}

// IsClosed reports whether the channel has been closed.
func (s *Sender) IsClosed() bool {
	return s.c.q.IsClosed()
}

// Recv returns an [Operation] that receives the next value from the
// channel. done receives the value together with an ok flag; ok is false
// when the channel is permanently drained, letting callers tell "closed"
// from "received a real value" without an error. done may be nil.
func (r *Receiver) Recv(done func(Value, bool)) Operation {
	return r.c.q.Pop(func(v Value, err error) {
		if done != nil {
			done(v, err == nil)
		}
	})
}

// Close closes the channel and reports whether it was already closed.
func (r *Receiver) Close() bool {
	return r.c.q.Close()
}

// IsClosed reports whether the channel has been closed.
func (r *Receiver) IsClosed() bool {
	return r.c.q.IsClosed()
}
