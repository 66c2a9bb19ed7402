package luasync

import "errors"

// Value is a message payload: the host language's dynamically-typed value.
// Queues and channels treat it as opaque.
type Value = any

// ErrClosed is reported by queue and channel operations once the queue has
// been closed. It is always returned, never panicked; callers are expected
// to branch on it.
var ErrClosed = errors.New("luasync: queue is closed")

// Queue is the common contract of the two channel buffer kinds.
//
// Push and Pop return suspendable Operations: the calling [Task] yields
// until the value is accepted or produced, or until the queue is closed.
// The outcome is delivered through the done continuation, which may be nil.
//
// A Queue must not be shared by more than one [Executor].
type Queue interface {
	// Push accepts v into the queue. The Operation completes once v has
	// been accepted, reporting ErrClosed instead if the queue is closed.
	Push(v Value, done func(error)) Operation

	// Pop removes the oldest value from the queue. The Operation completes
	// once a value is available, reporting ErrClosed instead if the queue
	// is closed and drained.
	Pop(done func(Value, error)) Operation

	// Close closes the queue, waking every blocked operation, and reports
	// whether the queue was already closed. Closing is idempotent.
	Close() bool

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// A waiter is a one-shot wake handle registered by a blocked queue
// operation. Waking one pops it from its waitlist; the blocked operation
// re-registers a fresh waiter if it is still unsatisfied when it re-polls.
type waiter struct {
	Signal
	woken bool
}

func (w *waiter) wake() {
	w.woken = true
	w.Notify()
}

// spent reports whether a fresh waiter must be registered: either none was
// registered yet, or the registered one has already been consumed by a wake.
func (w *waiter) spent() bool {
	return w == nil || w.woken
}

// A waitlist is a FIFO of wake handles for blocked callers.
type waitlist struct {
	s []*waiter
}

func (l *waitlist) empty() bool {
	return len(l.s) == 0
}

func (l *waitlist) add(w *waiter) {
	l.s = append(l.s, w)
}

// wakeOne wakes the oldest waiter some task is still watching, if any.
// A waiter with no listeners belongs to a caller that stopped waiting
// (a Select that fired on another case, an aborted task); waking it would
// swallow the wake, so such waiters are discarded instead.
func (l *waitlist) wakeOne() bool {
	for len(l.s) > 0 {
		w := l.s[0]
		l.s[0] = nil
		l.s = l.s[1:]
		if len(w.listeners) == 0 {
			continue
		}
		w.wake()
		return true
	}
	return false
}

// wakeAll wakes every waiter, oldest first.
func (l *waitlist) wakeAll() {
	for l.wakeOne() {
	}
}
