package luasync

// A WaitGroup is a [Signal] with a counter: a completion barrier for a set
// of script tasks.
//
// Calling the Add or Done method of a WaitGroup, in an [Operation] function,
// updates the counter and, when the counter becomes zero, resumes any
// [Task] that is waiting on the WaitGroup. Every waiter is woken exactly
// once per zero transition.
//
// A WaitGroup must not be shared by more than one [Executor].
type WaitGroup struct {
	Signal
	n int
}

// Add adds delta, which may be negative, to the [WaitGroup] counter.
// If the [WaitGroup] counter becomes zero, Add resumes any [Task] that
// is waiting on wg.
// If the [WaitGroup] counter goes negative, Add panics; that is a
// programming bug, not a recoverable condition.
func (wg *WaitGroup) Add(delta int) {
	if wg.n >= 0 {
		wg.n += delta
	}
	if wg.n < 0 {
		panic("luasync(WaitGroup): negative counter")
	}
	if wg.n == 0 && delta != 0 {
		wg.Notify()
	}
}

// Done decrements the [WaitGroup] counter by one.
func (wg *WaitGroup) Done() {
	wg.Add(-1)
}

// Count returns the current counter value.
func (wg *WaitGroup) Count() int {
	return wg.n
}

// Wait returns an [Operation] that suspends until the [WaitGroup] counter
// is zero, then calls done (which may be nil) and completes.
// It completes immediately if the counter is already zero.
func (wg *WaitGroup) Wait(done func()) Operation {
	return func(t *Task) Result {
		if wg.n != 0 {
			return t.Await(wg)
		}
		if done != nil {
			done()
		}
		return t.End()
	}
}
