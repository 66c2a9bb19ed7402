package luasync

// A Mutex guards one script value with cooperative exclusive access.
//
// The lock only serializes the window between matched Lock and Unlock
// calls: the guarded value stays reachable through [Mutex.Value] at all
// times. This is acceptable because only one task ever executes script
// code at a time; the lock is advisory, not enforced.
//
// A Mutex must not be shared by more than one [Executor].
type Mutex struct {
	sem   *Semaphore
	held  bool
	value Value
}

// NewMutex creates a Mutex guarding v.
func NewMutex(v Value) *Mutex {
	return &Mutex{sem: NewSemaphore(1), value: v}
}

// Lock returns an [Operation] that suspends until the mutex is acquired,
// then calls done (which may be nil) with the guarded value and completes.
// Contending tasks acquire the mutex in FIFO order.
func (m *Mutex) Lock(done func(Value)) Operation {
	return m.sem.Acquire(1).Then(func(t *Task) Result {
		m.held = true
		if done != nil {
			done(m.value)
		}
		return t.End()
	})
}

// Unlock releases the mutex. Unlocking a mutex that is not held is a no-op,
// so calling Unlock twice is harmless.
func (m *Mutex) Unlock() {
	if !m.held {
		return
	}
	m.held = false
	m.sem.Release(1)
}

// Value returns the guarded value. It is reachable whether or not the
// mutex is held.
func (m *Mutex) Value() Value {
	return m.value
}
