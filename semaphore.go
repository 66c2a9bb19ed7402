package luasync

import "slices"

// Semaphore provides a way to bound cooperative access to a resource.
// The callers can request access with a given weight.
//
// Note that this Semaphore type does not provide backpressure for spawning
// a lot of tasks. One should instead look for a sync implementation.
//
// A Semaphore must not be shared by more than one [Executor].
type Semaphore struct {
	size    int64
	cur     int64
	waiters []*semWaiter
}

// NewSemaphore creates a new weighted semaphore with the given maximum
// combined weight.
func NewSemaphore(n int64) *Semaphore {
	return &Semaphore{size: n}
}

// Acquire returns an [Operation] that suspends until a weight of n is
// acquired from the semaphore, and then completes.
func (s *Semaphore) Acquire(n int64) Operation {
	if n < 0 {
		panic("luasync(Semaphore): negative weight")
	}
	never := Never()
	return func(t *Task) Result {
		if s.size-s.cur < n {
			if n > s.size {
				return never(t) // Impossible to succeed.
			}
			w := &semWaiter{s: s, n: n}
			s.waiters = append(s.waiters, w)
			t.Defer(w.cleanup)
			t.Watch(w)
			return t.Yield(Nop())
		}
		s.cur += n
		return t.End()
	}
}

// TryAcquire acquires a weight of n from the semaphore without suspending,
// and reports whether it succeeded. It fails whenever there are waiters,
// preserving their FIFO order.
func (s *Semaphore) TryAcquire(n int64) bool {
	if n < 0 {
		panic("luasync(Semaphore): negative weight")
	}
	if len(s.waiters) != 0 || s.size-s.cur < n {
		return false
	}
	s.cur += n
	return true
}

// Release releases the semaphore with a weight of n.
//
// One should only call this method in an [Operation] function.
func (s *Semaphore) Release(n int64) {
	if n < 0 {
		panic("luasync(Semaphore): negative weight")
	}
	if s.cur >= 0 {
		s.cur -= n
	}
	if s.cur < 0 {
		panic("luasync(Semaphore): released more than held")
	}
	s.notifyWaiters()
}

func (s *Semaphore) notifyWaiters() {
	i := 0
	for i < len(s.waiters) {
		w := s.waiters[i]
		if s.size-s.cur < w.n {
			break
		}
		s.cur += w.n
		w.n = 0
		w.Notify()
		i++
	}
	s.waiters = slices.Delete(s.waiters, 0, i)
}

type semWaiter struct {
	Signal
	s *Semaphore
	n int64
}

// cleanup runs when the waiting task resumes or ends. A waiter whose grant
// never arrived is abandoning the queue and must give up its place.
func (w *semWaiter) cleanup() {
	if w.n != 0 {
		w.s.removeWaiter(w)
	}
	w.s = nil
}

func (s *Semaphore) removeWaiter(w *semWaiter) {
	if i := slices.Index(s.waiters, w); i != -1 {
		s.waiters = slices.Delete(s.waiters, i, i+1)
	}
}
