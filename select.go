package luasync

import "math/rand"

// A SelectCase pairs a channel to receive from with the callback to run if
// that case fires. The callback receives the value only; when the case
// fires because its channel closed, the callback runs with a nil value.
type SelectCase struct {
	Recv     *Receiver
	Callback func(Value)
}

// Select returns an [Operation] that multiplexes the given receive cases,
// resolving with the first one that becomes ready. At most one case fires
// per Select.
//
// Each poll scans the cases starting at a uniformly random offset, so that
// over repeated calls no ready case is perpetually favored over another.
//
// If no case is ready and deflt is non-nil, Select yields once, giving
// concurrently runnable tasks a chance to produce a value, and then runs
// deflt; the calling task never blocks. If deflt is nil, Select suspends
// until one of the channels wakes the task.
func Select(cases []SelectCase, deflt func()) Operation {
	type outcome struct {
		fired bool
		val   Value
		ok    bool
	}

	n := len(cases)
	outs := make([]outcome, n)
	polls := make([]Operation, n)
	disabled := make([]bool, n)
	for i, c := range cases {
		out := &outs[i]
		polls[i] = c.Recv.c.q.Pop(func(v Value, err error) {
			*out = outcome{fired: true, val: v, ok: err == nil}
		})
	}

	yielded := false
	never := Never()

	return func(t *Task) Result {
		if n > 0 {
			start := rand.Intn(n)
			for k := 0; k < n; k++ {
				i := (start + k) % n
				if disabled[i] {
					continue
				}
				polls[i](t)
				if !outs[i].fired {
					continue // pending; its waiter is registered on t
				}
				disabled[i] = true
				if cb := cases[i].Callback; cb != nil {
					cb(outs[i].val)
				}
				return t.End()
			}
		}

		if deflt != nil {
			if yielded {
				deflt()
				return t.End()
			}
			yielded = true
			var sig Signal
			t.Watch(&sig)
			sig.Notify()
			return t.Await()
		}

		if n == 0 {
			return never(t)
		}
		return t.Await()
	}
}
