package luasync

import "time"

// Sleep returns an [Operation] that suspends the running task for at
// least d. There is no built-in timeout primitive; racing a Sleep task
// against a receive with [Select] composes one.
//
// The timer fires on its own goroutine and re-enters the executor through
// [Executor.Spawn], so an autorun function must be set up (or Run called)
// for the task to resume.
func Sleep(d time.Duration) Operation {
	var sig *Signal
	fired := false
	return func(t *Task) Result {
		if sig == nil {
			sig = new(Signal)
			s := sig
			e := t.Executor()
			p := t.Path()
			time.AfterFunc(d, func() {
				e.Spawn(p, Do(func() {
					fired = true
					s.Notify()
				}))
			})
		}
		if !fired {
			return t.Await(sig)
		}
		return t.End()
	}
}
