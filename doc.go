// Package luasync gives an embedded, dynamically-typed scripting language
// Go-style concurrency: lightweight cooperative tasks, channels, a fair
// multi-way select, and simple synchronization primitives.
//
// Everything runs on a single-threaded [Executor]; "concurrency" here means
// task interleaving at explicit suspension points, never true parallelism.
// Because of that, no internal locking is needed on channel or wait-group
// state, and none is used. The only entry points that are safe for
// concurrent use are [Executor.Spawn], [Executor.Go] and [AbortHandle.Abort];
// everything else must be called from an [Operation] running on the executor.
//
// # Tasks
//
// A [Task] is this package's goroutine: a stackless state machine driven by
// re-running its current [Operation]. Blocking is expressed by returning
// [Task.Await] with one or more [Event] values to watch; a notification
// re-enqueues the task and the executor polls it again. Operations compose
// with [Chain], [Operation.Then] and [Do], so sequential script steps read
// like sequential code.
//
// # Channels
//
// [NewChannel] creates a channel and returns a [Sender] and a [Receiver],
// two independent handles to one queue. A capacity of zero selects a
// rendezvous queue, where a send completes only once a receive has taken
// the value; a positive capacity selects a bounded FIFO buffer. Closing is
// idempotent, wakes every blocked task, and still lets buffered values
// drain. When the last handle is garbage-collected the queue closes itself,
// releasing any task stuck on it.
//
// Send and receive outcomes are plain values, never exceptions: a send on a
// closed channel reports [ErrClosed], and a receive reports ok=false once
// the channel is permanently drained.
//
// # Select
//
// [Select] waits on several receivers at once and fires exactly one case.
// Scanning starts at a random offset so repeated selects spread fairly over
// ready cases. With a default callback, Select never blocks: it yields once
// so runnable peers can produce a value, then takes the default path.
//
// # WaitGroup, Mutex, Semaphore
//
// [WaitGroup] is a counter barrier: Wait suspends until the counter drops
// to zero, and one extra Done is a fatal programming error. [Mutex] gives
// cooperative exclusive access to one guarded value, with an idempotent
// Unlock. Both are built on the same [Signal] notification machinery as
// channels, as is the weighted [Semaphore] that backs Mutex.
//
// # Panics
//
// A panic inside an Operation terminates that task only. The executor
// recovers it, together with a stack trace, and hands it to the hook set
// with [Executor.OnPanic]; the default hook logs through log/slog.
package luasync
