package luasync

import (
	"path"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// An Executor is a [Task] spawner, and a Task runner.
//
// When a Task is spawned or resumed, it is added into an internal queue.
// The Run method then pops and runs each of them from the queue until
// the queue is emptied.
// It is done in a single-threaded manner.
// If one Task blocks, no other Tasks can run.
// The best practice is not to block.
//
// The internal queue is a priority queue.
// Tasks added in the queue are sorted by their paths.
// Tasks with the same path are sorted by their arrival order (FIFO).
// Popping the queue removes the first Task with the least path.
//
// Manually calling the Run method is usually not desired.
// One would instead use the Autorun method to set up an autorun function to
// calling the Run method automatically whenever a Task is spawned or resumed.
// The Executor never calls the autorun function twice at the same time.
type Executor struct {
	mu      sync.Mutex
	rq      runqueue[*Task]
	running bool
	autorun func()
	pool    sync.Pool

	idOnce sync.Once
	id     string

	nextID  atomic.Uint64
	onPanic atomic.Pointer[func(*PanicError)]

	spawned atomic.Uint64
	runs    atomic.Uint64
	panics  atomic.Uint64
}

// ID returns a stable identity string for e, for use in logs and metrics.
// It is generated on first use.
func (e *Executor) ID() string {
	e.idOnce.Do(func() { e.id = uuid.NewString() })
	return e.id
}

// Autorun sets up an autorun function to calling the Run method automatically
// whenever a [Task] is spawned or resumed.
//
// One must pass a function that calls the Run method.
//
// If f blocks, the Spawn method may block too.
// The best practice is not to block.
func (e *Executor) Autorun(f func()) {
	e.autorun = f
}

// Run pops and runs every [Task] in the queue until the queue is emptied.
//
// Run must not be called twice at the same time.
func (e *Executor) Run() {
	e.mu.Lock()
	e.running = true

	for !e.rq.Empty() {
		t := e.rq.Pop()
		e.runTask(t)
	}

	e.running = false
	e.mu.Unlock()
}

// Spawn creates a [Task] to work on op, using the result of path.Clean(p) as
// its path.
//
// The Task is added in a queue. To run it, either call the Run method, or
// call the Autorun method to set up an autorun function beforehand.
//
// Spawn is safe for concurrent use.
func (e *Executor) Spawn(p string, op Operation) {
	e.spawned.Add(1)
	t := e.newTask().init(e, path.Clean(p), op).recyclable()
	e.resumeTask(t)
}

// Go creates a root [Task] to work on op, under a "/go/<id>" path with
// a unique id, and returns a handle that can end it early.
//
// Unlike tasks created with Spawn, tasks created with Go are never pooled
// for recycling, so that the returned handle stays valid after the task
// ends.
//
// Go is safe for concurrent use.
func (e *Executor) Go(op Operation) *AbortHandle {
	e.spawned.Add(1)
	id := e.nextID.Add(1)
	p := path.Join("/go", strconv.FormatUint(id, 10))
	t := new(Task).init(e, p, op)
	e.resumeTask(t)
	return &AbortHandle{e: e, t: t, id: id}
}

func (e *Executor) resumeTask(t *Task) {
	var autorun func()

	e.mu.Lock()

	if !e.running && e.autorun != nil {
		e.running = true
		autorun = e.autorun
	}

	e.rq.Push(t)
	e.mu.Unlock()

	if autorun != nil {
		autorun()
	}
}

// An AbortHandle identifies a [Task] created with [Executor.Go] and can end
// it before it completes on its own.
type AbortHandle struct {
	e  *Executor
	t  *Task
	id uint64
}

// ID returns the task id assigned by [Executor.Go].
func (h *AbortHandle) ID() uint64 {
	return h.id
}

// Abort ends the task, unblocking nothing it waits on and running none of
// its remaining operations. Aborting an already ended task has no effect.
//
// The task is ended from the executor thread, so Abort is safe for
// concurrent use.
func (h *AbortHandle) Abort() {
	t := h.t
	h.e.Spawn(t.path, Do(func() {
		t.end()
	}))
}

// Stats is a snapshot of Executor counters, exposed for observability
// integrations.
type Stats struct {
	TasksSpawned uint64
	TaskRuns     uint64
	TaskPanics   uint64
	QueueLength  int
}

// Stats returns a snapshot of e's counters.
//
// Stats is safe for concurrent use.
func (e *Executor) Stats() Stats {
	e.mu.Lock()
	qlen := e.rq.Len()
	e.mu.Unlock()
	return Stats{
		TasksSpawned: e.spawned.Load(),
		TaskRuns:     e.runs.Load(),
		TaskPanics:   e.panics.Load(),
		QueueLength:  qlen,
	}
}

// OnPanic installs f as the hook that receives panics recovered from tasks.
// Passing nil restores the default hook, which logs with [log/slog].
//
// OnPanic is safe for concurrent use.
func (e *Executor) OnPanic(f func(*PanicError)) {
	if f == nil {
		e.onPanic.Store(nil)
		return
	}
	e.onPanic.Store(&f)
}

func (e *Executor) taskPanicked(t *Task, v any, stack []byte) {
	e.panics.Add(1)
	err := &PanicError{Path: t.path, value: v, stack: stack}
	if f := e.onPanic.Load(); f != nil {
		(*f)(err)
		return
	}
	logPanic(err)
}
