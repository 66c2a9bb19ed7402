package luasync_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negrel/luasync"
)

func TestSemaphoreAcquireRelease(t *testing.T) {
	var e luasync.Executor
	s := luasync.NewSemaphore(2)

	acquired := 0
	acq := func(n int64) {
		e.Spawn("/acq", s.Acquire(n).Then(luasync.Do(func() { acquired++ })))
	}

	acq(1)
	acq(1)
	acq(1)
	e.Run()
	require.Equal(t, 2, acquired)

	e.Spawn("/rel", luasync.Do(func() { s.Release(1) }))
	e.Run()
	assert.Equal(t, 3, acquired)
}

func TestSemaphoreGrantsInFIFOOrder(t *testing.T) {
	var e luasync.Executor
	s := luasync.NewSemaphore(2)

	e.Spawn("/hold", s.Acquire(2))
	e.Run()

	var order []string
	e.Spawn("/wait", s.Acquire(1).Then(luasync.Do(func() { order = append(order, "first") })))
	e.Spawn("/wait", s.Acquire(1).Then(luasync.Do(func() { order = append(order, "second") })))
	e.Run()
	require.Empty(t, order)

	e.Spawn("/rel", luasync.Do(func() { s.Release(2) }))
	e.Run()
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestSemaphoreTryAcquire(t *testing.T) {
	var e luasync.Executor
	s := luasync.NewSemaphore(2)

	assert.True(t, s.TryAcquire(2))
	assert.False(t, s.TryAcquire(1))

	// TryAcquire also fails while waiters queue, even if weight would fit.
	e.Spawn("/rel", luasync.Do(func() { s.Release(1) }))
	e.Run()
	e.Spawn("/wait", s.Acquire(2))
	e.Run()
	assert.False(t, s.TryAcquire(1))
}

func TestSemaphoreOverReleasePanics(t *testing.T) {
	s := luasync.NewSemaphore(1)
	assert.Panics(t, func() { s.Release(1) })
}

func TestSemaphoreOversizedAcquireNeverCompletes(t *testing.T) {
	var e luasync.Executor
	s := luasync.NewSemaphore(1)

	acquired := false
	e.Spawn("/acq", s.Acquire(2).Then(luasync.Do(func() { acquired = true })))
	e.Run()
	assert.False(t, acquired)

	e.Spawn("/rel", luasync.Do(func() {
		if s.TryAcquire(1) {
			s.Release(1)
		}
	}))
	e.Run()
	assert.False(t, acquired)
}

func TestSemaphoreAbortedWaiterGivesUpItsPlace(t *testing.T) {
	var e luasync.Executor
	s := luasync.NewSemaphore(1)

	e.Spawn("/hold", s.Acquire(1))
	e.Run()

	aborted := false
	h := e.Go(s.Acquire(1).Then(luasync.Do(func() { aborted = true })))
	e.Run()

	granted := false
	e.Spawn("/wait", s.Acquire(1).Then(luasync.Do(func() { granted = true })))
	e.Run()
	require.False(t, granted)

	h.Abort()
	e.Run()

	e.Spawn("/rel", luasync.Do(func() { s.Release(1) }))
	e.Run()
	assert.True(t, granted, "grant skipped the remaining waiter")
	assert.False(t, aborted)
}
