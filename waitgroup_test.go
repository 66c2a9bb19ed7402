package luasync_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negrel/luasync"
)

func TestWaitGroupGatesOnCounter(t *testing.T) {
	var e luasync.Executor
	var wg luasync.WaitGroup

	wg.Add(2)

	released := false
	e.Spawn("/wait", wg.Wait(func() { released = true }))
	e.Run()
	require.False(t, released)

	e.Spawn("/work", luasync.Do(wg.Done))
	e.Run()
	require.False(t, released, "released before the counter reached zero")

	e.Spawn("/work", luasync.Do(wg.Done))
	e.Run()
	assert.True(t, released)
	assert.Equal(t, 0, wg.Count())
}

func TestWaitGroupWaitOnZeroCompletesImmediately(t *testing.T) {
	var e luasync.Executor
	var wg luasync.WaitGroup

	released := false
	e.Spawn("/wait", wg.Wait(func() { released = true }))
	e.Run()
	assert.True(t, released)
}

func TestWaitGroupReleasesAllWaiters(t *testing.T) {
	var e luasync.Executor
	var wg luasync.WaitGroup

	wg.Add(1)
	released := 0
	for i := 0; i < 3; i++ {
		e.Spawn("/wait", wg.Wait(func() { released++ }))
	}
	e.Run()
	require.Equal(t, 0, released)

	e.Spawn("/work", luasync.Do(wg.Done))
	e.Run()
	assert.Equal(t, 3, released)
}

func TestWaitGroupReuse(t *testing.T) {
	var e luasync.Executor
	var wg luasync.WaitGroup

	for i := 0; i < 2; i++ {
		wg.Add(1)
		released := false
		e.Spawn("/wait", wg.Wait(func() { released = true }))
		e.Run()
		require.False(t, released)

		e.Spawn("/work", luasync.Do(wg.Done))
		e.Run()
		require.True(t, released)
	}
}

func TestWaitGroupNegativeCounterPanics(t *testing.T) {
	var wg luasync.WaitGroup
	assert.Panics(t, wg.Done)

	var wg2 luasync.WaitGroup
	wg2.Add(1)
	wg2.Done()
	assert.Panics(t, wg2.Done)
}
