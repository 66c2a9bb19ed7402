package luasync_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negrel/luasync"
)

func TestUnbufferedPushWaitsForPop(t *testing.T) {
	var e luasync.Executor
	q := luasync.NewUnbufferedQueue()

	pushed := false
	e.Spawn("/push", q.Push("v", func(err error) {
		require.NoError(t, err)
		pushed = true
	}))
	e.Run()
	require.False(t, pushed, "push completed without a pop")

	var got luasync.Value
	e.Spawn("/pop", q.Pop(func(v luasync.Value, err error) {
		require.NoError(t, err)
		got = v
	}))
	e.Run()

	assert.True(t, pushed)
	assert.Equal(t, "v", got)
}

func TestUnbufferedPopWaitsForPush(t *testing.T) {
	var e luasync.Executor
	q := luasync.NewUnbufferedQueue()

	var got luasync.Value
	gotten := false
	e.Spawn("/pop", q.Pop(func(v luasync.Value, err error) {
		require.NoError(t, err)
		got, gotten = v, true
	}))
	e.Run()
	require.False(t, gotten)

	pushed := false
	e.Spawn("/push", q.Push("v", func(err error) {
		require.NoError(t, err)
		pushed = true
	}))
	e.Run()

	assert.True(t, gotten)
	assert.True(t, pushed)
	assert.Equal(t, "v", got)
}

func TestUnbufferedPushersCompleteInArrivalOrder(t *testing.T) {
	var e luasync.Executor
	q := luasync.NewUnbufferedQueue()

	for i := 1; i <= 3; i++ {
		e.Spawn("/push", q.Push(i, nil))
	}
	e.Run()

	var popped []luasync.Value
	for i := 0; i < 3; i++ {
		e.Spawn("/pop", q.Pop(func(v luasync.Value, err error) {
			require.NoError(t, err)
			popped = append(popped, v)
		}))
		e.Run()
	}

	assert.Equal(t, []luasync.Value{1, 2, 3}, popped)
}

func TestUnbufferedNoDrainAfterClose(t *testing.T) {
	var e luasync.Executor
	q := luasync.NewUnbufferedQueue()

	var pushErr error
	pushDone := false
	e.Spawn("/push", q.Push("v", func(err error) { pushErr, pushDone = err, true }))
	e.Run()
	require.False(t, pushDone)

	q.Close()

	var popErr error
	e.Spawn("/pop", q.Pop(func(_ luasync.Value, err error) { popErr = err }))
	e.Run()

	// The in-flight value is discarded, not delivered.
	assert.ErrorIs(t, popErr, luasync.ErrClosed)
	assert.True(t, pushDone)
	assert.ErrorIs(t, pushErr, luasync.ErrClosed)
}

func TestUnbufferedCloseWakesAll(t *testing.T) {
	var e luasync.Executor
	q := luasync.NewUnbufferedQueue()

	var errs []error
	// One pusher occupies the slot, one queues behind it, two poppers block
	// on a second queue so pushes cannot satisfy them.
	e.Spawn("/push", q.Push("a", func(err error) { errs = append(errs, err) }))
	e.Spawn("/push", q.Push("b", func(err error) { errs = append(errs, err) }))
	q2 := luasync.NewUnbufferedQueue()
	e.Spawn("/pop", q2.Pop(func(_ luasync.Value, err error) { errs = append(errs, err) }))
	e.Spawn("/pop", q2.Pop(func(_ luasync.Value, err error) { errs = append(errs, err) }))
	e.Run()
	require.Empty(t, errs)

	e.Spawn("/close", luasync.Do(func() {
		q.Close()
		q2.Close()
	}))
	e.Run()

	require.Len(t, errs, 4)
	for _, err := range errs {
		assert.ErrorIs(t, err, luasync.ErrClosed)
	}
}

func TestUnbufferedPushAndPopAfterClose(t *testing.T) {
	var e luasync.Executor
	q := luasync.NewUnbufferedQueue()
	require.False(t, q.Close())
	require.True(t, q.Close())

	var pushErr, popErr error
	e.Spawn("/push", q.Push("v", func(err error) { pushErr = err }))
	e.Spawn("/pop", q.Pop(func(_ luasync.Value, err error) { popErr = err }))
	e.Run()

	assert.ErrorIs(t, pushErr, luasync.ErrClosed)
	assert.ErrorIs(t, popErr, luasync.ErrClosed)
}
