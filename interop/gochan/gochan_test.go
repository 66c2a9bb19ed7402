package gochan_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/negrel/luasync"
	"github.com/negrel/luasync/interop/gochan"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newExecutor() *luasync.Executor {
	e := new(luasync.Executor)
	e.Autorun(func() { go e.Run() })
	return e
}

func TestPipeRoundTrip(t *testing.T) {
	e := newExecutor()

	in := make(chan luasync.Value)
	out := make(chan luasync.Value)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []luasync.Value
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(in)
		for i := 0; i < 10; i++ {
			select {
			case in <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	g.Go(func() error {
		return gochan.Pipe(ctx, e, 3, in, out)
	})
	g.Go(func() error {
		for v := range out {
			got = append(got, v)
		}
		return nil
	})

	require.NoError(t, g.Wait())
	want := make([]luasync.Value, 10)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, got)
}

func TestFeedClosesScriptChannel(t *testing.T) {
	e := newExecutor()
	s, r := luasync.NewChannel(e, 1)

	in := make(chan luasync.Value)
	close(in)
	require.NoError(t, gochan.Feed(context.Background(), e, s, in))

	closed := make(chan bool, 1)
	e.Spawn("/probe", r.Recv(func(_ luasync.Value, ok bool) { closed <- !ok }))
	select {
	case c := <-closed:
		assert.True(t, c, "script channel left open after in closed")
	case <-time.After(time.Second):
		t.Fatal("probe receive never resolved")
	}
}

func TestFeedReportsClosedScriptChannel(t *testing.T) {
	e := newExecutor()
	s, _ := luasync.NewChannel(e, 1)
	s.Close()

	in := make(chan luasync.Value, 1)
	in <- "v"
	err := gochan.Feed(context.Background(), e, s, in)
	assert.ErrorIs(t, err, luasync.ErrClosed)
}

func TestFeedContextCancelled(t *testing.T) {
	e := newExecutor()
	s, _ := luasync.NewChannel(e, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := gochan.Feed(ctx, e, s, make(chan luasync.Value))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDrainClosedScriptChannel(t *testing.T) {
	e := newExecutor()
	s, r := luasync.NewChannel(e, 1)
	s.Close()

	out := make(chan luasync.Value, 1)
	require.NoError(t, gochan.Drain(context.Background(), e, r, out))

	_, open := <-out
	assert.False(t, open, "out left open after the script channel drained")
}
