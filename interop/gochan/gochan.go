// Package gochan bridges native Go channels and luasync script channels.
//
// The host side of an embedding often produces or consumes data on real
// goroutines, while script code only speaks luasync channels. Feed and
// Drain pump values across that boundary; every touch of channel state
// happens on the executor thread, through [luasync.Executor.Spawn].
//
// The executor must have an autorun function set up (see
// [luasync.Executor.Autorun]); otherwise spawned pump tasks never run and
// Feed and Drain block forever.
package gochan

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/negrel/luasync"
)

// Feed pumps values from in into the script channel s, one at a time,
// preserving the script channel's backpressure: the next value is not read
// from in until the previous send completed.
//
// Feed runs in the calling goroutine until in is closed (the script channel
// is then closed too, and Feed returns nil), the script channel is closed
// by someone else (Feed returns [luasync.ErrClosed]), or ctx is done.
func Feed(ctx context.Context, e *luasync.Executor, s *luasync.Sender, in <-chan luasync.Value) error {
	for {
		var v luasync.Value
		var ok bool
		select {
		case v, ok = <-in:
		case <-ctx.Done():
			return ctx.Err()
		}
		if !ok {
			e.Spawn("/gochan/feed", luasync.Do(func() { s.Close() }))
			return nil
		}

		sent := make(chan error, 1)
		e.Spawn("/gochan/feed", s.Send(v, func(err error) { sent <- err }))
		select {
		case err := <-sent:
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

type recvResult struct {
	v  luasync.Value
	ok bool
}

// Drain pumps values from the script channel r into out, one at a time.
//
// Drain runs in the calling goroutine until the script channel is
// permanently drained (out is then closed, and Drain returns nil) or ctx
// is done.
func Drain(ctx context.Context, e *luasync.Executor, r *luasync.Receiver, out chan<- luasync.Value) error {
	for {
		got := make(chan recvResult, 1)
		e.Spawn("/gochan/drain", r.Recv(func(v luasync.Value, ok bool) { got <- recvResult{v, ok} }))

		var res recvResult
		select {
		case res = <-got:
		case <-ctx.Done():
			return ctx.Err()
		}
		if !res.ok {
			close(out)
			return nil
		}

		select {
		case out <- res.v:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Pipe routes values from in to out through a fresh script channel of the
// given capacity, running Feed and Drain concurrently. It returns once both
// pumps have stopped, with the first error encountered.
func Pipe(ctx context.Context, e *luasync.Executor, capacity int, in <-chan luasync.Value, out chan<- luasync.Value) error {
	s, r := luasync.NewChannel(e, capacity)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return Feed(ctx, e, s, in) })
	g.Go(func() error { return Drain(ctx, e, r, out) })
	return g.Wait()
}
