// Package coord provides the single coordinating loop the survey runs on.
//
// Hosts that own interactive resources (workspace trees, output panes)
// require every interaction to happen from one dedicated execution context.
// Loop models that context: one goroutine owns the resources, Do transfers
// work onto it, and a context token makes the transfer idempotent, so code
// that is already on the loop runs inline instead of deadlocking.
package coord

import (
	"context"
	"errors"
	"sync"
)

// ErrLoopClosed is returned by Do once the loop has been closed.
var ErrLoopClosed = errors.New("coordinating loop closed")

type loopKey struct{}

// Loop is a single-goroutine execution context. All work submitted through
// Do runs serialized on the loop goroutine, in submission order.
type Loop struct {
	tasks chan task
	done  chan struct{}
	once  sync.Once
}

type task struct {
	ctx context.Context
	fn  func(context.Context) error
	res chan error
}

// New starts a loop. The caller owns it and must Close it when done.
func New() *Loop {
	l := &Loop{
		tasks: make(chan task),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	for {
		select {
		case t := <-l.tasks:
			if err := t.ctx.Err(); err != nil {
				t.res <- err
				continue
			}
			t.res <- t.fn(context.WithValue(t.ctx, loopKey{}, l))
		case <-l.done:
			return
		}
	}
}

// Do runs fn on the loop goroutine and waits for its result. When ctx
// already carries this loop's token the transfer is a no-op and fn runs
// inline. The context handed to fn always carries the token, so nested Do
// calls never re-queue.
//
// fn must use the context it receives; calling Do from loop-owned code with
// a fresh context would queue behind the running task and deadlock.
func (l *Loop) Do(ctx context.Context, fn func(context.Context) error) error {
	if FromContext(ctx) == l {
		return fn(ctx)
	}

	t := task{ctx: ctx, fn: fn, res: make(chan error, 1)}
	select {
	case l.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopClosed
	}

	select {
	case err := <-t.res:
		return err
	case <-l.done:
		// The loop may have finished fn in the same instant it was closed.
		select {
		case err := <-t.res:
			return err
		default:
			return ErrLoopClosed
		}
	}
}

// Close stops the loop goroutine. Work already running finishes; queued
// work that has not started fails with ErrLoopClosed. Close is idempotent.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.done) })
}

// FromContext returns the loop ctx is executing on, or nil.
func FromContext(ctx context.Context) *Loop {
	l, _ := ctx.Value(loopKey{}).(*Loop)
	return l
}

// OnLoop reports whether ctx is executing on a coordinating loop. Adapters
// that require loop affinity use this to assert their call discipline.
func OnLoop(ctx context.Context) bool {
	return FromContext(ctx) != nil
}
