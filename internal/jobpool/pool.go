// Package jobpool implements the Job Pool: a bounded concurrency gate for
// external command executions. Per the source re-architecture note, this is
// a plain bounded semaphore, not a port of the original's next-tick
// reentrancy idiom.
package jobpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool bounds concurrent work to N submissions at a time. The rest queue in
// FIFO order behind the semaphore.
type Pool struct {
	sem *semaphore.Weighted
}

// New creates a Pool admitting at most n concurrent submissions.
func New(n int) *Pool {
	if n < 1 {
		n = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(n))}
}

// DefaultSize is N = host_cpu_count + 1.
func DefaultSize() int {
	return runtime.NumCPU() + 1
}

// Future is the result handle returned by Submit.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Wait blocks until the submitted function has run (or the pool failed to
// admit it, e.g. because ctx was canceled while queued).
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.val, f.err
}

// Submit enqueues f for execution once a slot is free. f never runs
// synchronously with Submit: execution always happens on a separate
// goroutine, deferred to at least the next scheduling opportunity, so
// submission is always cooperative even with no true parallelism available.
func Submit[T any](ctx context.Context, p *Pool, f func(ctx context.Context) (T, error)) *Future[T] {
	fut := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(fut.done)
		if err := p.sem.Acquire(ctx, 1); err != nil {
			fut.err = err
			return
		}
		defer p.sem.Release(1)
		fut.val, fut.err = f(ctx)
	}()
	return fut
}
