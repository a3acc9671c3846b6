// Package loop runs a task repeatedly, sleeping between iterations.
//
// It drives polling in dapi: job status monitoring and waiting for SSH tunnels.
package loop

import (
	"context"
	"fmt"
	"time"
)

// Next tells Start what to do after an iteration.
//
// Zero value equals Continue(0).
type Next struct {
	err      error
	quit     bool
	interval time.Duration
}

func (n Next) String() string {
	switch {
	case n.err != nil:
		return fmt.Sprintf("break (error: %v)", n.err)
	case n.quit:
		return "break"
	default:
		return fmt.Sprintf("continue after %s", n.interval)
	}
}

// Continue runs the next iteration after interval.
func Continue(interval time.Duration) Next {
	return Next{interval: interval}
}

// Break stops the loop. Start returns err, which may be nil.
func Break(err error) Next {
	return Next{quit: true, err: err}
}

// Task takes the value of the last iteration, and returns the new one.
type Task[T any] func(context.Context, T) (T, Next)

// Start calls task with init, and then with the value each iteration returns,
// until the task breaks or ctx is done.
//
// The last value is returned with the error, if any: the one given to Break, or ctx.Err().
func Start[T any](ctx context.Context, init T, task Task[T], options ...Option) (T, error) {
	if err := ctx.Err(); err != nil {
		return init, err
	}

	iter := &iteration{}
	for _, opt := range options {
		opt(iter)
	}

	value := init
	for {
		var next Next
		value, next = once(ctx, iter.timeout, value, task)
		if next.quit || next.err != nil {
			return value, next.err
		}

		timer := time.NewTimer(next.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return value, ctx.Err()
		case <-timer.C:
		}
	}
}

type iteration struct {
	timeout time.Duration
}

// once runs an iteration. Non-positive timeout means no deadline.
func once[T any](ctx context.Context, timeout time.Duration, value T, task Task[T]) (T, Next) {
	if timeout <= 0 {
		return task(ctx, value)
	}
	ictx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return task(ictx, value)
}

type Option func(*iteration)

// WithTimeout passes tasks a context with deadline d after each iteration starts.
func WithTimeout(d time.Duration) Option {
	return func(it *iteration) {
		it.timeout = d
	}
}
