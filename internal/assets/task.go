package assets

import (
	"context"
	"sync/atomic"
)

// Task runs a load on its own goroutine. The frame loop polls it; progress
// reads never block.
type Task[T any] struct {
	loaded atomic.Int64
	total  atomic.Int64
	done   chan struct{}

	result T
	err    error
}

// Run starts fn and returns immediately.
func Run[T any](ctx context.Context, fn func(ctx context.Context, report ProgressFunc) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.result, t.err = fn(ctx, t.report)
	}()
	return t
}

func (t *Task[T]) report(loaded, total int64) {
	t.loaded.Store(loaded)
	t.total.Store(total)
}

// Progress returns bytes loaded and the expected total.
func (t *Task[T]) Progress() (loaded, total int64) {
	return t.loaded.Load(), t.total.Load()
}

// Percent returns whole-number progress. ok is false while the total is unknown.
func (t *Task[T]) Percent() (pct int, ok bool) {
	loaded, total := t.Progress()
	if total <= 0 {
		return 0, false
	}
	return int(min(loaded*100/total, 100)), true
}

// Done is closed when the task finishes.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Finished reports whether Result will return without blocking.
func (t *Task[T]) Finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Result waits for the task and returns its outcome.
func (t *Task[T]) Result() (T, error) {
	<-t.done
	return t.result, t.err
}
