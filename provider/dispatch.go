package provider

import (
	"context"
	"errors"
	"sync"
)

// ErrDispatcherStopped is returned when a completion is handed to a stopped queue
var ErrDispatcherStopped = errors.New("dispatcher is stopped")

// Dispatcher delivers completions on the execution context agreed with the consumer.
// A Dispatcher that returns an error has not run fn; the provider then runs it inline.
type Dispatcher interface {
	Dispatch(fn func()) error
}

// DispatcherFunc adapts a function, such as a UI toolkit's "run on main thread", to a Dispatcher
type DispatcherFunc func(fn func())

// Dispatch calls f(fn)
func (f DispatcherFunc) Dispatch(fn func()) error {
	f(fn)
	return nil
}

// SerialQueue runs submitted functions one at a time, in submission order, on a single goroutine
type SerialQueue struct {
	work     chan func()
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
	done     chan struct{}
}

// NewSerialQueue starts a queue with room for buffer pending completions before Dispatch blocks
func NewSerialQueue(buffer int) *SerialQueue {
	if buffer < 0 {
		buffer = 0
	}

	q := &SerialQueue{
		work: make(chan func(), buffer),
		done: make(chan struct{}),
	}
	go q.worker()
	return q
}

func (q *SerialQueue) worker() {
	defer close(q.done)

	for fn := range q.work {
		if fn != nil {
			fn()
		}
	}
}

// Dispatch queues fn
func (q *SerialQueue) Dispatch(fn func()) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.stopped {
		return ErrDispatcherStopped
	}
	q.work <- fn
	return nil
}

// Stop refuses new work and waits for the queued work to drain.
// It must not be called from a function running on the queue; use shutdown there.
func (q *SerialQueue) Stop(ctx context.Context) error {
	q.shutdown()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shutdown refuses new work without waiting. Work already queued still runs.
func (q *SerialQueue) shutdown() {
	q.stopOnce.Do(func() {
		q.mu.Lock()
		q.stopped = true
		close(q.work)
		q.mu.Unlock()
	})
}
