package provider

import (
	"context"

	"github.com/google/uuid"
)

// Call is a single pending Agro API action. Start it through exactly one of
// Then, Stream or Await; each of those issues a new request.
type Call[T any] struct {
	p       *Provider
	action  string
	fn      func(ctx context.Context) (T, error)
	present func(T) bool
}

func newCall[T any](p *Provider, action string, fn func(context.Context) (T, error), present func(T) bool) *Call[T] {
	return &Call[T]{p: p, action: action, fn: fn, present: present}
}

// Handle identifies a started call
type Handle struct {
	id uuid.UUID
	p  *Provider
}

// ID returns the call identifier
func (h *Handle) ID() string {
	return h.id.String()
}

// Cancel aborts the call. It reports false if the call had already completed or been cancelled.
func (h *Handle) Cancel() bool {
	return h.p.cancel(h.id)
}

// Then starts the call and invokes cb at most once on the provider's dispatcher.
// On failure cb receives the zero value and the error is logged. A cancelled
// call never invokes cb.
func (c *Call[T]) Then(cb func(T)) *Handle {
	return c.start(func(v T, err error) {
		if err != nil {
			var zero T
			cb(zero)
			return
		}
		cb(v)
	}, nil)
}

// Stream starts the call and returns a channel that receives the value if the
// call succeeds with one, and is closed afterwards. Failed and cancelled calls
// close the channel without a value.
func (c *Call[T]) Stream() (<-chan T, *Handle) {
	ch := make(chan T, 1)
	h := c.start(func(v T, err error) {
		if err == nil && c.present(v) {
			ch <- v
		}
	}, func() {
		close(ch)
	})
	return ch, h
}

// Await runs the call on the caller's goroutine and returns its typed error.
// It is tracked like the asynchronous adapters, so CancelAll aborts it.
func (c *Call[T]) Await(ctx context.Context) (T, error) {
	id, ctx := c.p.track(ctx)
	defer c.p.finish(id)

	return c.fn(ctx)
}

// start runs fn in the background. deliver runs only for calls that were not
// cancelled; after, when set, runs on every completion.
func (c *Call[T]) start(deliver func(T, error), after func()) *Handle {
	id, ctx := c.p.track(context.Background())

	go func() {
		v, err := c.fn(ctx)

		c.p.complete(func() {
			if after != nil {
				defer after()
			}

			if !c.p.finish(id) {
				c.p.logger.Debug().Str("action", c.action).Str("call_id", id.String()).Msg("Dropped result of cancelled call")
				return
			}
			if err != nil {
				c.p.logger.Error().Err(err).Str("action", c.action).Msg("Agro API call failed")
			}

			c.p.delivering.Add(1)
			defer c.p.delivering.Add(-1)
			deliver(v, err)
		})
	}()

	return &Handle{id: id, p: c.p}
}
