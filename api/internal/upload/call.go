package upload

import (
	"context"
	"sync/atomic"
)

type State int32

const (
	Idle State = iota
	Awaiting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Awaiting:
		return "awaiting"
	default:
		return "unknown"
	}
}

// Call is one invocation started with Handler.Start.
type Call struct {
	state  atomic.Int32
	done   chan struct{}
	review Review
	err    error
}

// Start runs Handle on its own goroutine and returns immediately.
// There is no way to abort a started call other than through ctx.
func (h *Handler) Start(ctx context.Context, f *File) *Call {
	c := &Call{done: make(chan struct{})}
	c.state.Store(int32(Awaiting))
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Add(-1)
		c.review, c.err = h.handle(ctx, f)
		c.state.Store(int32(Idle))
		close(c.done)
	}()
	return c
}

func (c *Call) State() State { return State(c.state.Load()) }

func (c *Call) Done() <-chan struct{} { return c.done }

// Wait blocks until the call completes or ctx is done. Giving up on the wait does
// not stop the call.
func (c *Call) Wait(ctx context.Context) (Review, error) {
	select {
	case <-c.done:
		return c.review, c.err
	case <-ctx.Done():
		return Review{}, ctx.Err()
	}
}
