// Package gate is the single-flight guard in front of the play endpoint: at most one
// request per game instance is outstanding, and a second trigger is rejected rather than
// queued.
package gate

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/osse101/TokenArcade_Go/internal/domain"
)

// ErrSettledAfterClose is returned together with the result of a call that succeeded
// after the gate was closed. It matches domain.ErrControllerClosed.
var ErrSettledAfterClose = fmt.Errorf("%w: result settled after close", domain.ErrControllerClosed)

// Gate serializes calls to one upstream operation
type Gate[T any] struct {
	pending atomic.Bool
	closed  atomic.Bool

	mu        sync.Mutex
	lastErr   error
	listeners []func(pending bool)
}

// New creates an open gate
func New[T any]() *Gate[T] {
	return &Gate[T]{}
}

// Submit runs fn unless another call is still in flight, in which case it returns
// domain.ErrAlreadyPending without invoking fn. Errors from fn are returned unchanged.
// A call that succeeds after Close returns its result with ErrSettledAfterClose, since the
// upstream already applied it; a failure after Close is reported as domain.ErrControllerClosed.
func (g *Gate[T]) Submit(ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if g.closed.Load() {
		return zero, domain.ErrControllerClosed
	}
	if !g.pending.CompareAndSwap(false, true) {
		return zero, domain.ErrAlreadyPending
	}

	g.setErr(nil)
	g.notify(true)

	result, err := fn(ctx)

	g.pending.Store(false)
	if g.closed.Load() {
		if err != nil {
			return zero, domain.ErrControllerClosed
		}
		return result, ErrSettledAfterClose
	}
	g.setErr(err)
	g.notify(false)

	if err != nil {
		return zero, err
	}
	return result, nil
}

// Pending reports whether a call is in flight
func (g *Gate[T]) Pending() bool {
	return g.pending.Load()
}

// Err returns the error of the last settled call; it is cleared when a new call starts
func (g *Gate[T]) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}

// OnPendingChange registers a listener for busy-indicator changes
func (g *Gate[T]) OnPendingChange(fn func(pending bool)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

// Close stops pending-flag tracking. Calls already in flight cannot be recalled, but
// their results are dropped and listeners are no longer notified.
func (g *Gate[T]) Close() {
	if g.closed.Swap(true) {
		return
	}
	g.mu.Lock()
	g.listeners = nil
	g.mu.Unlock()
}

func (g *Gate[T]) setErr(err error) {
	g.mu.Lock()
	g.lastErr = err
	g.mu.Unlock()
}

func (g *Gate[T]) notify(pending bool) {
	g.mu.Lock()
	listeners := append([]func(bool){}, g.listeners...)
	g.mu.Unlock()

	if g.closed.Load() {
		return
	}
	for _, fn := range listeners {
		fn(pending)
	}
}
