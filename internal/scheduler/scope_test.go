package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestScope_AfterFiresOnce(t *testing.T) {
	clock := NewFakeClock(epoch)
	scope := NewScope(clock)
	calls := 0

	scope.After(100*time.Millisecond, func() { calls++ })

	clock.Advance(99 * time.Millisecond)
	assert.Equal(t, 0, calls)

	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, calls)

	clock.Advance(time.Second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, scope.Pending())
}

func TestScope_CancelPreventsCallback(t *testing.T) {
	clock := NewFakeClock(epoch)
	scope := NewScope(clock)
	calls := 0

	h := scope.After(50*time.Millisecond, func() { calls++ })
	assert.True(t, h.Cancel())
	assert.False(t, h.Cancel(), "second cancel reports nothing left to stop")

	clock.Advance(time.Second)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, clock.Cancelled())
}

func TestScope_EveryStopsWhenCallbackReturnsFalse(t *testing.T) {
	clock := NewFakeClock(epoch)
	scope := NewScope(clock)
	var times []time.Duration

	scope.Every(100*time.Millisecond, func() bool {
		times = append(times, clock.Now().Sub(epoch))
		return len(times) < 3
	})

	clock.Advance(time.Second)

	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}, times)
	assert.Equal(t, 0, scope.Pending())
}

func TestScope_EveryCancel(t *testing.T) {
	clock := NewFakeClock(epoch)
	scope := NewScope(clock)
	ticks := 0

	h := scope.Every(10*time.Millisecond, func() bool {
		ticks++
		return true
	})

	clock.Advance(35 * time.Millisecond)
	require.Equal(t, 3, ticks)

	assert.True(t, h.Cancel())
	clock.Advance(time.Second)
	assert.Equal(t, 3, ticks)
	assert.Equal(t, 0, clock.Pending())
}

func TestScope_CloseCancelsEverything(t *testing.T) {
	clock := NewFakeClock(epoch)
	scope := NewScope(clock)
	child := scope.Child()
	calls := 0

	scope.After(time.Second, func() { calls++ })
	scope.Every(100*time.Millisecond, func() bool { calls++; return true })
	child.After(500*time.Millisecond, func() { calls++ })
	require.Equal(t, 3, clock.Pending())

	scope.Close()

	assert.True(t, scope.Closed())
	assert.True(t, child.Closed(), "closing a parent closes its children")
	assert.Equal(t, 0, clock.Pending())
	assert.Equal(t, 3, clock.Cancelled())

	clock.Advance(10 * time.Second)
	assert.Equal(t, 0, calls)

	// scheduling on a closed scope is a no-op
	scope.After(time.Millisecond, func() { calls++ })
	clock.Advance(time.Second)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, clock.Pending())
}

func TestScope_ChildCloseLeavesParent(t *testing.T) {
	clock := NewFakeClock(epoch)
	scope := NewScope(clock)
	child := scope.Child()
	parentCalls := 0

	scope.After(time.Second, func() { parentCalls++ })
	child.After(time.Second, func() { t.Fatal("child callback ran after close") })

	assert.True(t, child.Cancel())
	assert.Equal(t, 1, scope.Pending(), "closed child is released from its parent")

	clock.Advance(2 * time.Second)
	assert.Equal(t, 1, parentCalls)
}

func TestScope_RunReleasesItselfWhenDone(t *testing.T) {
	clock := NewFakeClock(epoch)
	scope := NewScope(clock)
	run := scope.Run()
	ticks := 0

	run.After(100*time.Millisecond, func() {
		// scheduling from inside a callback keeps the run alive
		run.Every(50*time.Millisecond, func() bool {
			ticks++
			return ticks < 2
		})
	})
	run.After(300*time.Millisecond, func() {})
	require.Equal(t, 1, scope.Pending())

	clock.Advance(200 * time.Millisecond)
	assert.Equal(t, 2, ticks)
	assert.False(t, run.Closed(), "one callback still outstanding")
	assert.Equal(t, 1, scope.Pending())

	clock.Advance(100 * time.Millisecond)
	assert.True(t, run.Closed())
	assert.Equal(t, 0, scope.Pending())
	assert.False(t, scope.Closed())
}

func TestScope_RunReleasesOnLastCancel(t *testing.T) {
	clock := NewFakeClock(epoch)
	scope := NewScope(clock)
	run := scope.Run()

	h := run.After(time.Second, func() { t.Fatal("cancelled callback ran") })
	require.Equal(t, 1, scope.Pending())

	assert.True(t, h.Cancel())
	assert.True(t, run.Closed())
	assert.Equal(t, 0, scope.Pending())
	assert.False(t, run.Cancel(), "already closed")
}

func TestScope_ChildStaysOpenWhenIdle(t *testing.T) {
	clock := NewFakeClock(epoch)
	scope := NewScope(clock)
	child := scope.Child()

	child.After(time.Millisecond, func() {})
	clock.Advance(time.Second)

	assert.False(t, child.Closed())
	assert.Equal(t, 1, scope.Pending(), "plain children live until closed")
}

func TestScope_RealClock(t *testing.T) {
	scope := NewScope(Real())
	var fired atomic.Int32
	done := make(chan struct{})

	scope.After(5*time.Millisecond, func() {
		fired.Add(1)
		close(done)
	})
	cancelled := scope.After(5*time.Millisecond, func() { fired.Add(10) })
	cancelled.Cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for callback")
	}

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
	scope.Close()
}
