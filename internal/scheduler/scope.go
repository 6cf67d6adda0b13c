package scheduler

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Scope owns a set of scheduled callbacks. Closing the scope cancels every callback
// still outstanding and turns later scheduling requests into no-ops, so a callback can
// never run against a torn-down owner.
type Scope struct {
	clock   Clock
	parent  *Scope
	id      uuid.UUID
	mu      sync.Mutex
	handles map[uuid.UUID]Handle
	closed  bool
	// transient scopes close themselves once nothing is left outstanding
	transient bool
}

// NewScope creates a root scope on the given clock
func NewScope(clock Clock) *Scope {
	return &Scope{
		clock:   clock,
		id:      uuid.New(),
		handles: make(map[uuid.UUID]Handle),
	}
}

// Clock returns the clock the scope schedules on
func (s *Scope) Clock() Clock {
	return s.clock
}

// Child creates a nested scope. Closing the parent closes the child; closing the child
// leaves the parent untouched.
func (s *Scope) Child() *Scope {
	child := NewScope(s.clock)
	child.parent = s

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		child.closed = true
		return child
	}
	s.handles[child.id] = child
	return child
}

// Run creates a child scope for one self-contained run of callbacks. Once the last
// callback scheduled in it has fired or been cancelled, the run closes itself and drops
// out of s. A run that schedules nothing stays open until closed.
func (s *Scope) Run() *Scope {
	run := s.Child()
	run.mu.Lock()
	run.transient = true
	run.mu.Unlock()
	return run
}

// After runs fn once after d unless the scope is closed first
func (s *Scope) After(d time.Duration, fn func()) Handle {
	id := uuid.New()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return noop{}
	}

	t := &timer{scope: s, id: id}
	t.inner = s.clock.AfterFunc(d, func() {
		if !s.tracks(id) {
			return
		}
		fn()
		if s.release(id) {
			s.releaseIfDone()
		}
	})
	s.handles[id] = t.inner
	return t
}

// Every calls fn each interval until fn returns false, the handle is cancelled or the
// scope is closed. The first call happens one interval from now.
func (s *Scope) Every(interval time.Duration, fn func() bool) Handle {
	tk := &ticker{scope: s, id: uuid.New(), interval: interval, fn: fn}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return noop{}
	}
	tk.arm()
	return tk
}

// Pending returns the number of callbacks and child scopes still outstanding
func (s *Scope) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Closed reports whether the scope was closed
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close cancels everything the scope still tracks. It is safe to call more than once.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	handles := s.handles
	s.handles = make(map[uuid.UUID]Handle)
	s.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}

	if s.parent != nil {
		s.parent.release(s.id)
	}
}

// Cancel closes the scope, so a child scope can be stored as a plain Handle
func (s *Scope) Cancel() bool {
	wasOpen := !s.Closed()
	s.Close()
	return wasOpen
}

// release drops id from the tracked set; false means the scope closed or the handle was
// already cancelled and the callback must not run.
func (s *Scope) release(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if _, ok := s.handles[id]; !ok {
		return false
	}
	delete(s.handles, id)
	return true
}

func (s *Scope) tracks(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	_, ok := s.handles[id]
	return ok
}

// releaseIfDone closes a transient scope with nothing left outstanding
func (s *Scope) releaseIfDone() {
	s.mu.Lock()
	if !s.transient || s.closed || len(s.handles) > 0 {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	if s.parent != nil {
		s.parent.release(s.id)
	}
}

type timer struct {
	scope *Scope
	id    uuid.UUID
	inner Handle
}

func (t *timer) Cancel() bool {
	if !t.scope.release(t.id) {
		return false
	}
	cancelled := t.inner.Cancel()
	t.scope.releaseIfDone()
	return cancelled
}

type ticker struct {
	scope    *Scope
	id       uuid.UUID
	interval time.Duration
	fn       func() bool
	stopped  atomic.Bool
}

// arm must be called with scope.mu held
func (tk *ticker) arm() {
	tk.scope.handles[tk.id] = tk.scope.clock.AfterFunc(tk.interval, tk.tick)
}

// tick keeps its handle tracked while fn runs so a run scope never looks idle mid-tick
func (tk *ticker) tick() {
	if tk.stopped.Load() || !tk.scope.tracks(tk.id) {
		return
	}
	more := tk.fn()

	tk.scope.mu.Lock()
	if tk.scope.closed || tk.stopped.Load() {
		tk.scope.mu.Unlock()
		return
	}
	if more {
		tk.arm()
		tk.scope.mu.Unlock()
		return
	}
	delete(tk.scope.handles, tk.id)
	tk.scope.mu.Unlock()
	tk.scope.releaseIfDone()
}

func (tk *ticker) Cancel() bool {
	if tk.stopped.Swap(true) {
		return false
	}
	tk.scope.mu.Lock()
	h, ok := tk.scope.handles[tk.id]
	if ok {
		delete(tk.scope.handles, tk.id)
	}
	tk.scope.mu.Unlock()
	if !ok {
		return false
	}
	cancelled := h.Cancel()
	tk.scope.releaseIfDone()
	return cancelled
}

type noop struct{}

func (noop) Cancel() bool { return false }
