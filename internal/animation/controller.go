// Package animation owns the Idle → Requesting → Animating → Revealed lifecycle of one
// game instance. The outcome arrives from the server first; the reveal happens only when
// a single scheduled completion callback fires a fixed duration later.
package animation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/TokenArcade_Go/internal/domain"
	"github.com/osse101/TokenArcade_Go/internal/gate"
	"github.com/osse101/TokenArcade_Go/internal/logger"
	"github.com/osse101/TokenArcade_Go/internal/scheduler"
)

// Status is the controller's lifecycle state
type Status int

const (
	StatusIdle Status = iota
	StatusRequesting
	StatusAnimating
	StatusRevealed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRequesting:
		return "requesting"
	case StatusAnimating:
		return "animating"
	case StatusRevealed:
		return "revealed"
	default:
		return "unknown"
	}
}

// PlayFunc issues the play request to the server
type PlayFunc func(ctx context.Context) (domain.PlayResponse, error)

// Decoder extracts the game-specific result from a play response
type Decoder[T any] func(domain.PlayResponse) (T, error)

// Pulser runs side effects for the length of a reveal inside the controller's scope
type Pulser interface {
	Start(parent *scheduler.Scope, total time.Duration) scheduler.Handle
}

// UnrevealedFunc observes a play the server accepted that will never be revealed: its
// body could not be decoded, or the instance closed before the reveal.
type UnrevealedFunc func(ctx context.Context, resp domain.PlayResponse)

// RevealEvent is delivered to OnReveal listeners when the outcome is disclosed
type RevealEvent[T any] struct {
	Outcome    domain.Outcome[T]
	RevealedAt time.Time
	// Lag is the time between receipt and reveal; never shorter than the duration
	Lag time.Duration
}

// Snapshot is what a renderer reads
type Snapshot[T any] struct {
	Status   Status
	Pending  bool
	Err      error
	Outcome  *domain.Outcome[T]
	Timeline domain.AnimationTimeline
	Closed   bool
}

// Options configure a controller
type Options struct {
	Game     domain.GameType
	Duration time.Duration
	// Scope is the parent scope; the controller schedules inside a child of it.
	// Nil creates a root scope on Clock.
	Scope *scheduler.Scope
	Clock scheduler.Clock
	// Haptics may be nil
	Haptics Pulser
}

// Controller is the state machine of one game instance
type Controller[T any] struct {
	game     domain.GameType
	duration time.Duration
	play     PlayFunc
	decode   Decoder[T]
	haptics  Pulser

	gate  *gate.Gate[domain.PlayResponse]
	scope *scheduler.Scope
	clock scheduler.Clock

	mu       sync.Mutex
	status   Status
	gen      uint64
	err      error
	resp     domain.PlayResponse
	received *domain.Outcome[T]
	revealed *domain.Outcome[T]
	timeline domain.AnimationTimeline
	closed   bool
	reveal   scheduler.Handle
	pulses   scheduler.Handle

	onReveal     []func(RevealEvent[T])
	onFail       []func(error)
	onUnrevealed []UnrevealedFunc
}

// New creates an idle controller
func New[T any](opts Options, play PlayFunc, decode Decoder[T]) *Controller[T] {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	scope := opts.Scope
	switch {
	case scope != nil:
		scope = scope.Child()
	case opts.Clock != nil:
		scope = scheduler.NewScope(opts.Clock)
	default:
		scope = scheduler.NewScope(scheduler.Real())
	}

	return &Controller[T]{
		game:     opts.Game,
		duration: opts.Duration,
		play:     play,
		decode:   decode,
		haptics:  opts.Haptics,
		gate:     gate.New[domain.PlayResponse](),
		scope:    scope,
		clock:    scope.Clock(),
		timeline: domain.AnimationTimeline{Status: domain.TimelineIdle},
	}
}

// Game returns the game this controller plays
func (c *Controller[T]) Game() domain.GameType {
	return c.game
}

// Duration returns the reveal duration
func (c *Controller[T]) Duration() time.Duration {
	return c.duration
}

// OnReveal registers a listener for reveals. Listeners run outside the controller lock.
func (c *Controller[T]) OnReveal(fn func(RevealEvent[T])) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReveal = append(c.onReveal, fn)
}

// OnFail registers a listener for failed plays
func (c *Controller[T]) OnFail(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFail = append(c.onFail, fn)
}

// OnUnrevealed registers a listener for accepted plays that are never revealed
func (c *Controller[T]) OnUnrevealed(fn UnrevealedFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnrevealed = append(c.onUnrevealed, fn)
}

// OnPendingChange forwards the gate's busy flag
func (c *Controller[T]) OnPendingChange(fn func(pending bool)) {
	c.gate.OnPendingChange(fn)
}

// CanTrigger reports whether a new play may start now
func (c *Controller[T]) CanTrigger() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canTriggerLocked()
}

func (c *Controller[T]) canTriggerLocked() bool {
	if c.closed || c.gate.Pending() {
		return false
	}
	return c.status != StatusRequesting && c.status != StatusAnimating
}

// Trigger issues one play and blocks until the outcome is received or the request fails.
// On success the controller is Animating when Trigger returns; the reveal follows once
// the duration has elapsed. A trigger while Requesting or Animating is rejected with
// domain.ErrAlreadyPending and sends nothing.
func (c *Controller[T]) Trigger(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrControllerClosed
	}
	if !c.canTriggerLocked() {
		c.mu.Unlock()
		return domain.ErrAlreadyPending
	}
	c.gen++
	gen := c.gen
	c.status = StatusRequesting
	c.err = nil
	c.resp = domain.PlayResponse{}
	c.received = nil
	c.revealed = nil
	c.timeline = domain.AnimationTimeline{Status: domain.TimelineIdle}
	c.mu.Unlock()

	playID, ok := logger.PlayIDFromContext(ctx)
	if !ok {
		playID = logger.NewPlayID()
		ctx = logger.WithPlayID(ctx, playID)
	}
	if _, ok := logger.GameFromContext(ctx); !ok {
		ctx = logger.WithGame(ctx, string(c.game))
	}
	log := logger.FromContext(ctx)
	log.Debug(LogMsgPlayRequested)

	resp, err := c.gate.Submit(ctx, func(ctx context.Context) (domain.PlayResponse, error) {
		return c.play(ctx)
	})
	if errors.Is(err, gate.ErrSettledAfterClose) {
		log.Debug(LogMsgLateResponse)
		c.unrevealed(ctx, resp)
		return domain.ErrControllerClosed
	}
	if err != nil {
		return c.fail(ctx, gen, err)
	}

	result, err := c.decode(resp)
	if err != nil {
		c.unrevealed(ctx, resp)
		return c.fail(ctx, gen, fmt.Errorf("%w: %v", domain.ErrInvalidOutcome, err))
	}

	c.mu.Lock()
	if c.closed || c.gen != gen {
		c.mu.Unlock()
		log.Debug(LogMsgLateResponse)
		c.unrevealed(ctx, resp)
		return domain.ErrControllerClosed
	}
	defer c.mu.Unlock()

	now := c.clock.Now()
	c.resp = resp
	c.received = &domain.Outcome[T]{
		PlayID:         playID,
		Game:           c.game,
		Result:         result,
		Reward:         resp.Reward(),
		LedgerAccrual:  resp.LedgerAccrual,
		RemainingPlays: resp.RemainingPlays,
		Message:        resp.Message,
		ReceivedAt:     now,
	}
	c.timeline = domain.AnimationTimeline{StartedAt: now, Duration: c.duration, Status: domain.TimelineSpinning}
	c.status = StatusAnimating
	c.reveal = c.scope.After(c.duration, func() { c.complete(ctx, gen) })
	if c.haptics != nil {
		c.pulses = c.haptics.Start(c.scope, c.duration)
	}

	log.Debug(LogMsgAnimating, "duration", c.duration)
	return nil
}

func (c *Controller[T]) fail(ctx context.Context, gen uint64, err error) error {
	c.mu.Lock()
	if c.closed || c.gen != gen {
		c.mu.Unlock()
		if errors.Is(err, domain.ErrControllerClosed) {
			return err
		}
		return domain.ErrControllerClosed
	}
	c.status = StatusIdle
	c.err = err
	c.timeline = domain.AnimationTimeline{Status: domain.TimelineIdle}
	listeners := append([]func(error){}, c.onFail...)
	c.mu.Unlock()

	logger.FromContext(ctx).Info(LogMsgPlayFailed, "error", err)
	for _, fn := range listeners {
		fn(err)
	}
	return err
}

// complete is the single reveal callback of play gen
func (c *Controller[T]) complete(ctx context.Context, gen uint64) {
	c.mu.Lock()
	if c.closed || c.gen != gen || c.status != StatusAnimating || c.received == nil {
		c.mu.Unlock()
		return
	}
	now := c.clock.Now()
	c.status = StatusRevealed
	c.timeline.Status = domain.TimelineRevealed
	c.revealed = c.received
	c.resp = domain.PlayResponse{}
	c.reveal = nil
	pulses := c.pulses
	c.pulses = nil
	evt := RevealEvent[T]{
		Outcome:    *c.revealed,
		RevealedAt: now,
		Lag:        now.Sub(c.revealed.ReceivedAt),
	}
	listeners := append([]func(RevealEvent[T]){}, c.onReveal...)
	c.mu.Unlock()

	if pulses != nil {
		pulses.Cancel()
	}

	logger.FromContext(ctx).Info(LogMsgRevealed, "lag", evt.Lag)
	for _, fn := range listeners {
		fn(evt)
	}
}

// Snapshot returns the current presentation state. The outcome is only exposed once
// revealed.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot[T]{
		Status:   c.status,
		Pending:  c.gate.Pending(),
		Err:      c.err,
		Timeline: c.timeline,
		Closed:   c.closed,
	}
	if c.revealed != nil {
		o := *c.revealed
		s.Outcome = &o
	}
	return s
}

// Scope returns the scope the controller schedules in
func (c *Controller[T]) Scope() *scheduler.Scope {
	return c.scope
}

// Close tears the instance down: the reveal callback and every haptic timer are
// cancelled. A received outcome that was not revealed yet, or a response that lands
// later, goes to the OnUnrevealed listeners instead of a reveal.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.reveal = nil
	c.pulses = nil
	animating := c.status == StatusAnimating && c.received != nil
	resp := c.resp
	c.resp = domain.PlayResponse{}
	if c.status == StatusRequesting || c.status == StatusAnimating {
		c.status = StatusIdle
		c.timeline = domain.AnimationTimeline{Status: domain.TimelineIdle}
	}
	c.mu.Unlock()

	c.scope.Close()
	c.gate.Close()

	ctx := logger.WithGame(context.Background(), string(c.game))
	logger.FromContext(ctx).Debug(LogMsgClosed)
	if animating {
		c.unrevealed(ctx, resp)
	}
}

func (c *Controller[T]) unrevealed(ctx context.Context, resp domain.PlayResponse) {
	c.mu.Lock()
	listeners := append([]UnrevealedFunc{}, c.onUnrevealed...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(ctx, resp)
	}
}
