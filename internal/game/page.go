// Package game composes the play gate, the animation controller, haptics, the reward
// classifier and the view invalidator into one page controller per game type.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/TokenArcade_Go/internal/animation"
	"github.com/osse101/TokenArcade_Go/internal/domain"
	"github.com/osse101/TokenArcade_Go/internal/event"
	"github.com/osse101/TokenArcade_Go/internal/haptic"
	"github.com/osse101/TokenArcade_Go/internal/logger"
	"github.com/osse101/TokenArcade_Go/internal/messages"
	"github.com/osse101/TokenArcade_Go/internal/reward"
	"github.com/osse101/TokenArcade_Go/internal/scheduler"
	"github.com/osse101/TokenArcade_Go/internal/views"
)

// PlayAPI issues plays against the server
type PlayAPI interface {
	Play(ctx context.Context, game domain.GameType) (domain.PlayResponse, error)
}

// Notifier shows the auxiliary notifications of a reveal
type Notifier interface {
	Toast(game domain.GameType, reward domain.Reward, text string)
	LedgerAccrued(game domain.GameType, amount int64, text string)
}

// TopUp is the out-of-band token acquisition flow. It returns the new balance.
type TopUp interface {
	RequestTokens(ctx context.Context, game domain.GameType) (int, error)
}

// Renderer turns a revealed result into display text
type Renderer[T any] func(T) string

// Deps are the collaborators shared by every page of a lobby
type Deps struct {
	API         PlayAPI
	Registry    *views.Registry
	Invalidator *views.Invalidator
	Bus         event.Bus
	Catalog     *messages.Catalog
	Notifier    Notifier
	TopUp       TopUp

	// Scope parents every page's timers; nil gives each page its own root on Clock
	Scope *scheduler.Scope
	Clock scheduler.Clock

	Vibrator   haptic.Vibrator
	Visibility haptic.Visibility
	Haptics    haptic.Config
}

// Snapshot is the presentation state of one page
type Snapshot[T any] struct {
	Game         domain.GameType
	Status       animation.Status
	Pending      bool
	CanTrigger   bool
	Error        string
	ShowTopUp    bool
	Balance      int
	BalanceKnown bool
	Outcome      *domain.Outcome[T]
	Notices      reward.Notices
	Timeline     domain.AnimationTimeline
	StatusStale  bool
}

// Page is the controller of one game instance
type Page[T any] struct {
	game     domain.GameType
	deps     Deps
	ctrl     *animation.Controller[T]
	render   Renderer[T]
	catalog  *messages.Catalog
	invalid  *views.Invalidator
	notifier Notifier

	mu          sync.Mutex
	balance     int
	known       bool
	showTopUp   bool
	message     string
	notices     reward.Notices
	statusStale bool
	closed      bool
	unsubscribe func()
}

func newPage[T any](game domain.GameType, d Deps, duration time.Duration, decode animation.Decoder[T], render Renderer[T]) *Page[T] {
	if d.Registry == nil {
		d.Registry = views.NewRegistry(views.DefaultCacheSize, views.DefaultCacheTTL)
	}
	invalid := d.Invalidator
	if invalid == nil {
		invalid = views.NewInvalidator(d.Registry, d.Bus)
	}
	catalog := d.Catalog
	if catalog == nil {
		catalog = messages.For()
	}
	notifier := d.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	cadence := d.Haptics
	if cadence.Interval <= 0 {
		cadence = haptic.DefaultConfig()
	}

	p := &Page[T]{
		game:     game,
		deps:     d,
		render:   render,
		catalog:  catalog,
		invalid:  invalid,
		notifier: notifier,
	}

	pulses := haptic.New(cadence, d.Vibrator, d.Visibility)
	pulses.OnPulse(p.onPulse)

	p.ctrl = animation.New[T](animation.Options{
		Game:     game,
		Duration: duration,
		Scope:    d.Scope,
		Clock:    d.Clock,
		Haptics:  pulses,
	}, func(ctx context.Context) (domain.PlayResponse, error) {
		return d.API.Play(ctx, game)
	}, decode)
	p.ctrl.OnReveal(p.onReveal)
	p.ctrl.OnUnrevealed(p.onUnrevealed)

	p.unsubscribe = d.Registry.Subscribe(domain.StatusView(game), func(domain.ViewKey) {
		p.mu.Lock()
		p.statusStale = true
		p.mu.Unlock()
	})
	return p
}

// Game returns the page's game type
func (p *Page[T]) Game() domain.GameType {
	return p.game
}

// Controller exposes the underlying state machine
func (p *Page[T]) Controller() *animation.Controller[T] {
	return p.ctrl
}

// SetBalance records the remaining plays known from elsewhere
func (p *Page[T]) SetBalance(remaining int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setBalanceLocked(remaining)
}

func (p *Page[T]) setBalanceLocked(remaining int) {
	p.balance = remaining
	p.known = true
	p.showTopUp = remaining <= 0
}

func (p *Page[T]) exhaustedLocked() bool {
	return p.known && p.balance <= 0
}

// CanTrigger is false while a request is pending, while animating, or when no plays remain
func (p *Page[T]) CanTrigger() bool {
	p.mu.Lock()
	exhausted := p.exhaustedLocked() || p.closed
	p.mu.Unlock()
	return !exhausted && p.ctrl.CanTrigger()
}

// Trigger starts one play. With no plays left it raises the top-up affordance and
// sends nothing.
func (p *Page[T]) Trigger(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return domain.ErrControllerClosed
	}
	if p.exhaustedLocked() {
		p.showTopUp = true
		p.message = p.catalog.Exhausted()
		p.mu.Unlock()
		return domain.ErrBalanceExhausted
	}
	if p.ctrl.CanTrigger() {
		p.message = ""
		p.notices = reward.Notices{}
	}
	p.mu.Unlock()

	ctx = logger.WithGame(ctx, string(p.game))
	err := p.ctrl.Trigger(ctx)
	if err == nil || errors.Is(err, domain.ErrAlreadyPending) || errors.Is(err, domain.ErrControllerClosed) {
		return err
	}

	p.onFailure(ctx, err)
	return err
}

func (p *Page[T]) onFailure(ctx context.Context, err error) {
	code := domain.FailureCode(err)

	p.mu.Lock()
	p.message = p.catalog.Message(err)
	p.notices = reward.Notices{}
	if code == domain.CodeNotEnoughTokens {
		p.setBalanceLocked(0)
	}
	p.mu.Unlock()

	p.publish(ctx, event.NewPlayFailedEvent(p.game, code))
}

func (p *Page[T]) onReveal(evt animation.RevealEvent[T]) {
	ctx := logger.WithGame(logger.WithPlayID(context.Background(), evt.Outcome.PlayID), string(p.game))
	o := evt.Outcome
	notices := reward.Notifications(o)

	if notices.Toast != nil {
		text := fmt.Sprintf(p.catalog.RewardFormat(), notices.Toast.Type, notices.Toast.Value)
		p.notifier.Toast(p.game, *notices.Toast, text)
	}
	if notices.LedgerAccrual > 0 {
		p.notifier.LedgerAccrued(p.game, notices.LedgerAccrual, fmt.Sprintf(p.catalog.AccruedFormat(), notices.LedgerAccrual))
	}

	p.invalid.Propagate(ctx, p.game)

	p.mu.Lock()
	p.notices = notices
	p.setBalanceLocked(o.RemainingPlays)
	p.mu.Unlock()

	p.publish(ctx, event.NewPlayRevealedEvent(domain.PlayRevealedPayload{
		PlayID:        o.PlayID,
		Game:          p.game,
		Reward:        o.Reward,
		Class:         notices.Classification,
		LedgerAccrual: o.LedgerAccrual,
		ReceivedAt:    o.ReceivedAt,
		RevealedAt:    evt.RevealedAt,
	}))
}

// onUnrevealed accounts for a play the server applied but the page never showed: shared
// views still go stale and the remaining plays from the body still apply.
func (p *Page[T]) onUnrevealed(ctx context.Context, resp domain.PlayResponse) {
	p.invalid.Propagate(ctx, p.game)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.setBalanceLocked(resp.RemainingPlays)
	}
}

func (p *Page[T]) onPulse(accent bool) {
	p.publish(context.Background(), event.NewHapticPulseEvent(p.game, accent))
}

func (p *Page[T]) publish(ctx context.Context, evt event.Event) {
	if p.deps.Bus == nil {
		return
	}
	if err := p.deps.Bus.Publish(ctx, evt); err != nil {
		logger.FromContext(ctx).Warn(LogMsgPublishFailed, "type", evt.Type, "error", err)
	}
}

// RequestTopUp hands an exhausted balance to the top-up collaborator
func (p *Page[T]) RequestTopUp(ctx context.Context) error {
	p.mu.Lock()
	exhausted := p.exhaustedLocked() || p.showTopUp
	p.mu.Unlock()
	if !exhausted {
		return nil
	}
	if p.deps.TopUp == nil {
		return ErrNoTopUp
	}

	ctx = logger.WithGame(ctx, string(p.game))
	remaining, err := p.deps.TopUp.RequestTokens(ctx, p.game)
	if err != nil {
		p.mu.Lock()
		p.message = p.catalog.Message(err)
		p.mu.Unlock()
		return fmt.Errorf("top-up failed: %w", err)
	}

	p.mu.Lock()
	p.setBalanceLocked(remaining)
	p.message = ""
	p.mu.Unlock()

	p.invalid.InvalidateKeys(domain.StatusView(p.game))
	logger.FromContext(ctx).Info(LogMsgToppedUp, "remaining", remaining)
	return nil
}

// Refresh reloads the page's status view when it is stale or unknown
func (p *Page[T]) Refresh(ctx context.Context) error {
	p.mu.Lock()
	need := p.statusStale || !p.known
	p.mu.Unlock()
	if !need {
		return nil
	}

	status, err := views.Typed[domain.GameStatus](ctx, p.deps.Registry, domain.StatusView(p.game))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusStale = p.deps.Registry.IsStale(domain.StatusView(p.game))
	p.setBalanceLocked(status.RemainingPlays)
	return nil
}

// Snapshot returns the presentation state
func (p *Page[T]) Snapshot() Snapshot[T] {
	c := p.ctrl.Snapshot()

	p.mu.Lock()
	defer p.mu.Unlock()
	s := Snapshot[T]{
		Game:         p.game,
		Status:       c.Status,
		Pending:      c.Pending,
		Error:        p.message,
		ShowTopUp:    p.showTopUp,
		Balance:      p.balance,
		BalanceKnown: p.known,
		Outcome:      c.Outcome,
		Timeline:     c.Timeline,
		StatusStale:  p.statusStale,
	}
	if c.Outcome != nil {
		s.Notices = p.notices
	}
	s.CanTrigger = !p.closed && !p.exhaustedLocked() && c.Status != animation.StatusRequesting &&
		c.Status != animation.StatusAnimating && !c.Pending && !c.Closed
	return s
}

// Render formats the snapshot as one line of text
func (p *Page[T]) Render() string {
	s := p.Snapshot()
	line := fmt.Sprintf("[%s] %s", p.game, s.Status)
	if s.BalanceKnown {
		line += fmt.Sprintf(" plays=%d", s.Balance)
	}
	if s.Pending {
		line += " (waiting)"
	}
	if s.Status == animation.StatusAnimating {
		line += fmt.Sprintf(" reveal in %s", s.Timeline.Duration)
	}
	if s.Outcome != nil && p.render != nil {
		line += " | " + p.render(s.Outcome.Result)
	}
	if s.Error != "" {
		line += " | " + s.Error
	}
	if s.ShowTopUp {
		line += " | " + TopUpPrompt
	}
	return line
}

// Close unmounts the page. A play the server already applied still marks the shared
// views stale, whether it was mid-animation or its response lands after the close.
func (p *Page[T]) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	unsubscribe := p.unsubscribe
	p.mu.Unlock()

	p.ctrl.Close()
	if unsubscribe != nil {
		unsubscribe()
	}
}

type nopNotifier struct{}

func (nopNotifier) Toast(domain.GameType, domain.Reward, string) {}
func (nopNotifier) LedgerAccrued(domain.GameType, int64, string) {}
