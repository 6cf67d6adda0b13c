package animation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/TokenArcade_Go/internal/domain"
	"github.com/osse101/TokenArcade_Go/internal/haptic"
	"github.com/osse101/TokenArcade_Go/internal/logger"
	"github.com/osse101/TokenArcade_Go/internal/scheduler"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const duration = 2500 * time.Millisecond

type countingVibrator struct{ pulses atomic.Int32 }

func (v *countingVibrator) Supported() bool { return true }

func (v *countingVibrator) Vibrate(...time.Duration) error {
	v.pulses.Add(1)
	return nil
}

func intDecoder(resp domain.PlayResponse) (int, error) {
	return resp.RemainingPlays, nil
}

func instantPlay(calls *atomic.Int32) PlayFunc {
	return func(ctx context.Context) (domain.PlayResponse, error) {
		calls.Add(1)
		kind, value := "TOKEN", int64(5)
		return domain.PlayResponse{RewardType: &kind, RewardValue: &value, RemainingPlays: 2}, nil
	}
}

func newController(t *testing.T, play PlayFunc, vib haptic.Vibrator) (*Controller[int], *scheduler.FakeClock) {
	t.Helper()
	clock := scheduler.NewFakeClock(epoch)
	opts := Options{Game: domain.GameDice, Duration: duration, Clock: clock}
	if vib != nil {
		opts.Haptics = haptic.New(haptic.DefaultConfig(), vib, nil)
	}
	return New[int](opts, play, intDecoder), clock
}

func TestController_NeverRevealsBeforeDuration(t *testing.T) {
	var calls atomic.Int32
	c, clock := newController(t, instantPlay(&calls), nil)

	var reveals []RevealEvent[int]
	c.OnReveal(func(evt RevealEvent[int]) { reveals = append(reveals, evt) })

	require.NoError(t, c.Trigger(context.Background()))
	snap := c.Snapshot()
	assert.Equal(t, StatusAnimating, snap.Status)
	assert.Nil(t, snap.Outcome, "outcome must stay hidden while animating")
	assert.Equal(t, domain.TimelineSpinning, snap.Timeline.Status)
	assert.Equal(t, epoch, snap.Timeline.StartedAt)

	clock.Advance(duration - time.Millisecond)
	assert.Empty(t, reveals)
	assert.Equal(t, StatusAnimating, c.Snapshot().Status)

	clock.Advance(time.Millisecond)
	require.Len(t, reveals, 1)
	assert.GreaterOrEqual(t, reveals[0].RevealedAt.Sub(reveals[0].Outcome.ReceivedAt), duration)
	assert.Equal(t, duration, reveals[0].Lag)

	snap = c.Snapshot()
	assert.Equal(t, StatusRevealed, snap.Status)
	require.NotNil(t, snap.Outcome)
	assert.Equal(t, 2, snap.Outcome.Result)
	assert.Equal(t, &domain.Reward{Type: "TOKEN", Value: 5}, snap.Outcome.Reward)
	assert.NotEmpty(t, snap.Outcome.PlayID)
	assert.Equal(t, domain.TimelineRevealed, snap.Timeline.Status)
	assert.True(t, c.CanTrigger())
}

func TestController_RejectsTriggerWhileRequesting(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	entered := make(chan struct{})
	play := func(ctx context.Context) (domain.PlayResponse, error) {
		calls.Add(1)
		close(entered)
		<-release
		return domain.PlayResponse{RemainingPlays: 1}, nil
	}
	c, _ := newController(t, play, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, c.Trigger(context.Background()))
	}()
	<-entered

	assert.True(t, c.Snapshot().Pending)
	assert.False(t, c.CanTrigger())
	assert.ErrorIs(t, c.Trigger(context.Background()), domain.ErrAlreadyPending)

	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
	assert.Nil(t, c.Snapshot().Err, "gate rejection is not surfaced as an error")
}

func TestController_RejectsTriggerWhileAnimating(t *testing.T) {
	var calls atomic.Int32
	c, clock := newController(t, instantPlay(&calls), nil)

	require.NoError(t, c.Trigger(context.Background()))
	clock.Advance(time.Second)
	assert.ErrorIs(t, c.Trigger(context.Background()), domain.ErrAlreadyPending)
	assert.Equal(t, int32(1), calls.Load())

	clock.Advance(duration)
	require.NoError(t, c.Trigger(context.Background()))
	assert.Equal(t, int32(2), calls.Load())
	assert.Nil(t, c.Snapshot().Outcome, "re-arm clears the previous outcome")
}

func TestController_ConcurrentTriggersIssueOneCall(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	play := func(ctx context.Context) (domain.PlayResponse, error) {
		calls.Add(1)
		<-release
		return domain.PlayResponse{}, nil
	}
	c, _ := newController(t, play, nil)

	var wg sync.WaitGroup
	var accepted, rejected atomic.Int32
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.Trigger(context.Background())
			if errors.Is(err, domain.ErrAlreadyPending) {
				rejected.Add(1)
			} else {
				accepted.Add(1)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(1), accepted.Load())
	assert.Equal(t, int32(1), rejected.Load())
}

func TestController_UpstreamErrorReturnsToIdle(t *testing.T) {
	upstream := domain.NewUpstreamError(string(domain.CodeDailyLimitReached), "limit", 429)
	var fail atomic.Bool
	fail.Store(true)
	var calls atomic.Int32
	play := func(ctx context.Context) (domain.PlayResponse, error) {
		calls.Add(1)
		if fail.Load() {
			return domain.PlayResponse{}, upstream
		}
		return domain.PlayResponse{RemainingPlays: 3}, nil
	}
	c, clock := newController(t, play, &countingVibrator{})

	var failures []error
	c.OnFail(func(err error) { failures = append(failures, err) })

	err := c.Trigger(context.Background())
	assert.ErrorIs(t, err, domain.ErrDailyLimitReached)

	snap := c.Snapshot()
	assert.Equal(t, StatusIdle, snap.Status)
	assert.ErrorIs(t, snap.Err, domain.ErrDailyLimitReached)
	assert.Equal(t, domain.TimelineIdle, snap.Timeline.Status)
	assert.Zero(t, clock.Pending(), "no animation or haptics after a failure")
	assert.Len(t, failures, 1)
	assert.True(t, c.CanTrigger())

	fail.Store(false)
	require.NoError(t, c.Trigger(context.Background()))
	assert.Nil(t, c.Snapshot().Err, "errors clear on the next trigger")
	assert.Equal(t, int32(2), calls.Load())
}

func TestController_DecodeFailure(t *testing.T) {
	clock := scheduler.NewFakeClock(epoch)
	c := New[int](Options{Game: domain.GameCard, Duration: duration, Clock: clock},
		func(ctx context.Context) (domain.PlayResponse, error) {
			return domain.PlayResponse{RemainingPlays: 4, LedgerAccrual: 7}, nil
		},
		func(domain.PlayResponse) (int, error) { return 0, errors.New("missing prize") },
	)
	var unrevealed []domain.PlayResponse
	c.OnUnrevealed(func(_ context.Context, resp domain.PlayResponse) { unrevealed = append(unrevealed, resp) })

	err := c.Trigger(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidOutcome)
	assert.Equal(t, StatusIdle, c.Snapshot().Status)

	// the server accepted the play even though the body was unusable
	require.Len(t, unrevealed, 1)
	assert.Equal(t, 4, unrevealed[0].RemainingPlays)
	assert.Equal(t, int64(7), unrevealed[0].LedgerAccrual)
}

func TestController_CloseMidAnimationCancelsTimers(t *testing.T) {
	var calls atomic.Int32
	vib := &countingVibrator{}
	c, clock := newController(t, instantPlay(&calls), vib)

	revealed := false
	c.OnReveal(func(RevealEvent[int]) { revealed = true })
	var unrevealed []domain.PlayResponse
	c.OnUnrevealed(func(_ context.Context, resp domain.PlayResponse) { unrevealed = append(unrevealed, resp) })

	require.NoError(t, c.Trigger(context.Background()))
	clock.Advance(800 * time.Millisecond)
	pulsesBefore := vib.pulses.Load()
	assert.Equal(t, int32(2), pulsesBefore)
	require.NotZero(t, clock.Pending())

	c.Close()
	c.Close()

	require.Len(t, unrevealed, 1, "the received outcome is handed over exactly once")
	assert.Equal(t, 2, unrevealed[0].RemainingPlays)
	assert.Zero(t, clock.Pending(), "every reveal and haptic timer is cancelled")
	assert.Positive(t, clock.Cancelled())
	assert.Zero(t, c.Scope().Pending())

	clock.Advance(10 * time.Second)
	assert.False(t, revealed)
	assert.Equal(t, pulsesBefore, vib.pulses.Load())
	assert.True(t, c.Snapshot().Closed)
	assert.ErrorIs(t, c.Trigger(context.Background()), domain.ErrControllerClosed)
}

func TestController_LateResponseAfterCloseIsNotRevealed(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	play := func(ctx context.Context) (domain.PlayResponse, error) {
		close(entered)
		<-release
		return domain.PlayResponse{RemainingPlays: 9}, nil
	}
	c, clock := newController(t, play, nil)
	var unrevealed []domain.PlayResponse
	c.OnUnrevealed(func(_ context.Context, resp domain.PlayResponse) { unrevealed = append(unrevealed, resp) })

	errCh := make(chan error, 1)
	go func() { errCh <- c.Trigger(context.Background()) }()
	<-entered

	c.Close()
	close(release)

	assert.ErrorIs(t, <-errCh, domain.ErrControllerClosed)
	snap := c.Snapshot()
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Nil(t, snap.Outcome)
	assert.Nil(t, snap.Err)
	assert.Zero(t, clock.Pending())
	require.Len(t, unrevealed, 1, "the server applied the play, so it is still accounted for")
	assert.Equal(t, 9, unrevealed[0].RemainingPlays)
}

func TestController_RevealDoesNotReportUnrevealed(t *testing.T) {
	var calls atomic.Int32
	c, clock := newController(t, instantPlay(&calls), nil)
	unrevealed := 0
	c.OnUnrevealed(func(context.Context, domain.PlayResponse) { unrevealed++ })

	require.NoError(t, c.Trigger(context.Background()))
	clock.Advance(duration)
	c.Close()

	assert.Equal(t, StatusRevealed, c.Snapshot().Status)
	assert.Zero(t, unrevealed)
}

func TestController_RevealCancelsLeftoverPulses(t *testing.T) {
	var calls atomic.Int32
	vib := &countingVibrator{}
	c, clock := newController(t, instantPlay(&calls), vib)

	require.NoError(t, c.Trigger(context.Background()))
	clock.Advance(duration)

	assert.Equal(t, StatusRevealed, c.Snapshot().Status)
	assert.Zero(t, clock.Pending())
	// five ticks fit before the accent at 2280ms
	assert.Equal(t, int32(6), vib.pulses.Load())
}

func TestController_ParentScopeCloseTearsDown(t *testing.T) {
	clock := scheduler.NewFakeClock(epoch)
	root := scheduler.NewScope(clock)
	var calls atomic.Int32
	c := New[int](Options{Game: domain.GameWheel, Duration: duration, Scope: root}, instantPlay(&calls), intDecoder)

	require.NoError(t, c.Trigger(context.Background()))
	root.Close()

	assert.Zero(t, clock.Pending())
	clock.Advance(duration)
	assert.Equal(t, StatusAnimating, c.Snapshot().Status, "reveal never fires into a closed scope")
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "requesting", StatusRequesting.String())
	assert.Equal(t, "animating", StatusAnimating.String())
	assert.Equal(t, "revealed", StatusRevealed.String())
	assert.Equal(t, "unknown", Status(42).String())
}

func TestController_LogsGameOnce(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	var calls atomic.Int32
	c, clock := newController(t, instantPlay(&calls), nil)
	require.NoError(t, c.Trigger(logger.WithGame(context.Background(), string(domain.GameDice))))
	clock.Advance(duration)
	require.NoError(t, c.Trigger(context.Background()))
	c.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, "game=dice"), line)
	}
}
