package gate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/TokenArcade_Go/internal/domain"
)

func TestGate_SubmitReturnsResult(t *testing.T) {
	g := New[int]()

	got, err := g.Submit(context.Background(), func(ctx context.Context) (int, error) {
		assert.True(t, g.Pending(), "gate is pending while the call runs")
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.False(t, g.Pending())
	assert.NoError(t, g.Err())
}

func TestGate_RejectsWhilePending(t *testing.T) {
	g := New[string]()
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32

	go func() {
		_, _ = g.Submit(context.Background(), func(ctx context.Context) (string, error) {
			calls.Add(1)
			close(started)
			<-release
			return "first", nil
		})
	}()
	<-started

	_, err := g.Submit(context.Background(), func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "second", nil
	})

	assert.ErrorIs(t, err, domain.ErrAlreadyPending)
	assert.Equal(t, int32(1), calls.Load(), "rejected submit must not call upstream")
	close(release)
}

func TestGate_ConcurrentTriggersCollapseToOneCall(t *testing.T) {
	g := New[int]()
	var calls atomic.Int32
	var wg sync.WaitGroup
	var rejected atomic.Int32

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.Submit(context.Background(), func(ctx context.Context) (int, error) {
				calls.Add(1)
				time.Sleep(50 * time.Millisecond)
				return 1, nil
			})
			if errors.Is(err, domain.ErrAlreadyPending) {
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(7), rejected.Load())
}

func TestGate_ErrorReopensGate(t *testing.T) {
	g := New[int]()
	upstream := &domain.UpstreamError{Code: domain.CodeDailyLimitReached, Status: 429}

	_, err := g.Submit(context.Background(), func(ctx context.Context) (int, error) {
		return 0, upstream
	})
	require.ErrorIs(t, err, upstream)
	assert.Equal(t, upstream, g.Err())
	assert.False(t, g.Pending())

	got, err := g.Submit(context.Background(), func(ctx context.Context) (int, error) {
		assert.NoError(t, g.Err(), "error is cleared when a new call starts")
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestGate_PendingListener(t *testing.T) {
	g := New[int]()
	var seen []bool
	g.OnPendingChange(func(p bool) { seen = append(seen, p) })

	_, _ = g.Submit(context.Background(), func(ctx context.Context) (int, error) { return 1, nil })

	assert.Equal(t, []bool{true, false}, seen)
}

func TestGate_CloseFlagsLateResult(t *testing.T) {
	g := New[int]()
	var seen []bool
	g.OnPendingChange(func(p bool) { seen = append(seen, p) })

	got, err := g.Submit(context.Background(), func(ctx context.Context) (int, error) {
		g.Close()
		return 99, nil
	})

	assert.ErrorIs(t, err, ErrSettledAfterClose)
	assert.ErrorIs(t, err, domain.ErrControllerClosed)
	assert.Equal(t, 99, got, "the upstream applied the call, so the result is kept")
	assert.Equal(t, []bool{true}, seen, "no notifications after close")
	assert.False(t, g.Pending())

	_, err = g.Submit(context.Background(), func(ctx context.Context) (int, error) {
		t.Fatal("closed gate must not call upstream")
		return 0, nil
	})
	assert.ErrorIs(t, err, domain.ErrControllerClosed)
}

func TestGate_CloseDropsLateFailure(t *testing.T) {
	g := New[int]()
	upstream := errors.New("boom")

	_, err := g.Submit(context.Background(), func(ctx context.Context) (int, error) {
		g.Close()
		return 0, upstream
	})

	assert.ErrorIs(t, err, domain.ErrControllerClosed)
	assert.NotErrorIs(t, err, ErrSettledAfterClose)
	assert.NotErrorIs(t, err, upstream)
}
