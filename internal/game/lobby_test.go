package game

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/TokenArcade_Go/internal/domain"
)

// countingViews registers loaders on the fixture registry that count their fetches
type countingViews struct {
	status atomic.Int32
	ledger atomic.Int32
	level  atomic.Int32
	team   atomic.Int32
}

func registerCountingViews(f *fixture) *countingViews {
	c := &countingViews{}
	for _, g := range domain.AllGames {
		f.registry.Register(domain.StatusView(g), func(ctx context.Context) (any, error) {
			c.status.Add(1)
			return domain.GameStatus{Game: g, Enabled: true, RemainingPlays: 3}, nil
		})
	}
	f.registry.Register(domain.ViewLedger, func(ctx context.Context) (any, error) {
		n := c.ledger.Add(1)
		return domain.LedgerStatus{Balance: int64(n) * 10}, nil
	})
	f.registry.Register(domain.ViewLeveling, func(ctx context.Context) (any, error) {
		n := c.level.Add(1)
		return domain.LevelingStatus{Season: "S1", Level: 1, XP: int64(n) * 10, NextLevelXP: 100}, nil
	})
	f.registry.Register(domain.ViewTeam, func(ctx context.Context) (any, error) {
		n := c.team.Add(1)
		return domain.TeamStatus{TeamID: "red", TeamName: "Red Foxes", Score: int64(n) * 10, Rank: 1}, nil
	})
	return c
}

func TestLobby_RevealRefetchesSharedViewsOnce(t *testing.T) {
	f := newFixture(t)
	f.api.set(diceWin, nil)
	counts := registerCountingViews(f)
	lobby := NewDefaultLobby(f.deps, nil)
	t.Cleanup(lobby.Close)
	f.notifier.On("Toast", domain.GameDice, domain.Reward{Type: "TOKEN", Value: 5}, mock.Anything).Return()
	f.notifier.On("LedgerAccrued", domain.GameDice, int64(10), mock.Anything).Return()

	ctx := context.Background()
	require.NoError(t, lobby.Refresh(ctx))
	assert.Equal(t, int32(1), counts.ledger.Load())
	assert.Equal(t, "vault=10 | S1 lv1 xp=10/100 | team=Red Foxes score=10 rank=1", lobby.Render()[3])

	require.NoError(t, lobby.Trigger(ctx, domain.GameDice))
	f.clock.Advance(DefaultDiceDuration)
	assert.Equal(t, "vault=? | lv? | team=?", lobby.Render()[3], "stale views are never shown")

	require.NoError(t, lobby.Refresh(ctx))
	require.NoError(t, lobby.Refresh(ctx))

	assert.Equal(t, int32(2), counts.ledger.Load(), "one refetch per reveal")
	assert.Equal(t, int32(2), counts.level.Load())
	assert.Equal(t, int32(2), counts.team.Load())
	assert.Equal(t, "vault=20 | S1 lv1 xp=20/100 | team=Red Foxes score=20 rank=1", lobby.Render()[3])
	for _, key := range domain.SharedViews() {
		assert.False(t, f.registry.IsStale(key), key)
	}
}

func TestLobby_RefreshSkipsUnregisteredSharedViews(t *testing.T) {
	f := newFixture(t)
	for _, g := range domain.AllGames {
		f.registry.Register(domain.StatusView(g), func(ctx context.Context) (any, error) {
			return domain.GameStatus{Game: g, RemainingPlays: 1}, nil
		})
	}
	lobby := NewDefaultLobby(f.deps, nil)
	t.Cleanup(lobby.Close)

	require.NoError(t, lobby.Refresh(context.Background()))
	assert.Equal(t, "vault=? | lv? | team=?", lobby.Render()[3])
}

func TestLobby_WatchRefreshesAfterReveal(t *testing.T) {
	f := newFixture(t)
	f.api.set(diceBlank, nil)
	counts := registerCountingViews(f)
	lobby := NewDefaultLobby(f.deps, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		lobby.Close()
	})
	require.NoError(t, lobby.Refresh(ctx))

	var passes atomic.Int32
	lobby.Watch(ctx, func(err error) {
		assert.NoError(t, err)
		passes.Add(1)
	})

	require.NoError(t, lobby.Trigger(ctx, domain.GameDice))
	f.clock.Advance(DefaultDiceDuration)

	require.Eventually(t, func() bool {
		for _, key := range domain.SharedViews() {
			if f.registry.IsStale(key) {
				return false
			}
		}
		return counts.ledger.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.Positive(t, passes.Load())

	dice, err := lobby.Page(domain.GameDice)
	require.NoError(t, err)
	assert.Contains(t, dice.Render(), "plays=3", "page status refetched too")
}

func TestLobby_WatchStopsOnClose(t *testing.T) {
	f := newFixture(t)
	registerCountingViews(f)
	lobby := NewDefaultLobby(f.deps, nil)

	var passes atomic.Int32
	lobby.Watch(context.Background(), func(error) { passes.Add(1) })
	lobby.Close()

	// let the watcher observe the close before invalidating
	time.Sleep(20 * time.Millisecond)
	f.registry.Invalidate(domain.ViewLedger)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, passes.Load())
}
