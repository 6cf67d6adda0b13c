package game

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/osse101/TokenArcade_Go/internal/domain"
	"github.com/osse101/TokenArcade_Go/internal/logger"
	"github.com/osse101/TokenArcade_Go/internal/views"
)

// Instance is the type-erased view of a page a lobby works with
type Instance interface {
	Game() domain.GameType
	CanTrigger() bool
	Trigger(ctx context.Context) error
	RequestTopUp(ctx context.Context) error
	Refresh(ctx context.Context) error
	Render() string
	Close()
}

// Lobby holds independent game instances; no ordering exists between them
type Lobby struct {
	mu     sync.RWMutex
	pages  map[domain.GameType]Instance
	views  *views.Registry
	closed bool
	done   chan struct{}
}

// NewLobby creates a lobby of the given pages
func NewLobby(pages ...Instance) *Lobby {
	l := &Lobby{
		pages: make(map[domain.GameType]Instance, len(pages)),
		done:  make(chan struct{}),
	}
	for _, p := range pages {
		l.pages[p.Game()] = p
	}
	return l
}

// NewDefaultLobby mounts the wheel, dice and card pages with their configured durations.
// The shared ledger, leveling and team views come from d.Registry.
func NewDefaultLobby(d Deps, durations map[domain.GameType]time.Duration) *Lobby {
	l := NewLobby(
		NewWheelPage(d, durations[domain.GameWheel]),
		NewDicePage(d, durations[domain.GameDice]),
		NewCardPage(d, durations[domain.GameCard]),
	)
	l.views = d.Registry
	return l
}

// Page returns the instance of game
func (l *Lobby) Page(game domain.GameType) (Instance, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, domain.ErrControllerClosed
	}
	p, ok := l.pages[game]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidGame, game)
	}
	return p, nil
}

// Games lists the mounted games in display order
func (l *Lobby) Games() []domain.GameType {
	l.mu.RLock()
	defer l.mu.RUnlock()
	order := make(map[domain.GameType]int, len(domain.AllGames))
	for i, g := range domain.AllGames {
		order[g] = i
	}
	games := make([]domain.GameType, 0, len(l.pages))
	for g := range l.pages {
		games = append(games, g)
	}
	sort.Slice(games, func(i, j int) bool { return order[games[i]] < order[games[j]] })
	return games
}

// Trigger plays game
func (l *Lobby) Trigger(ctx context.Context, game domain.GameType) error {
	p, err := l.Page(game)
	if err != nil {
		return err
	}
	return p.Trigger(ctx)
}

// Refresh reloads every page's status in parallel, then refetches whatever else went
// stale and loads shared views never fetched before
func (l *Lobby) Refresh(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, game := range l.Games() {
		p, err := l.Page(game)
		if err != nil {
			return err
		}
		g.Go(func() error { return p.Refresh(gctx) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if l.views == nil {
		return nil
	}

	if err := l.views.RefreshStale(ctx); err != nil {
		return err
	}
	registered := l.views.Keys()
	for _, key := range domain.SharedViews() {
		if !slices.Contains(registered, key) {
			continue
		}
		if _, err := l.views.Get(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Watch refreshes the lobby each time one of its views goes stale, until ctx ends or the
// lobby closes. Invalidations that land during a pass collapse into one more pass.
// onRefreshed may be nil.
func (l *Lobby) Watch(ctx context.Context, onRefreshed func(error)) {
	if l.views == nil {
		return
	}

	kick := make(chan struct{}, 1)
	notify := func(domain.ViewKey) {
		select {
		case kick <- struct{}{}:
		default:
		}
	}
	var unsubscribe []func()
	for _, key := range l.views.Keys() {
		unsubscribe = append(unsubscribe, l.views.Subscribe(key, notify))
	}

	go func() {
		defer func() {
			for _, fn := range unsubscribe {
				fn()
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case <-l.done:
				return
			case <-kick:
				logger.FromContext(ctx).Debug(LogMsgWatchRefresh)
				err := l.Refresh(ctx)
				if onRefreshed != nil {
					onRefreshed(err)
				}
			}
		}
	}()
}

// Render returns one line per page, followed by the shared views when the lobby has them
func (l *Lobby) Render() []string {
	games := l.Games()
	lines := make([]string, 0, len(games)+1)
	for _, game := range games {
		if p, err := l.Page(game); err == nil {
			lines = append(lines, p.Render())
		}
	}
	if l.views != nil {
		lines = append(lines, l.summary())
	}
	return lines
}

// summary renders the cached shared views; stale or unloaded ones show as unknown
func (l *Lobby) summary() string {
	parts := make([]string, 0, 3)

	if v, ok := peek[domain.LedgerStatus](l.views, domain.ViewLedger); ok {
		parts = append(parts, fmt.Sprintf(summaryLedger, v.Balance))
	} else {
		parts = append(parts, "vault="+summaryUnknown)
	}

	if v, ok := peek[domain.LevelingStatus](l.views, domain.ViewLeveling); ok {
		parts = append(parts, fmt.Sprintf(summaryLevel, v.Season, v.Level, v.XP, v.NextLevelXP))
	} else {
		parts = append(parts, "lv"+summaryUnknown)
	}

	if v, ok := peek[domain.TeamStatus](l.views, domain.ViewTeam); ok {
		name := v.TeamName
		if name == "" {
			name = v.TeamID
		}
		parts = append(parts, fmt.Sprintf(summaryTeam, name, v.Score, v.Rank))
	} else {
		parts = append(parts, "team="+summaryUnknown)
	}

	return strings.Join(parts, " | ")
}

func peek[T any](r *views.Registry, key domain.ViewKey) (T, bool) {
	var zero T
	v, ok := r.Peek(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// Close unmounts every page
func (l *Lobby) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	pages := l.pages
	l.mu.Unlock()

	close(l.done)
	for _, p := range pages {
		p.Close()
	}
}
