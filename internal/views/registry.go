// Package views holds the client's cached views (game status, ledger, leveling, team)
// behind an explicit publish/subscribe registry. Invalidation only marks a view stale;
// the next read refetches it, and concurrent refetches of one view share a single call.
package views

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/osse101/TokenArcade_Go/internal/domain"
	"github.com/osse101/TokenArcade_Go/internal/logger"
)

// Loader fetches the current value of a view
type Loader func(ctx context.Context) (any, error)

// Listener is told when a view became stale
type Listener func(key domain.ViewKey)

// Registry is shared by every game instance; none owns it
type Registry struct {
	mu        sync.RWMutex
	loaders   map[domain.ViewKey]Loader
	listeners map[domain.ViewKey]map[uint64]Listener
	nextID    uint64
	stale     map[domain.ViewKey]bool
	versions  map[domain.ViewKey]uint64
	marks     map[domain.ViewKey]int

	cache *expirable.LRU[domain.ViewKey, any]
	group singleflight.Group
}

// NewRegistry creates a registry caching at most size views for ttl each
func NewRegistry(size int, ttl time.Duration) *Registry {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Registry{
		loaders:   make(map[domain.ViewKey]Loader),
		listeners: make(map[domain.ViewKey]map[uint64]Listener),
		stale:     make(map[domain.ViewKey]bool),
		versions:  make(map[domain.ViewKey]uint64),
		marks:     make(map[domain.ViewKey]int),
		cache:     expirable.NewLRU[domain.ViewKey, any](size, nil, ttl),
	}
}

// Register installs the loader of a view, replacing any previous one
func (r *Registry) Register(key domain.ViewKey, loader Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[key] = loader
}

// Keys returns every registered view in sorted order
func (r *Registry) Keys() []domain.ViewKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]domain.ViewKey, 0, len(r.loaders))
	for k := range r.loaders {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Subscribe registers fn for stale notifications of key and returns its unsubscribe func
func (r *Registry) Subscribe(key domain.ViewKey, fn Listener) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	if r.listeners[key] == nil {
		r.listeners[key] = make(map[uint64]Listener)
	}
	r.listeners[key][id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners[key], id)
	}
}

// Invalidate marks key stale and drops its cached value. Marking an already stale view
// again is a no-op, so simultaneous invalidations collapse into one refetch and one
// notification. It reports whether the view changed from fresh to stale.
func (r *Registry) Invalidate(key domain.ViewKey) bool {
	r.mu.Lock()
	r.versions[key]++
	r.cache.Remove(key)
	if r.stale[key] {
		r.mu.Unlock()
		return false
	}
	r.stale[key] = true
	r.marks[key]++
	listeners := make([]Listener, 0, len(r.listeners[key]))
	for _, fn := range r.listeners[key] {
		listeners = append(listeners, fn)
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(key)
	}
	return true
}

// IsStale reports whether key was invalidated and not refetched since
func (r *Registry) IsStale(key domain.ViewKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stale[key]
}

// Marks returns how many times key went from fresh to stale
func (r *Registry) Marks(key domain.ViewKey) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.marks[key]
}

// Peek returns the cached value of key without fetching
func (r *Registry) Peek(key domain.ViewKey) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stale[key] {
		return nil, false
	}
	return r.cache.Get(key)
}

// Get returns the cached value of key, refetching it when stale, expired or never loaded
func (r *Registry) Get(ctx context.Context, key domain.ViewKey) (any, error) {
	r.mu.RLock()
	loader, ok := r.loaders[key]
	stale := r.stale[key]
	var cached any
	var hit bool
	if !stale {
		cached, hit = r.cache.Get(key)
	}
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownView, key)
	}
	if hit {
		return cached, nil
	}

	v, err, shared := r.group.Do(string(key), func() (any, error) {
		r.mu.RLock()
		version := r.versions[key]
		r.mu.RUnlock()

		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		// an invalidation that raced the fetch wins; keep the view stale
		if r.versions[key] == version {
			r.cache.Add(key, value)
			r.stale[key] = false
		}
		return value, nil
	})
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgRefetchFailed, "view", key, "error", err)
		return nil, fmt.Errorf("failed to load view %s: %w", key, err)
	}
	if shared {
		logger.FromContext(ctx).Debug(LogMsgRefetchShared, "view", key)
	}
	return v, nil
}

// RefreshStale refetches every registered stale view in parallel
func (r *Registry) RefreshStale(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, key := range r.Keys() {
		if !r.IsStale(key) {
			continue
		}
		g.Go(func() error {
			_, err := r.Get(gctx, key)
			return err
		})
	}
	return g.Wait()
}

// Typed reads a view and asserts its type
func Typed[T any](ctx context.Context, r *Registry, key domain.ViewKey) (T, error) {
	var zero T
	v, err := r.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("view %s holds %T", key, v)
	}
	return typed, nil
}
