package views

import (
	"context"

	"github.com/osse101/TokenArcade_Go/internal/domain"
	"github.com/osse101/TokenArcade_Go/internal/event"
	"github.com/osse101/TokenArcade_Go/internal/logger"
)

// Invalidator propagates the side effects of a play to the dependent views
type Invalidator struct {
	registry *Registry
	bus      event.Bus
}

// NewInvalidator creates an invalidator; bus may be nil
func NewInvalidator(registry *Registry, bus event.Bus) *Invalidator {
	return &Invalidator{registry: registry, bus: bus}
}

// Registry returns the shared registry
func (i *Invalidator) Registry() *Registry {
	return i.registry
}

// Propagate marks the whole dependent view set of game stale, whatever the outcome held.
// It never mutates balances, so calling it twice for one outcome is harmless.
func (i *Invalidator) Propagate(ctx context.Context, game domain.GameType) []domain.ViewKey {
	keys := domain.DependentViewSet(game)
	for _, key := range keys {
		i.registry.Invalidate(key)
	}

	logger.FromContext(ctx).Debug(LogMsgPropagated, "views", keys)

	if i.bus != nil {
		if err := i.bus.Publish(ctx, event.NewViewsInvalidatedEvent(game, keys)); err != nil {
			logger.FromContext(ctx).Warn(LogMsgPublishFailed, "error", err)
		}
	}
	return keys
}

// InvalidateKeys marks arbitrary views stale, used for server-pushed changes
func (i *Invalidator) InvalidateKeys(keys ...domain.ViewKey) {
	for _, key := range keys {
		i.registry.Invalidate(key)
	}
}
