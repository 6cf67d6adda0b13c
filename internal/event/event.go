package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/TokenArcade_Go/internal/domain"
)

// Type represents the type of an event
type Type string

// Event represents a generic event in the client
type Event struct {
	Version   string      `json:"version"`
	Type      Type        `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp int64       `json:"timestamp"`
}

// Common event types
const (
	PlayRevealed     Type = domain.EventTypePlayRevealed
	PlayFailed       Type = domain.EventTypePlayFailed
	ViewsInvalidated Type = domain.EventTypeViewsInvalidated
	HapticPulse      Type = domain.EventTypeHapticPulse
	PlaySettled      Type = domain.EventTypePlaySettled
)

// NewPlayRevealedEvent creates a play.revealed event
func NewPlayRevealedEvent(payload domain.PlayRevealedPayload) Event {
	return newEvent(PlayRevealed, payload)
}

// NewPlayFailedEvent creates a play.failed event
func NewPlayFailedEvent(game domain.GameType, code domain.ErrorCode) Event {
	return newEvent(PlayFailed, domain.PlayFailedPayload{Game: game, Code: code})
}

// NewViewsInvalidatedEvent creates a views.invalidated event
func NewViewsInvalidatedEvent(game domain.GameType, views []domain.ViewKey) Event {
	return newEvent(ViewsInvalidated, domain.ViewsInvalidatedPayload{Game: game, Views: views})
}

// NewHapticPulseEvent creates a haptic.pulse event
func NewHapticPulseEvent(game domain.GameType, accent bool) Event {
	return newEvent(HapticPulse, domain.HapticPulsePayload{Game: game, Accent: accent})
}

// NewPlaySettledEvent creates a play.settled event
func NewPlaySettledEvent(payload domain.PlaySettledPayload) Event {
	return newEvent(PlaySettled, payload)
}

func newEvent(t Type, payload interface{}) Event {
	return Event{
		Version:   EventSchemaVersion,
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	}
}

// DecodePayload returns the payload as T. In-process events already carry the struct;
// anything else goes through a JSON round-trip.
func DecodePayload[T any](input interface{}) (T, error) {
	if v, ok := input.(T); ok {
		return v, nil
	}
	var result T
	data, err := json.Marshal(input)
	if err != nil {
		return result, err
	}
	return result, json.Unmarshal(data, &result)
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish delivers an event to every subscriber synchronously
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Type]...)
	b.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
