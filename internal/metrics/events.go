package metrics

import (
	"context"

	"github.com/osse101/TokenArcade_Go/internal/domain"
	"github.com/osse101/TokenArcade_Go/internal/event"
	"github.com/osse101/TokenArcade_Go/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		event.PlayRevealed,
		event.PlayFailed,
		event.ViewsInvalidated,
		event.HapticPulse,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.PlayRevealed:
		p, err := event.DecodePayload[domain.PlayRevealedPayload](evt.Payload)
		if err != nil {
			return e.decodeFailed(ctx, evt, err)
		}
		PlaysTotal.WithLabelValues(string(p.Game), string(p.Class.Reason)).Inc()
		RevealLag.WithLabelValues(string(p.Game)).Observe(p.RevealedAt.Sub(p.ReceivedAt).Seconds())

	case event.PlayFailed:
		p, err := event.DecodePayload[domain.PlayFailedPayload](evt.Payload)
		if err != nil {
			return e.decodeFailed(ctx, evt, err)
		}
		PlaysTotal.WithLabelValues(string(p.Game), ResultFailedPrefix+string(p.Code)).Inc()

	case event.ViewsInvalidated:
		p, err := event.DecodePayload[domain.ViewsInvalidatedPayload](evt.Payload)
		if err != nil {
			return e.decodeFailed(ctx, evt, err)
		}
		for _, view := range p.Views {
			ViewInvalidations.WithLabelValues(string(view)).Inc()
		}

	case event.HapticPulse:
		p, err := event.DecodePayload[domain.HapticPulsePayload](evt.Payload)
		if err != nil {
			return e.decodeFailed(ctx, evt, err)
		}
		kind := PulseKindTick
		if p.Accent {
			kind = PulseKindAccent
		}
		HapticPulses.WithLabelValues(kind).Inc()
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}

func (e *EventMetricsCollector) decodeFailed(ctx context.Context, evt event.Event, err error) error {
	EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
	logger.FromContext(ctx).Warn(LogMsgPayloadDecode, "type", evt.Type, "error", err)
	return err
}
