package sse

import (
	"context"
	"log/slog"

	"github.com/osse101/TokenArcade_Go/internal/domain"
	"github.com/osse101/TokenArcade_Go/internal/event"
)

// TeamDirectory resolves the members of a team
type TeamDirectory interface {
	Members(teamID string) []string
}

// LedgerUpdatedPayload is pushed when a user's vault balance changed
type LedgerUpdatedPayload struct {
	Accrual int64 `json:"accrual"`
}

// LevelingUpdatedPayload is pushed when a user gained season XP
type LevelingUpdatedPayload struct {
	XPGained int64 `json:"xp_gained"`
}

// TeamUpdatedPayload is pushed to every member when a team's score changed
type TeamUpdatedPayload struct {
	TeamID string `json:"team_id"`
	Score  int64  `json:"score"`
}

// GameUpdatedPayload is pushed when a game's status changed for the user
type GameUpdatedPayload struct {
	Game domain.GameType `json:"game"`
}

// Subscriber bridges the internal event bus to the SSE hub
type Subscriber struct {
	hub   *Hub
	bus   event.Bus
	teams TeamDirectory
}

// NewSubscriber creates a new SSE subscriber
func NewSubscriber(hub *Hub, bus event.Bus, teams TeamDirectory) *Subscriber {
	return &Subscriber{
		hub:   hub,
		bus:   bus,
		teams: teams,
	}
}

// Subscribe registers handlers for all relevant event types
func (s *Subscriber) Subscribe() {
	s.bus.Subscribe(event.PlaySettled, s.handlePlaySettled)

	slog.Info("SSE subscriber registered for event types",
		"types", []string{string(event.PlaySettled)})
}

// handlePlaySettled fans one applied play out to the pushes each affected view needs
func (s *Subscriber) handlePlaySettled(_ context.Context, evt event.Event) error {
	payload, err := event.DecodePayload[domain.PlaySettledPayload](evt.Payload)
	if err != nil {
		slog.Warn("Invalid play settled event payload", "error", err)
		return nil
	}

	s.hub.BroadcastTo(payload.UserID, EventTypeGameUpdated, GameUpdatedPayload{Game: payload.Game})
	if payload.LedgerAccrual > 0 {
		s.hub.BroadcastTo(payload.UserID, EventTypeLedgerUpdated, LedgerUpdatedPayload{Accrual: payload.LedgerAccrual})
	}
	if payload.XPGained > 0 {
		s.hub.BroadcastTo(payload.UserID, EventTypeLevelingUpdated, LevelingUpdatedPayload{XPGained: payload.XPGained})
	}

	if payload.TeamID != "" && s.teams != nil {
		team := TeamUpdatedPayload{TeamID: payload.TeamID, Score: payload.TeamScore}
		for _, member := range s.teams.Members(payload.TeamID) {
			s.hub.BroadcastTo(member, EventTypeTeamUpdated, team)
		}
	}

	slog.Debug(LogMsgEventBroadcast,
		"event_type", evt.Type,
		"user_id", payload.UserID,
		"game", payload.Game,
		"team_id", payload.TeamID)
	return nil
}
