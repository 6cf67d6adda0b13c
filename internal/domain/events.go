package domain

import "time"

// Event type constants used for event bus subscriptions and metrics tracking.
//
// Event types follow the pattern: <entity>.<action> (e.g., "play.revealed")
const (
	// EventTypePlayRevealed is published when a play's outcome is disclosed to the user
	EventTypePlayRevealed = "play.revealed"

	// EventTypePlayFailed is published when the server rejected a play
	EventTypePlayFailed = "play.failed"

	// EventTypeViewsInvalidated is published after a play marked its dependent views stale
	EventTypeViewsInvalidated = "views.invalidated"

	// EventTypeHapticPulse is published for every pulse that reached the device
	EventTypeHapticPulse = "haptic.pulse"

	// EventTypePlaySettled is published by the dev game server once a play was applied
	EventTypePlaySettled = "play.settled"
)

// Server-pushed event types consumed by the event stream client
const (
	PushLedgerUpdated   = "ledger.updated"
	PushLevelingUpdated = "leveling.updated"
	PushTeamUpdated     = "team.updated"
	PushGameUpdated     = "game.updated"
)

// PlayRevealedPayload is the event payload for play.revealed events
type PlayRevealedPayload struct {
	PlayID        string               `json:"play_id"`
	Game          GameType             `json:"game"`
	Reward        *Reward              `json:"reward,omitempty"`
	Class         RewardClassification `json:"classification"`
	LedgerAccrual int64                `json:"ledger_accrual"`
	ReceivedAt    time.Time            `json:"received_at"`
	RevealedAt    time.Time            `json:"revealed_at"`
}

// PlayFailedPayload is the event payload for play.failed events
type PlayFailedPayload struct {
	Game GameType  `json:"game"`
	Code ErrorCode `json:"code"`
}

// ViewsInvalidatedPayload is the event payload for views.invalidated events
type ViewsInvalidatedPayload struct {
	Game  GameType  `json:"game"`
	Views []ViewKey `json:"views"`
}

// HapticPulsePayload is the event payload for haptic.pulse events
type HapticPulsePayload struct {
	Game   GameType `json:"game"`
	Accent bool     `json:"accent"`
}

// PlaySettledPayload is the event payload for play.settled events
type PlaySettledPayload struct {
	UserID        string   `json:"user_id"`
	TeamID        string   `json:"team_id,omitempty"`
	Game          GameType `json:"game"`
	LedgerAccrual int64    `json:"ledger_accrual"`
	XPGained      int64    `json:"xp_gained"`
	TeamScore     int64    `json:"team_score"`
}
