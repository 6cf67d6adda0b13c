package game

import (
	"errors"
	"time"
)

// Default reveal durations per game
const (
	DefaultWheelDuration = 3000 * time.Millisecond
	DefaultDiceDuration  = 2500 * time.Millisecond
	DefaultCardDuration  = 2800 * time.Millisecond
)

// TopUpPrompt is shown next to an exhausted balance
const TopUpPrompt = "type 'topup' for more tokens"

// ErrNoTopUp is returned when no top-up flow is configured
var ErrNoTopUp = errors.New("no top-up flow configured")

// Shared view summary
const (
	summaryUnknown = "?"
	summaryLedger  = "vault=%d"
	summaryLevel   = "%s lv%d xp=%d/%d"
	summaryTeam    = "team=%s score=%d rank=%d"
)

// Log messages
const (
	LogMsgPublishFailed = "Failed to publish game event"
	LogMsgToppedUp      = "Balance topped up"
	LogMsgWatchRefresh  = "Refreshing stale views"
)
