package animation

import "time"

// DefaultDuration applies when no reveal duration is configured
const DefaultDuration = 2500 * time.Millisecond

// Log messages
const (
	LogMsgPlayRequested = "Play requested"
	LogMsgPlayFailed    = "Play failed"
	LogMsgAnimating     = "Outcome received, reveal scheduled"
	LogMsgRevealed      = "Outcome revealed"
	LogMsgLateResponse  = "Response landed after close, play will not be revealed"
	LogMsgClosed        = "Game instance closed"
)
