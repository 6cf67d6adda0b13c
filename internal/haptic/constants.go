package haptic

import "time"

// Default cadence
const (
	DefaultInitialDelay = 350 * time.Millisecond
	DefaultInterval     = 420 * time.Millisecond
	DefaultMaxPulses    = 6
	DefaultPulse        = 18 * time.Millisecond
	DefaultAccentLead   = 220 * time.Millisecond
)

// Log messages
const (
	LogMsgVibrateFailed = "Vibration request failed"
)
