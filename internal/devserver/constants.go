package devserver

import "time"

// Request identity and limits
const (
	HeaderAPIKey = "X-API-Key"
	HeaderUserID = "X-User-ID"
	HeaderPlayID = "X-Play-ID"

	DefaultUserID = "guest"

	MaxRequestBodyBytes = 1 << 20
	ReadHeaderTimeout   = 5 * time.Second
)

// Game rules
const (
	XPPerPlay     = 10
	XPPerLevel    = 100
	DiceRolls     = 3
	DefaultSeason = "S1"
)

// Teams a new player is assigned to
var defaultTeams = []struct{ ID, Name string }{
	{"red", "Red Foxes"},
	{"blue", "Blue Whales"},
}

// Upstream error messages sent alongside the error code
const (
	ErrMsgFeatureDisabled = "game is disabled"
	ErrMsgInvalidSchedule = "game schedule is misconfigured"
	ErrMsgNoFeatureToday  = "game is not scheduled today"
	ErrMsgDailyLimit      = "daily play limit reached"
	ErrMsgNotEnoughTokens = "not enough tokens"
	ErrMsgInvalidGame     = "unknown game"
	ErrMsgInvalidRequest  = "invalid request"
	ErrMsgUnauthorized    = "unauthorized"
)

// Codes for requests rejected before they reach the game rules
const (
	CodeInvalidGame    = "INVALID_GAME"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeUnauthorized   = "UNAUTHORIZED"
)

// HealthStatusOK is the /healthz body status
const HealthStatusOK = "ok"

// Validation
const (
	ValidationTagGame      = "game"
	ValidationMsgGame      = "Unknown game"
	ValidationMsgRequired  = "This field is required"
	ValidationMsgMax       = "Must have at most %s entries"
	ValidationMsgDefault   = "Invalid value"
	ValidationMsgMalformed = "Invalid request format"
)

// Log messages
const (
	LogMsgServerStarting   = "Dev game server starting"
	LogMsgRequestCompleted = "Request completed"
	LogMsgPlayApplied      = "Play applied"
	LogMsgPlayRejected     = "Play rejected"
	LogMsgPublishFailed    = "Failed to publish play settled event"
	LogMsgEncodeFailed     = "Failed to encode JSON response"
	LogMsgAuthFailed       = "Authentication failed"
	LogMsgFeatureUpdated   = "Feature schedule updated"
	LogMsgTrialGranted     = "Trial tokens granted"
)
