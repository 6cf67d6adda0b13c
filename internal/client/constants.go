package client

import "time"

// API paths
const (
	PathPlayFormat   = "/api/v1/games/%s/play"
	PathStatusFormat = "/api/v1/games/%s/status"
	PathLedger       = "/api/v1/ledger"
	PathLeveling     = "/api/v1/leveling"
	PathTeam         = "/api/v1/team"
	PathTrialTokens  = "/api/v1/tokens/trial"
	PathEvents       = "/api/v1/events"
)

// Headers
const (
	HeaderAPIKey = "X-API-Key"
	HeaderUserID = "X-User-ID"
	HeaderPlayID = "X-Play-ID"
)

// Defaults
const (
	DefaultTimeout        = 10 * time.Second
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = 500 * time.Millisecond
	DefaultMaxBackoff     = 5 * time.Second

	// MaxErrorBodySize caps how much of an error body is read
	MaxErrorBodySize = 4 * 1024
)

// Event stream configuration
const (
	streamInitialBackoff = 1 * time.Second
	streamMaxBackoff     = 30 * time.Second
	streamBufferSize     = 64 * 1024
)

// Log messages
const (
	LogMsgRequestFailed = "API request failed"
	LogMsgRetrying      = "Retrying API request"

	logMsgStreamConnected    = "Event stream connected"
	logMsgStreamStopped      = "Event stream stopped"
	logMsgStreamFailed       = "Event stream connection failed"
	logMsgStreamParseError   = "Failed to parse stream event"
	logMsgStreamHandlerError = "Stream event handler error"
)

// Control events skipped by the stream consumer
const (
	EventTypeKeepalive = "keepalive"
	EventTypeConnected = "connected"
)
