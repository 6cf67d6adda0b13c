package sse

import (
	"time"

	"github.com/osse101/TokenArcade_Go/internal/domain"
)

// Buffer sizes
const (
	// BroadcastBufferSize is the buffer size for the broadcast channel
	BroadcastBufferSize = 100

	// ClientEventBuffer is the buffer size for each client's event channel
	ClientEventBuffer = 50

	// ClientChannelBuffer is the buffer size for register/unregister channels
	ClientChannelBuffer = 10
)

// KeepaliveInterval is how often to send keepalive pings
const KeepaliveInterval = 30 * time.Second

// Event types for SSE
const (
	EventTypeLedgerUpdated   = domain.PushLedgerUpdated
	EventTypeLevelingUpdated = domain.PushLevelingUpdated
	EventTypeTeamUpdated     = domain.PushTeamUpdated
	EventTypeGameUpdated     = domain.PushGameUpdated

	EventTypeConnected = "connected"
	EventTypeKeepalive = "keepalive"
)

// Request identity
const (
	HeaderUserID  = "X-User-ID"
	DefaultUserID = "guest"
)

// Log and error messages
const (
	LogMsgClientConnected    = "SSE client connected"
	LogMsgClientDisconnected = "SSE client disconnected"
	LogMsgEventBroadcast     = "Broadcasting SSE event"
	LogMsgEventDropped       = "SSE broadcast buffer full, event dropped"
	LogMsgWriteError         = "Failed to write SSE event"

	ErrMsgStreamingUnsupported = "SSE not supported"
)
