package views

import "time"

// Cache defaults
const (
	DefaultCacheSize = 64
	DefaultCacheTTL  = 5 * time.Minute
)

// Log messages
const (
	LogMsgRefetchFailed = "View refetch failed"
	LogMsgRefetchShared = "View refetch shared with concurrent caller"
	LogMsgPropagated    = "Dependent views invalidated"
	LogMsgPublishFailed = "Failed to publish invalidation event"
)
