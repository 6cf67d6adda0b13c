package config

import "time"

// Defaults
const (
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultAPIBaseURL = "http://localhost:8080"
	DefaultLocale     = "ko"

	DefaultWheelDuration = 3000 * time.Millisecond
	DefaultDiceDuration  = 2500 * time.Millisecond
	DefaultCardDuration  = 2800 * time.Millisecond

	DefaultViewCacheSize = 64
	DefaultViewCacheTTL  = 5 * time.Minute

	DefaultDevServerPort    = 8080
	DefaultDevDailyLimit    = 10
	DefaultDevInitialTokens = 5
	DefaultDevTrialTokens   = 3
	DefaultDevTokenCost     = 1
)
