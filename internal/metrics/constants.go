package metrics

import "time"

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "arcade_http_requests_total"
	MetricNameHTTPRequestDuration  = "arcade_http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "arcade_http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "arcade_events_published_total"
	MetricNameEventHandlerErrors = "arcade_event_handler_errors_total"
)

// Play metric names
const (
	MetricNamePlaysTotal        = "arcade_plays_total"
	MetricNameRevealLag         = "arcade_reveal_lag_seconds"
	MetricNameViewInvalidations = "arcade_view_invalidations_total"
	MetricNameHapticPulses      = "arcade_haptic_pulses_total"
	MetricNameStreamReconnects  = "arcade_stream_reconnects_total"
	MetricNameUpstreamRetries   = "arcade_upstream_retries_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
	HelpTextEventsPublished      = "Total number of events published on the bus"
	HelpTextEventHandlerErrors   = "Total number of event handler failures"
	HelpTextPlaysTotal           = "Plays settled, by game and result"
	HelpTextRevealLag            = "Time between outcome receipt and reveal in seconds"
	HelpTextViewInvalidations    = "Dependent view invalidations, by view"
	HelpTextHapticPulses         = "Haptic pulses delivered, by kind"
	HelpTextStreamReconnects     = "Event stream reconnect attempts"
	HelpTextUpstreamRetries      = "Retried status requests, by endpoint"
)

// ============================================================================
// Labels
// ============================================================================

const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelType     = "type"
	LabelGame     = "game"
	LabelResult   = "result"
	LabelView     = "view"
	LabelKind     = "kind"
	LabelEndpoint = "endpoint"
)

// Pulse kinds
const (
	PulseKindTick   = "tick"
	PulseKindAccent = "accent"
)

// ResultFailedPrefix prefixes the upstream code on failed plays
const ResultFailedPrefix = "failed:"

// ============================================================================
// Buckets
// ============================================================================

// HTTPLatencyBuckets covers dev server handlers
var HTTPLatencyBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5}

// RevealLagBuckets sit around the configured reveal durations
var RevealLagBuckets = []float64{1, 2, 2.5, 2.8, 3, 3.5, 5, 10}

// ScrapeTimeout bounds the /metrics handler
const ScrapeTimeout = 5 * time.Second

// Log messages
const (
	LogMsgMetricsRecorded = "Metrics recorded for event"
	LogMsgPayloadDecode   = "Failed to decode event payload for metrics"
)
