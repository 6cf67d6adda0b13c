package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Play Metrics
var (
	PlaysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePlaysTotal,
			Help: HelpTextPlaysTotal,
		},
		[]string{LabelGame, LabelResult},
	)

	RevealLag = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameRevealLag,
			Help:    HelpTextRevealLag,
			Buckets: RevealLagBuckets,
		},
		[]string{LabelGame},
	)

	ViewInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameViewInvalidations,
			Help: HelpTextViewInvalidations,
		},
		[]string{LabelView},
	)

	HapticPulses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHapticPulses,
			Help: HelpTextHapticPulses,
		},
		[]string{LabelKind},
	)
)

// Client Metrics
var (
	StreamReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameStreamReconnects,
			Help: HelpTextStreamReconnects,
		},
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameUpstreamRetries,
			Help: HelpTextUpstreamRetries,
		},
		[]string{LabelEndpoint},
	)
)

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{Timeout: ScrapeTimeout}),
	)
}
