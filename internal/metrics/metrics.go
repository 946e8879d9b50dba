// Package metrics defines the Prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the matchmaking service.
type Metrics struct {
	// Request lifecycle
	RequestsCreated   prometheus.Counter
	RequestsPaired    prometheus.Counter
	RequestsCancelled prometheus.Counter
	RequestsExpired   prometheus.Counter
	WaitingRequests   prometheus.Gauge

	// Channel lifecycle
	ChannelsCreated prometheus.Counter
	ChannelsEnded   prometheus.Counter
	ChannelsExpired prometheus.Counter
	ActiveChannels  prometheus.Gauge
	ChannelDuration prometheus.Histogram

	// Credential provider
	TokenMintFailures prometheus.Counter

	// HTTP API
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all metrics on the given registerer. Tests pass
// a fresh prometheus.NewRegistry() to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "pairline_requests_created_total",
			Help: "Total number of connection requests created",
		}),
		RequestsPaired: factory.NewCounter(prometheus.CounterOpts{
			Name: "pairline_requests_paired_total",
			Help: "Total number of connection requests that reached the paired state",
		}),
		RequestsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "pairline_requests_cancelled_total",
			Help: "Total number of connection requests cancelled by the caller",
		}),
		RequestsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "pairline_requests_expired_total",
			Help: "Total number of waiting requests evicted by the sweeper",
		}),
		WaitingRequests: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pairline_waiting_requests",
			Help: "Current number of requests in the waiting queue",
		}),
		ChannelsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "pairline_channels_created_total",
			Help: "Total number of channels created",
		}),
		ChannelsEnded: factory.NewCounter(prometheus.CounterOpts{
			Name: "pairline_channels_ended_total",
			Help: "Total number of channels ended by a caller",
		}),
		ChannelsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "pairline_channels_expired_total",
			Help: "Total number of channels evicted after exceeding their max duration",
		}),
		ActiveChannels: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pairline_active_channels",
			Help: "Current number of active channels",
		}),
		ChannelDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pairline_channel_duration_seconds",
			Help:    "Lifetime of ended channels in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 11), // 1s to ~17 minutes
		}),
		TokenMintFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "pairline_token_mint_failures_total",
			Help: "Total number of credential mints that fell back to a placeholder",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pairline_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status code",
		}, []string{"endpoint", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pairline_http_request_duration_seconds",
			Help:    "HTTP request latency by endpoint",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}
