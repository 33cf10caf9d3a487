package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Call engine metrics
	SignalsTotal    *prometheus.CounterVec
	SessionsTotal   *prometheus.CounterVec
	SessionActive   prometheus.Gauge
	AdapterFailures *prometheus.CounterVec
	RingDuration    prometheus.Histogram

	// Bridge metrics
	BridgeMessages    *prometheus.CounterVec
	BridgeConnections prometheus.Gauge

	// Provider metrics
	ProviderCalls    *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates the metrics collector. Collectors register on the
// default registry, so this is called once per process.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		SignalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_call_signals_total",
				Help: "Push signals received, by delivery origin and admit decision",
			},
			[]string{"origin", "decision"},
		),
		SessionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_call_sessions_total",
				Help: "Call sessions reaching Terminal, by outcome",
			},
			[]string{"outcome"},
		),
		SessionActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_call_session_active",
				Help: "Whether a non-terminal call session exists (0 or 1)",
			},
		),
		AdapterFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_call_adapter_failures_total",
				Help: "Native call UI adapter failures, by operation",
			},
			[]string{"op"},
		),
		RingDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shell_call_ring_duration_seconds",
				Help:    "Time sessions spent ringing before leaving the state",
				Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90},
			},
		),

		BridgeMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_bridge_messages_total",
				Help: "Bridge envelopes, by direction and type",
			},
			[]string{"direction", "type"},
		),
		BridgeConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_bridge_connections",
				Help: "Open bridge websocket connections",
			},
		),

		ProviderCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_provider_calls_total",
				Help: "Capability provider tool calls",
			},
			[]string{"provider", "tool", "status"},
		),
		ProviderDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_provider_call_duration_seconds",
				Help:    "Capability provider tool call duration in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"provider", "tool"},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_uptime_seconds",
				Help: "Backend uptime in seconds",
			},
		),
	}

	go m.updateUptime()

	return m
}

func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordSignal records a push signal admit decision
func (m *Metrics) RecordSignal(origin, decision string) {
	m.SignalsTotal.WithLabelValues(origin, decision).Inc()
}

// RecordSessionOutcome records a session reaching Terminal
func (m *Metrics) RecordSessionOutcome(outcome string) {
	m.SessionsTotal.WithLabelValues(outcome).Inc()
}

// SetSessionActive flips the live-session gauge
func (m *Metrics) SetSessionActive(active bool) {
	if active {
		m.SessionActive.Set(1)
	} else {
		m.SessionActive.Set(0)
	}
}

// RecordAdapterFailure records a native call UI failure
func (m *Metrics) RecordAdapterFailure(op string) {
	m.AdapterFailures.WithLabelValues(op).Inc()
}

// RecordRingDuration records how long a session rang
func (m *Metrics) RecordRingDuration(d time.Duration) {
	m.RingDuration.Observe(d.Seconds())
}

// RecordBridgeMessage records a bridge envelope
func (m *Metrics) RecordBridgeMessage(direction, msgType string) {
	m.BridgeMessages.WithLabelValues(direction, msgType).Inc()
}

// IncBridgeConnections increments the bridge connection gauge
func (m *Metrics) IncBridgeConnections() {
	m.BridgeConnections.Inc()
}

// DecBridgeConnections decrements the bridge connection gauge
func (m *Metrics) DecBridgeConnections() {
	m.BridgeConnections.Dec()
}

// RecordProviderCall records a provider tool call
func (m *Metrics) RecordProviderCall(provider, tool, status string, duration time.Duration) {
	m.ProviderCalls.WithLabelValues(provider, tool, status).Inc()
	m.ProviderDuration.WithLabelValues(provider, tool).Observe(duration.Seconds())
}
