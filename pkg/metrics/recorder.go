package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the prometheus registry for the service. A nil *Recorder is a no-op.
type Recorder struct {
	registry *prometheus.Registry

	oracleRequests *prometheus.CounterVec
	oracleDuration *prometheus.HistogramVec
	oracleTokens   *prometheus.CounterVec
	actionResults  *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

// NewRecorder registers the service collectors on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		oracleRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "breatheeasy_oracle_requests_total",
			Help: "Oracle calls by capability and outcome (ok, schema_validation, oracle_unavailable).",
		}, []string{"capability", "outcome"}),
		oracleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "breatheeasy_oracle_request_duration_seconds",
			Help:    "Oracle call latency per capability.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"capability"}),
		oracleTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "breatheeasy_oracle_tokens_total",
			Help: "Tokens reported by the oracle provider.",
		}, []string{"capability", "kind"}),
		actionResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "breatheeasy_action_results_total",
			Help: "Action envelope results by action and success flag.",
		}, []string{"action", "success"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "breatheeasy_dashboard_sessions",
			Help: "Live dashboard sessions.",
		}),
	}
	r.registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
		r.oracleRequests,
		r.oracleDuration,
		r.oracleTokens,
		r.actionResults,
		r.activeSessions,
	)
	return r
}

// ObserveOracle records one oracle round trip.
func (r *Recorder) ObserveOracle(capability, outcome string, elapsed time.Duration, usage TokenUsage) {
	if r == nil {
		return
	}
	r.oracleRequests.WithLabelValues(capability, outcome).Inc()
	r.oracleDuration.WithLabelValues(capability).Observe(elapsed.Seconds())
	if usage.IsZero() {
		return
	}
	if usage.PromptTokens > 0 {
		r.oracleTokens.WithLabelValues(capability, "prompt").Add(float64(usage.PromptTokens))
	}
	if usage.CompletionTokens > 0 {
		r.oracleTokens.WithLabelValues(capability, "completion").Add(float64(usage.CompletionTokens))
	}
}

// ObserveAction records an envelope result.
func (r *Recorder) ObserveAction(action string, success bool) {
	if r == nil {
		return
	}
	label := "false"
	if success {
		label = "true"
	}
	r.actionResults.WithLabelValues(action, label).Inc()
}

// SetActiveSessions publishes the live session count.
func (r *Recorder) SetActiveSessions(n int) {
	if r == nil {
		return
	}
	r.activeSessions.Set(float64(n))
}

// Handler serves the registry in the prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
