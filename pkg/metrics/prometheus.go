package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	queryDuration *prometheus.HistogramVec
	errorsTotal   *prometheus.CounterVec
	replaysActive prometheus.Gauge
	replaysTotal  *prometheus.CounterVec
	framesSent    *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		queryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "candlerelay_store_query_duration_seconds",
				Help:    "Duration of candle store queries in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "candlerelay_errors_total",
				Help: "Total number of errors by kind",
			},
			[]string{"kind"},
		),
		replaysActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "candlerelay_replay_sessions_active",
				Help: "Number of replay sessions currently streaming",
			},
		),
		replaysTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "candlerelay_replay_sessions_total",
				Help: "Total number of finished replay sessions by outcome",
			},
			[]string{"outcome"},
		),
		framesSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "candlerelay_replay_frames_sent_total",
				Help: "Total number of frames sent over replay channels",
			},
			[]string{"type"},
		),
	}
}

// RecordQuery records a store query duration.
func (r *Recorder) RecordQuery(op string, seconds float64) {
	r.queryDuration.WithLabelValues(op).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordReplayStarted marks a replay session as active.
func (r *Recorder) RecordReplayStarted() {
	r.replaysActive.Inc()
}

// RecordReplayFinished marks a replay session as finished with an outcome.
func (r *Recorder) RecordReplayFinished(outcome string) {
	r.replaysActive.Dec()
	r.replaysTotal.WithLabelValues(outcome).Inc()
}

// RecordFrameSent counts one delivered frame.
func (r *Recorder) RecordFrameSent(frameType string) {
	r.framesSent.WithLabelValues(frameType).Inc()
}
