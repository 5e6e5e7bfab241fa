package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	messagesTotal   *prometheus.CounterVec
	droppedTotal    *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	reconnectsTotal prometheus.Counter
	connectionState *prometheus.GaugeVec
	streamLatency   prometheus.Histogram
	signalsTotal    *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		messagesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_messages_total",
				Help: "Market data messages accepted, by data type and symbol",
			},
			[]string{"data_type", "symbol"},
		),
		droppedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_dropped_messages_total",
				Help: "Inbound messages dropped, by reason",
			},
			[]string{"reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_errors_total",
				Help: "Errors encountered, by kind",
			},
			[]string{"kind"},
		),
		reconnectsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "marketpulse_reconnects_total",
				Help: "Reconnect attempts made",
			},
		),
		connectionState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "marketpulse_connection_state",
				Help: "Connection state as a one-hot gauge per state label",
			},
			[]string{"state"},
		),
		streamLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "marketpulse_stream_latency_seconds",
				Help:    "Provider-to-client latency from server timestamps",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_signals_total",
				Help: "Signals generated, by model and level",
			},
			[]string{"model", "level"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordMessage records one accepted market-data message.
func (r *Recorder) RecordMessage(dataType, symbol string) {
	r.messagesTotal.WithLabelValues(dataType, symbol).Inc()
}

// RecordDropped records one dropped inbound message.
func (r *Recorder) RecordDropped(reason string) {
	r.droppedTotal.WithLabelValues(reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordReconnect records one reconnect attempt.
func (r *Recorder) RecordReconnect() {
	r.reconnectsTotal.Inc()
}

// RecordConnectionState sets the one-hot state gauge.
func (r *Recorder) RecordConnectionState(state string) {
	for _, s := range []string{"DISCONNECTED", "CONNECTING", "CONNECTED", "FAILED"} {
		v := 0.0
		if s == state {
			v = 1
		}
		r.connectionState.WithLabelValues(s).Set(v)
	}
}

// RecordStreamLatency observes one provider-to-client latency sample.
func (r *Recorder) RecordStreamLatency(seconds float64) {
	r.streamLatency.Observe(seconds)
}

// RecordSignal records one generated signal.
func (r *Recorder) RecordSignal(model, level string) {
	r.signalsTotal.WithLabelValues(model, level).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
