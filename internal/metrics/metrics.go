// Package metrics exposes Prometheus collectors for edits, bio generation and uploads.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registry *prometheus.Registry

	edits       *prometheus.CounterVec
	bioRequests *prometheus.CounterVec
	bioLatency  prometheus.Histogram
	uploads     *prometheus.CounterVec
	wsClients   prometheus.Gauge
}

// New registers all collectors on a fresh registry so tests can build many instances.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		edits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "socialforge",
			Name:      "profile_edits_total",
			Help:      "Profile edits applied, by field.",
		}, []string{"field"}),
		bioRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "socialforge",
			Name:      "bio_generations_total",
			Help:      "Bio generation calls, by outcome.",
		}, []string{"outcome"}),
		bioLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "socialforge",
			Name:      "bio_generation_seconds",
			Help:      "Bio generation latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		}),
		uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "socialforge",
			Name:      "image_uploads_total",
			Help:      "Local image selections, by result.",
		}, []string{"result"}),
		wsClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "socialforge",
			Name:      "live_preview_clients",
			Help:      "Connected live preview websocket clients.",
		}),
	}
}

func (m *Metrics) ObserveEdit(field string) {
	if m == nil {
		return
	}
	m.edits.WithLabelValues(field).Inc()
}

func (m *Metrics) ObserveBio(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.bioRequests.WithLabelValues(outcome).Inc()
	m.bioLatency.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveUpload(result string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result).Inc()
}

func (m *Metrics) LiveClientConnected() {
	if m == nil {
		return
	}
	m.wsClients.Inc()
}

func (m *Metrics) LiveClientDisconnected() {
	if m == nil {
		return
	}
	m.wsClients.Dec()
}
