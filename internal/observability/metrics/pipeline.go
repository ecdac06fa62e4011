package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PipelineMetrics struct {
	registry *prometheus.Registry

	turnsTotal          *prometheus.CounterVec
	turnDuration        *prometheus.HistogramVec
	contextPassages     *prometheus.HistogramVec
	rerankFallbackTotal *prometheus.CounterVec
}

func NewPipelineMetrics() *PipelineMetrics {
	registry := prometheus.NewRegistry()

	turnsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assistant",
			Subsystem: "pipeline",
			Name:      "turns_total",
			Help:      "Total handled conversation turns by outcome.",
		},
		[]string{"service", "outcome"},
	)
	turnDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "assistant",
			Subsystem: "pipeline",
			Name:      "turn_duration_seconds",
			Help:      "End-to-end turn duration in seconds by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "outcome"},
	)
	contextPassages := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "assistant",
			Subsystem: "pipeline",
			Name:      "context_passages",
			Help:      "Distribution of passages assembled into the generation context.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		},
		[]string{"service"},
	)
	rerankFallbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assistant",
			Subsystem: "pipeline",
			Name:      "rerank_fallback_total",
			Help:      "Turns answered from raw retrieval order because reranking was unavailable.",
		},
		[]string{"service"},
	)

	registry.MustRegister(turnsTotal, turnDuration, contextPassages, rerankFallbackTotal)

	return &PipelineMetrics{
		registry:            registry,
		turnsTotal:          turnsTotal,
		turnDuration:        turnDuration,
		contextPassages:     contextPassages,
		rerankFallbackTotal: rerankFallbackTotal,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) ObserveTurn(service, outcome string, passages int, degraded bool, duration time.Duration) {
	m.turnsTotal.WithLabelValues(service, outcome).Inc()
	m.turnDuration.WithLabelValues(service, outcome).Observe(duration.Seconds())
	m.contextPassages.WithLabelValues(service).Observe(float64(passages))
	if degraded {
		m.rerankFallbackTotal.WithLabelValues(service).Inc()
	}
}
