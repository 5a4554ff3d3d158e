// Package metrics exposes pipeline counters on a private Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joseph-ayodele/scanocr/constants"
	"github.com/joseph-ayodele/scanocr/internal/core/pipeline"
)

type PipelineMetrics struct {
	registry *prometheus.Registry

	pagesTotal         *prometheus.CounterVec
	pageQualityTotal   *prometheus.CounterVec
	stageDuration      *prometheus.HistogramVec
	documentsTotal     *prometheus.CounterVec
	preprocessFallback prometheus.Counter
	documentsInFlight  prometheus.Gauge
}

func NewPipelineMetrics() *PipelineMetrics {
	registry := prometheus.NewRegistry()

	pagesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scanocr",
			Subsystem: "pipeline",
			Name:      "pages_total",
			Help:      "Page attempts by final status.",
		},
		[]string{"status"},
	)
	pageQualityTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scanocr",
			Subsystem: "pipeline",
			Name:      "page_quality_total",
			Help:      "Written pages by quality tier.",
		},
		[]string{"tier"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scanocr",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Time spent per pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)
	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scanocr",
			Subsystem: "pipeline",
			Name:      "documents_total",
			Help:      "Processed documents by terminal status.",
		},
		[]string{"status"},
	)
	preprocessFallback := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "scanocr",
			Subsystem: "pipeline",
			Name:      "preprocess_fallback_total",
			Help:      "Pages recognized from the original image because enhancement failed.",
		},
	)
	documentsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "scanocr",
			Subsystem: "pipeline",
			Name:      "documents_in_flight",
			Help:      "Documents currently being processed.",
		},
	)

	registry.MustRegister(pagesTotal, pageQualityTotal, stageDuration, documentsTotal, preprocessFallback, documentsInFlight)

	return &PipelineMetrics{
		registry:           registry,
		pagesTotal:         pagesTotal,
		pageQualityTotal:   pageQualityTotal,
		stageDuration:      stageDuration,
		documentsTotal:     documentsTotal,
		preprocessFallback: preprocessFallback,
		documentsInFlight:  documentsInFlight,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) DocumentStarted() {
	m.documentsInFlight.Inc()
}

func (m *PipelineMetrics) DocumentFinished(res pipeline.DocumentResult) {
	m.documentsInFlight.Dec()
	m.documentsTotal.WithLabelValues(string(res.Status)).Inc()
}

func (m *PipelineMetrics) PageFinished(res pipeline.PageResult) {
	m.pagesTotal.WithLabelValues(string(res.Status)).Inc()
	if res.Status == constants.PageWritten && res.Tier != "" {
		m.pageQualityTotal.WithLabelValues(string(res.Tier)).Inc()
	}
	if res.PreprocessErr != nil {
		m.preprocessFallback.Inc()
	}
}

func (m *PipelineMetrics) StageObserved(stage string, d time.Duration) {
	if d < 0 {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
