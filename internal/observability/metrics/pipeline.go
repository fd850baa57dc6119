package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adaptlearn/course-ingest/internal/core/domain"
)

// PipelineMetrics covers course processing: batches by outcome, per-file
// parse statuses, and how much text each batch yields.
type PipelineMetrics struct {
	registry *prometheus.Registry

	batchTotal    *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
	batchInFlight prometheus.Gauge
	fileTotal     *prometheus.CounterVec
	textBytes     *prometheus.HistogramVec
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	batchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adapt",
			Subsystem: "pipeline",
			Name:      "course_process_total",
			Help:      "Total processed course batches by overall status.",
		},
		[]string{"service", "status"},
	)
	batchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "adapt",
			Subsystem: "pipeline",
			Name:      "course_process_duration_seconds",
			Help:      "Course batch processing duration in seconds by overall status.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "status"},
	)
	batchInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "adapt",
			Subsystem: "pipeline",
			Name:      "course_process_in_flight",
			Help:      "Number of course batches currently being processed.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	fileTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adapt",
			Subsystem: "pipeline",
			Name:      "file_outcome_total",
			Help:      "Total per-file parse outcomes by status.",
		},
		[]string{"service", "status"},
	)
	textBytes := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "adapt",
			Subsystem: "pipeline",
			Name:      "extracted_text_bytes",
			Help:      "Distribution of extracted text size per course batch.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		},
		[]string{"service"},
	)

	registry.MustRegister(batchTotal, batchDuration, batchInFlight, fileTotal, textBytes)

	return &PipelineMetrics{
		registry:      registry,
		batchTotal:    batchTotal,
		batchDuration: batchDuration,
		batchInFlight: batchInFlight,
		fileTotal:     fileTotal,
		textBytes:     textBytes,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) StartBatch() {
	m.batchInFlight.Inc()
}

// FinishBatch records one completed (or failed) processing call. A nil
// manifest means the call failed before producing one.
func (m *PipelineMetrics) FinishBatch(service string, duration time.Duration, manifest *domain.CourseManifest, err error) {
	m.batchInFlight.Dec()

	status := "failed"
	if err == nil && manifest != nil {
		status = string(manifest.OverallStatus)
	}
	m.batchTotal.WithLabelValues(service, status).Inc()
	m.batchDuration.WithLabelValues(service, status).Observe(duration.Seconds())

	if manifest == nil {
		return
	}
	for _, f := range manifest.Files {
		m.fileTotal.WithLabelValues(service, string(f.Status)).Inc()
	}
	m.textBytes.WithLabelValues(service).Observe(float64(manifest.TextBytes))
}
