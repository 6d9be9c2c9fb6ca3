package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts pipeline activity per table.
type Metrics struct {
	importsTotal   *prometheus.CounterVec
	recordsCreated *prometheus.CounterVec
	photosMatched  *prometheus.CounterVec
	rowErrors      *prometheus.CounterVec
	importDuration *prometheus.HistogramVec
}

// NewMetrics registers the pipeline metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		importsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardforge_imports_total",
			Help: "Completed import invocations.",
		}, []string{"table"}),
		recordsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardforge_records_created_total",
			Help: "Records created by imports.",
		}, []string{"table"}),
		photosMatched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardforge_photos_matched_total",
			Help: "Photos resolved from archives during imports.",
		}, []string{"table"}),
		rowErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardforge_import_row_errors_total",
			Help: "Rows that failed during imports.",
		}, []string{"table"}),
		importDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cardforge_import_duration_seconds",
			Help:    "Wall time of import invocations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"table"}),
	}
}

func (m *Metrics) observeImport(table string, result *ImportResult, elapsed time.Duration) {
	m.importsTotal.WithLabelValues(table).Inc()
	m.recordsCreated.WithLabelValues(table).Add(float64(result.RecordsCreated))
	m.photosMatched.WithLabelValues(table).Add(float64(result.PhotosMatched))
	m.rowErrors.WithLabelValues(table).Add(float64(result.ErrorCount))
	m.importDuration.WithLabelValues(table).Observe(elapsed.Seconds())
}
