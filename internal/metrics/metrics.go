// Package metrics exposes prometheus collectors for the editor core: debounced
// saves, undo/redo history depth, archive operations, backups and storage
// usage. A nil *Metrics is valid and records nothing.
package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "motionboard"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds all application metrics.
type Metrics struct {
	SavesTotal        *prometheus.CounterVec
	SaveDuration      prometheus.Histogram
	HistoryDepth      *prometheus.GaugeVec
	ArchiveOpsTotal   *prometheus.CounterVec
	BackupsTotal      *prometheus.CounterVec
	StorageUsageBytes prometheus.Gauge

	registerer prometheus.Registerer
}

// New creates and registers all metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates and registers all metrics with a custom registry.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		SavesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "board_saves_total",
				Help:      "Total number of board snapshot saves by result",
			},
			[]string{"result"},
		),
		SaveDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "board_save_duration_seconds",
				Help:      "Duration of board snapshot saves in seconds",
				Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		HistoryDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "history_depth",
				Help:      "Current number of snapshots on the undo and redo stacks",
			},
			[]string{"stack"},
		),
		ArchiveOpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "archive_operations_total",
				Help:      "Total number of archive exports and imports by result",
			},
			[]string{"op", "result"},
		),
		BackupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backups_total",
				Help:      "Total number of board backups uploaded by result",
			},
			[]string{"result"},
		),
		StorageUsageBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "storage_usage_bytes",
				Help:      "Approximate storage used by serialized boards and media",
			},
		),
		registerer: registerer,
	}
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// ObserveSave records one board save.
func (m *Metrics) ObserveSave(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.SavesTotal.WithLabelValues(result(err)).Inc()
	m.SaveDuration.Observe(d.Seconds())
}

// SetHistoryDepth publishes the undo and redo stack sizes.
func (m *Metrics) SetHistoryDepth(undo, redo int) {
	if m == nil {
		return
	}
	m.HistoryDepth.WithLabelValues("undo").Set(float64(undo))
	m.HistoryDepth.WithLabelValues("redo").Set(float64(redo))
}

// ObserveArchive records an export or import.
func (m *Metrics) ObserveArchive(op string, err error) {
	if m == nil {
		return
	}
	m.ArchiveOpsTotal.WithLabelValues(op, result(err)).Inc()
}

// ObserveBackup records one board backup upload.
func (m *Metrics) ObserveBackup(err error) {
	if m == nil {
		return
	}
	m.BackupsTotal.WithLabelValues(result(err)).Inc()
}

// SetStorageUsage publishes the approximate storage usage.
func (m *Metrics) SetStorageUsage(bytes int64) {
	if m == nil {
		return
	}
	m.StorageUsageBytes.Set(float64(bytes))
}

// WatchDB registers connection pool statistics for db.
func (m *Metrics) WatchDB(db *sql.DB, name string) error {
	if m == nil {
		return nil
	}
	return m.registerer.Register(collectors.NewDBStatsCollector(db, name))
}
