// Package metrics exposes prometheus counters for reconcile and scaffold runs.
// The CLI is short-lived, so metrics are exported through a node_exporter
// textfile rather than an HTTP endpoint.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "nexrecipes"

type PrometheusMetrics struct {
	registry       *prometheus.Registry
	cronActions    *prometheus.CounterVec
	reconcileTime  *prometheus.HistogramVec
	scaffoldsTotal *prometheus.CounterVec
	filesWritten   *prometheus.CounterVec
	missingSkills  prometheus.Gauge
}

// InitPrometheusMetrics registers all collectors on a fresh registry.
func InitPrometheusMetrics(namespace string) *PrometheusMetrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		cronActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cron_reconcile_actions_total",
				Help:      "Cron reconcile results by action",
			},
			[]string{"action"},
		),
		reconcileTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cron_reconcile_duration_seconds",
				Help:      "Duration of cron reconcile passes",
				Buckets:   []float64{.05, .1, .5, 1, 5, 10, 30, 60, 120},
			},
			[]string{"outcome"},
		),
		scaffoldsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scaffolds_total",
				Help:      "Scaffold runs by recipe kind and status",
			},
			[]string{"kind", "status"},
		),
		filesWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scaffold_files_total",
				Help:      "Scaffolded files by write result",
			},
			[]string{"reason"},
		),
		missingSkills: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "scaffold_missing_skills",
				Help:      "Required skills missing in the last scaffold run",
			},
		),
	}

	m.registry.MustRegister(
		m.cronActions,
		m.reconcileTime,
		m.scaffoldsTotal,
		m.filesWritten,
		m.missingSkills,
	)

	return m
}

// RecordAction counts one cron reconcile result.
func (m *PrometheusMetrics) RecordAction(action string) {
	m.cronActions.WithLabelValues(action).Inc()
}

// ObservePass records the duration of a reconcile pass.
func (m *PrometheusMetrics) ObservePass(outcome string, elapsed time.Duration) {
	m.reconcileTime.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *PrometheusMetrics) RecordScaffold(kind, status string) {
	m.scaffoldsTotal.WithLabelValues(kind, status).Inc()
}

func (m *PrometheusMetrics) RecordFile(reason string) {
	m.filesWritten.WithLabelValues(reason).Inc()
}

func (m *PrometheusMetrics) SetMissingSkills(count int) {
	m.missingSkills.Set(float64(count))
}

// Gatherer exposes the registry for export and tests.
func (m *PrometheusMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (m *PrometheusMetrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
