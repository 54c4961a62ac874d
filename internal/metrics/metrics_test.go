package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue finds a sample by metric name and a single label pair.
func counterValue(t *testing.T, m *PrometheusMetrics, name, label, value string) float64 {
	t.Helper()
	families, err := m.Gatherer().Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestRecordAction(t *testing.T) {
	m := InitPrometheusMetrics("")

	m.RecordAction("created")
	m.RecordAction("created")
	m.RecordAction("unchanged")

	assert.Equal(t, 2.0, counterValue(t, m, "nexrecipes_cron_reconcile_actions_total", "action", "created"))
	assert.Equal(t, 1.0, counterValue(t, m, "nexrecipes_cron_reconcile_actions_total", "action", "unchanged"))
}

func TestRecordScaffold(t *testing.T) {
	m := InitPrometheusMetrics("test")

	m.RecordScaffold("team", "ok")
	m.RecordFile("exists")

	assert.Equal(t, 1.0, counterValue(t, m, "test_scaffolds_total", "kind", "team"))
	assert.Equal(t, 1.0, counterValue(t, m, "test_scaffold_files_total", "reason", "exists"))
}

func TestWriteTextfile(t *testing.T) {
	m := InitPrometheusMetrics("")
	m.ObservePass("ok", 250*time.Millisecond)
	m.SetMissingSkills(2)

	path := filepath.Join(t.TempDir(), "textfile", "nexrecipes.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `nexrecipes_cron_reconcile_duration_seconds_count{outcome="ok"} 1`)
	assert.Contains(t, out, "nexrecipes_scaffold_missing_skills 2")
}
