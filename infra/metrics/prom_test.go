package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/evcharge/core/metrics"
	"github.com/kilianp07/evcharge/core/model"
)

func sampleReport() coremetrics.RunReport {
	curve := model.NewFleetLoadCurve()
	curve[10].LoadKW = 7
	curve[11].LoadKW = 14
	return coremetrics.RunReport{
		RunID:           "run-1",
		Scenario:        "evening",
		Policy:          "rule_based",
		ChargingPowerKW: 7,
		Curve:           curve,
		Metrics: model.FleetMetrics{
			PeakLoadKW:              14,
			PeakHour:                11,
			TotalEnergyDeliveredKWh: 21,
			TotalEnergyNeededKWh:    25,
			CompletionRate:          0.5,
			IncompleteCount:         1,
			MeanShortfallKWh:        4,
			P95ShortfallKWh:         4,
		},
		Results: []model.AllocationResult{
			{EVID: 1, EnergyNeededKWh: 7, EnergyDeliveredKWh: 7, Completed: true},
			{EVID: 2, EnergyNeededKWh: 18, EnergyDeliveredKWh: 14, EnergyShortfallKWh: 4},
		},
	}
}

func TestPromSink_RecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordRun(sampleReport()))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.runs.WithLabelValues("evening", "rule_based")))
	assert.Equal(t, 14.0, testutil.ToFloat64(sink.load.WithLabelValues("evening", "11")))
	assert.Equal(t, 0.0, testutil.ToFloat64(sink.load.WithLabelValues("evening", "3")))
	assert.Equal(t, 14.0, testutil.ToFloat64(sink.peak.WithLabelValues("evening")))
	assert.Equal(t, 21.0, testutil.ToFloat64(sink.delivered.WithLabelValues("evening")))
	assert.Equal(t, 25.0, testutil.ToFloat64(sink.needed.WithLabelValues("evening")))
	assert.Equal(t, 0.5, testutil.ToFloat64(sink.complete.WithLabelValues("evening")))
	assert.Equal(t, 24, testutil.CollectAndCount(sink.load))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.shortfall))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	b, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, a.RecordRun(sampleReport()))
	require.NoError(t, b.RecordRun(sampleReport()))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.runs.WithLabelValues("evening", "rule_based")))
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, sink.RecordRun(sampleReport()))

	path := filepath.Join(t.TempDir(), "evcharge.prom")
	require.NoError(t, WriteTextfile(path, reg))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `evcharge_fleet_peak_load_kw{scenario="evening"} 14`)
}
