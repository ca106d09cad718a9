package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evcharge/config"
	"github.com/kilianp07/evcharge/core/factory"
	"github.com/kilianp07/evcharge/core/model"
	"github.com/kilianp07/evcharge/pkg/export"
	"github.com/kilianp07/evcharge/qa/scenarios"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Fleet.Generator.Size = 12
	cfg.Output.Dir = filepath.Join(t.TempDir(), "results")
	cfg.Logging.Level = "error"
	return cfg
}

func TestService_SimulateAndWrite(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	fleet, err := svc.Fleet()
	require.NoError(t, err)
	require.Len(t, fleet, 12)

	scs := svc.Scenarios()
	require.Len(t, scs, 2)
	outcomes, err := svc.Simulate(context.Background(), scs, fleet)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t,
		outcomes[0].Run.Metrics.TotalEnergyNeededKWh,
		outcomes[1].Run.Metrics.TotalEnergyNeededKWh)

	paths, err := svc.WriteOutputs(outcomes)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(cfg.Output.Dir, "fleet_load_uncontrolled.csv"),
		filepath.Join(cfg.Output.Dir, "ev_results_uncontrolled.csv"),
		filepath.Join(cfg.Output.Dir, "metrics_uncontrolled.txt"),
		filepath.Join(cfg.Output.Dir, "fleet_load_rule_based.csv"),
		filepath.Join(cfg.Output.Dir, "ev_results_rule_based.csv"),
		filepath.Join(cfg.Output.Dir, "metrics_rule_based.txt"),
	}, paths)
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestService_ScenarioFileUsesConfiguredPeakHours(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.PeakHours = []int{10}
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scenarios:\n  - name: shifted\n    policy: rule_based\n"), 0o600))
	scs, err := scenarios.Load(path)
	require.NoError(t, err)

	fleet := []model.EVProfile{{ID: 1, ArrivalHour: 10, DepartureHour: 13, EnergyNeededKWh: 7}}
	outcomes, err := svc.Simulate(context.Background(), scs, fleet)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.InDelta(t, 0.0, outcomes[0].Run.Curve.At(10), 1e-9)
	assert.InDelta(t, 7.0, outcomes[0].Run.Curve.At(11), 1e-9)
}

func TestService_FleetFromCSV(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(cfg)
	require.NoError(t, err)
	fleet, err := svc.Fleet()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "profiles.csv")
	require.NoError(t, svc.WriteProfiles(path, fleet))
	require.NoError(t, svc.Close())

	cfg.Fleet.ProfilesPath = path
	svc, err = New(cfg)
	require.NoError(t, err)
	defer svc.Close()
	back, err := svc.Fleet()
	require.NoError(t, err)
	assert.Equal(t, fleet, back)

	cfg.Fleet.ProfilesPath = filepath.Join(t.TempDir(), "missing.csv")
	_, err = svc.Fleet()
	assert.Error(t, err)
}

func TestService_JSONOutput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Format = string(export.JSON)
	cfg.Policies = []factory.ModuleConfig{{Type: "deferred"}}
	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()

	fleet, err := svc.Fleet()
	require.NoError(t, err)
	outcomes, err := svc.Simulate(context.Background(), svc.Scenarios(), fleet)
	require.NoError(t, err)
	paths, err := svc.WriteOutputs(outcomes)
	require.NoError(t, err)
	assert.Contains(t, paths, filepath.Join(cfg.Output.Dir, "metrics_deferred.json"))
}

func TestService_UnknownSink(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "carrier-pigeon"}}
	_, err := New(cfg)
	assert.ErrorContains(t, err, "carrier-pigeon")
}

func TestService_Handler(t *testing.T) {
	svc, err := New(testConfig(t))
	require.NoError(t, err)
	defer svc.Close()
	rr := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
