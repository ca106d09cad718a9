package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evcharge/core/charging"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `simulation:
  charging_power_kw: 11
  peak_hours: [17, 18, 19, 20]
  workers: 4
fleet:
  generator:
    size: 120
    seed: 7
policies:
  - type: uncontrolled
  - type: rule_based
  - type: rule_based
    conf:
      peak_hours: [8, 9]
metrics:
  sinks:
    - type: nop
output:
  dir: out
  format: json
logging:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 11.0, cfg.Simulation.ChargingPowerKW)
	assert.Equal(t, []int{17, 18, 19, 20}, cfg.Simulation.PeakHours)
	assert.Equal(t, 4, cfg.Simulation.Workers)
	assert.Equal(t, charging.DefaultTolerance(), cfg.Simulation.Tolerance)
	assert.Equal(t, 120, cfg.Fleet.Generator.Size)
	assert.Equal(t, uint64(7), cfg.Fleet.Generator.Seed)
	assert.Equal(t, 20, cfg.Fleet.Generator.ArrivalMaxHour)
	require.Len(t, cfg.Policies, 3)
	assert.Equal(t, []int{17, 18, 19, 20}, cfg.Policies[1].Conf["peak_hours"], "inherits simulation peak hours")
	require.Len(t, cfg.Metrics.Sinks, 1)
	assert.Equal(t, "nop", cfg.Metrics.Sinks[0].Type)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)

	pol, err := charging.NewPolicy(cfg.Policies[2])
	require.NoError(t, err)
	assert.Equal(t, []int{8, 9}, pol.(charging.PeakAvoiding).PeakHours)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7.0, cfg.Simulation.ChargingPowerKW)
	assert.Equal(t, []int{16, 17, 18}, cfg.Simulation.PeakHours)
	assert.Equal(t, 50, cfg.Fleet.Generator.Size)
	assert.Equal(t, uint64(42), cfg.Fleet.Generator.Seed)
	require.Len(t, cfg.Policies, 2)
	assert.Equal(t, "uncontrolled", cfg.Policies[0].Type)
	assert.Equal(t, "rule_based", cfg.Policies[1].Type)
	assert.Equal(t, "results", cfg.Output.Dir)
	assert.Equal(t, ":8080", cfg.API.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, Default().Simulation, cfg.Simulation)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("EVC_SIMULATION__CHARGING_POWER_KW", "22")
	t.Setenv("EVC_OUTPUT__DIR", "env-out")
	path := writeFile(t, "config.json", `{"simulation": {"charging_power_kw": 3.7}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 22.0, cfg.Simulation.ChargingPowerKW)
	assert.Equal(t, "env-out", cfg.Output.Dir)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"power":      "simulation:\n  charging_power_kw: -1\n",
		"peak hour":  "simulation:\n  peak_hours: [25]\n",
		"format":     "output:\n  format: xml\n",
		"level":      "logging:\n  level: loud\n",
		"fleet":      "fleet:\n  generator:\n    size: -3\n",
		"policy":     "policies:\n  - conf: {}\n",
		"tolerance":  "simulation:\n  tolerance:\n    satisfied_kwh: -1\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", data))
			assert.Error(t, err)
		})
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load(writeFile(t, "config.toml", "x = 1"))
	assert.Error(t, err)
}

func TestLoad_ProfilesPathSkipsGeneratorValidation(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yaml", "fleet:\n  profiles_path: fleet.csv\n  generator:\n    arrival_max_hour: 23\n"))
	require.NoError(t, err)
	assert.Equal(t, "fleet.csv", cfg.Fleet.ProfilesPath)
}
