// Package scenarios loads named simulation scenarios from YAML. A scenario
// pairs a policy with charging parameters and may carry its own vehicles and
// expected outcome, which makes the same files usable for comparisons and
// regression checks.
package scenarios

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/evcharge/core/charging"
	"github.com/kilianp07/evcharge/core/factory"
	"github.com/kilianp07/evcharge/core/model"
)

var (
	ErrNoScenarios   = errors.New("no scenarios defined")
	ErrScenarioName  = errors.New("scenario name must be non-empty and contain no path separators")
	ErrDuplicateName = errors.New("duplicate scenario name")
)

// VehicleDef is an inline vehicle of a scenario.
type VehicleDef struct {
	ID              int     `yaml:"id"`
	ArrivalHour     int     `yaml:"arrival_hour"`
	DepartureHour   int     `yaml:"departure_hour"`
	EnergyNeededKWh float64 `yaml:"energy_needed_kwh"`
	BatteryKWh      float64 `yaml:"battery_kwh,omitempty"`
	InitialSoC      float64 `yaml:"initial_soc,omitempty"`
	TargetSoC       float64 `yaml:"target_soc,omitempty"`
}

// ToModel converts the definition to a profile.
func (v VehicleDef) ToModel() model.EVProfile {
	return model.EVProfile{
		ID:              v.ID,
		ArrivalHour:     v.ArrivalHour,
		DepartureHour:   v.DepartureHour,
		BatteryKWh:      v.BatteryKWh,
		InitialSoC:      v.InitialSoC,
		TargetSoC:       v.TargetSoC,
		EnergyNeededKWh: v.EnergyNeededKWh,
	}
}

// Expected lists the outcome a regression scenario must reproduce. Unset
// fields are not checked.
type Expected struct {
	PeakLoadKW        *float64        `yaml:"peak_load_kw,omitempty"`
	DeliveredKWh      *float64        `yaml:"energy_delivered_kwh,omitempty"`
	CompletionRatePct *float64        `yaml:"completion_rate_pct,omitempty"`
	Load              map[int]float64 `yaml:"load,omitempty"`
}

// Scenario runs one policy with optional parameter overrides.
type Scenario struct {
	Name            string       `yaml:"name"`
	Description     string       `yaml:"description,omitempty"`
	Policy          string       `yaml:"policy"`
	ChargingPowerKW float64      `yaml:"charging_power_kw,omitempty"`
	PeakHours       []int        `yaml:"peak_hours,omitempty"`
	Vehicles        []VehicleDef `yaml:"vehicles,omitempty"`
	Expected        *Expected    `yaml:"expected,omitempty"`
}

// File is the on-disk layout of a scenario file.
type File struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Load reads and validates the scenarios in path.
func Load(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := Validate(f.Scenarios); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f.Scenarios, nil
}

// Validate checks names, policies and parameters of every scenario.
func Validate(scs []Scenario) error {
	if len(scs) == 0 {
		return ErrNoScenarios
	}
	seen := make(map[string]bool, len(scs))
	for i, sc := range scs {
		if sc.Name == "" || strings.ContainsAny(sc.Name, `/\`) {
			return fmt.Errorf("scenarios[%d]: %w", i, ErrScenarioName)
		}
		if seen[sc.Name] {
			return fmt.Errorf("scenario %s: %w", sc.Name, ErrDuplicateName)
		}
		seen[sc.Name] = true
		if sc.ChargingPowerKW < 0 {
			return fmt.Errorf("scenario %s: %w: charging_power_kw must be positive", sc.Name, charging.ErrInvalidParams)
		}
		if _, err := charging.NewPolicy(sc.PolicyConfig()); err != nil {
			return fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
	}
	return nil
}

// PolicyConfig returns the module configuration of the scenario's policy.
func (s Scenario) PolicyConfig() factory.ModuleConfig {
	cfg := factory.ModuleConfig{Type: s.Policy}
	if len(s.PeakHours) > 0 {
		cfg.Conf = map[string]any{"peak_hours": s.PeakHours}
	}
	return cfg
}

// Params overrides base with the scenario's charging power when set.
func (s Scenario) Params(base charging.Params) charging.Params {
	if s.ChargingPowerKW > 0 {
		base.ChargingPowerKW = s.ChargingPowerKW
	}
	return base
}

// Profiles returns the scenario's own vehicles, or fleet when it has none.
func (s Scenario) Profiles(fleet []model.EVProfile) []model.EVProfile {
	if len(s.Vehicles) == 0 {
		return fleet
	}
	out := make([]model.EVProfile, len(s.Vehicles))
	for i, v := range s.Vehicles {
		out[i] = v.ToModel()
	}
	return out
}

// FromPolicies builds one scenario per configured policy, named after the
// policy type.
func FromPolicies(policies []factory.ModuleConfig) []Scenario {
	out := make([]Scenario, 0, len(policies))
	for _, p := range policies {
		sc := Scenario{Name: p.Type, Policy: p.Type}
		if raw, ok := p.Conf["peak_hours"]; ok {
			var conf struct {
				PeakHours []int `json:"peak_hours"`
			}
			if factory.Decode(map[string]any{"peak_hours": raw}, &conf) == nil {
				sc.PeakHours = conf.PeakHours
			}
		}
		out = append(out, sc)
	}
	return out
}
