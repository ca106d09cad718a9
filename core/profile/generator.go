// Package profile synthesises single-day EV fleet profiles.
package profile

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/evcharge/core/model"
)

// GeneratorConfig controls the synthetic fleet sampler. Hours are inclusive
// bounds and every range is sampled uniformly.
type GeneratorConfig struct {
	Size           int     `json:"size"`
	Seed           uint64  `json:"seed"`
	ArrivalMaxHour int     `json:"arrival_max_hour"`
	BatteryMinKWh  float64 `json:"battery_min_kwh"`
	BatteryMaxKWh  float64 `json:"battery_max_kwh"`
	InitialSoCMin  float64 `json:"initial_soc_min"`
	InitialSoCMax  float64 `json:"initial_soc_max"`
	TargetSoCMin   float64 `json:"target_soc_min"`
	TargetSoCMax   float64 `json:"target_soc_max"`
	MinSoCGain     float64 `json:"min_soc_gain"`
}

// DefaultGeneratorConfig returns a 50 vehicle fleet seeded with 42.
func DefaultGeneratorConfig() GeneratorConfig {
	c := GeneratorConfig{Size: 50, Seed: 42}
	c.SetDefaults()
	return c
}

// SetDefaults fills unset ranges. Size and Seed are left untouched.
func (c *GeneratorConfig) SetDefaults() {
	if c.ArrivalMaxHour == 0 {
		c.ArrivalMaxHour = 20
	}
	if c.BatteryMinKWh == 0 && c.BatteryMaxKWh == 0 {
		c.BatteryMinKWh, c.BatteryMaxKWh = 40, 80
	}
	if c.InitialSoCMin == 0 && c.InitialSoCMax == 0 {
		c.InitialSoCMin, c.InitialSoCMax = 0.15, 0.70
	}
	if c.TargetSoCMin == 0 && c.TargetSoCMax == 0 {
		c.TargetSoCMin, c.TargetSoCMax = 0.80, 0.95
	}
	if c.MinSoCGain == 0 {
		c.MinSoCGain = 0.10
	}
}

// Validate checks that the ranges can produce valid profiles.
func (c GeneratorConfig) Validate() error {
	switch {
	case c.Size < 0:
		return fmt.Errorf("size must not be negative")
	case c.ArrivalMaxHour < 0 || c.ArrivalMaxHour > 22:
		return fmt.Errorf("arrival_max_hour must be in [0,22]")
	case c.BatteryMinKWh <= 0 || c.BatteryMaxKWh < c.BatteryMinKWh:
		return fmt.Errorf("invalid battery range [%g,%g]", c.BatteryMinKWh, c.BatteryMaxKWh)
	case c.InitialSoCMin < 0 || c.InitialSoCMax < c.InitialSoCMin || c.InitialSoCMax >= 1:
		return fmt.Errorf("invalid initial soc range [%g,%g]", c.InitialSoCMin, c.InitialSoCMax)
	case c.TargetSoCMin <= 0 || c.TargetSoCMax < c.TargetSoCMin || c.TargetSoCMax > 1:
		return fmt.Errorf("invalid target soc range [%g,%g]", c.TargetSoCMin, c.TargetSoCMax)
	case c.TargetSoCMax <= c.InitialSoCMin:
		return fmt.Errorf("target soc range must exceed initial soc range")
	case c.MinSoCGain <= 0:
		return fmt.Errorf("min_soc_gain must be positive")
	}
	return nil
}

// Generate draws a fleet of c.Size vehicles with IDs 1..Size. The same
// configuration always yields the same fleet.
func Generate(c GeneratorConfig) ([]model.EVProfile, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("generator config: %w", err)
	}
	rng := rand.New(rand.NewPCG(c.Seed, c.Seed^0x9e3779b97f4a7c15))
	battery := distuv.Uniform{Min: c.BatteryMinKWh, Max: c.BatteryMaxKWh, Src: rng}
	initial := distuv.Uniform{Min: c.InitialSoCMin, Max: c.InitialSoCMax, Src: rng}
	target := distuv.Uniform{Min: c.TargetSoCMin, Max: c.TargetSoCMax, Src: rng}

	profiles := make([]model.EVProfile, c.Size)
	for i := range profiles {
		profiles[i].ID = i + 1
		profiles[i].ArrivalHour = rng.IntN(c.ArrivalMaxHour + 1)
	}
	for i := range profiles {
		arr := profiles[i].ArrivalHour
		profiles[i].DepartureHour = arr + 1 + rng.IntN(23-arr)
	}
	for i := range profiles {
		profiles[i].BatteryKWh = round(battery.Rand(), 1)
	}
	for i := range profiles {
		profiles[i].InitialSoC = round(initial.Rand(), 2)
	}
	for i := range profiles {
		p := &profiles[i]
		t := math.Max(target.Rand(), p.InitialSoC+c.MinSoCGain)
		t = round(clamp(t, c.TargetSoCMin, c.TargetSoCMax), 2)
		if t <= p.InitialSoC {
			t = math.Min(c.TargetSoCMax, round(p.InitialSoC+c.MinSoCGain, 2))
		}
		p.TargetSoC = t
		p.EnergyNeededKWh = round(p.BatteryKWh*(p.TargetSoC-p.InitialSoC), 2)
	}
	if err := model.ValidateProfiles(profiles); err != nil {
		return nil, fmt.Errorf("generated fleet: %w", err)
	}
	return profiles, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
