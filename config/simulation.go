package config

import (
	"github.com/kilianp07/evcharge/core/charging"
)

// SimulationConfig holds the fixed parameters of every run.
type SimulationConfig struct {
	ChargingPowerKW float64            `json:"charging_power_kw"`
	PeakHours       []int              `json:"peak_hours"`
	Tolerance       charging.Tolerance `json:"tolerance"`
	Workers         int                `json:"workers"`
}

func (c *SimulationConfig) SetDefaults() {
	if c.ChargingPowerKW == 0 {
		c.ChargingPowerKW = charging.DefaultChargingPowerKW
	}
	if c.PeakHours == nil {
		c.PeakHours = charging.DefaultPeakHours()
	}
	c.Tolerance.SetDefaults()
	if c.Workers == 0 {
		c.Workers = 1
	}
}

func (c SimulationConfig) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	return charging.ValidatePeakHours(c.PeakHours)
}

// Params converts the section into simulator parameters.
func (c SimulationConfig) Params() charging.Params {
	return charging.Params{ChargingPowerKW: c.ChargingPowerKW, Tolerance: c.Tolerance, Workers: c.Workers}
}
