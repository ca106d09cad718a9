package config

import "github.com/kilianp07/evcharge/core/profile"

// FleetConfig selects where profiles come from: a CSV file when
// ProfilesPath is set, the synthetic generator otherwise.
type FleetConfig struct {
	ProfilesPath string                  `json:"profiles_path"`
	Generator    profile.GeneratorConfig `json:"generator"`
}

func (c *FleetConfig) SetDefaults() {
	if c.Generator.Size == 0 {
		c.Generator.Size = 50
	}
	if c.Generator.Seed == 0 {
		c.Generator.Seed = 42
	}
	c.Generator.SetDefaults()
}

func (c FleetConfig) Validate() error {
	if c.ProfilesPath != "" {
		return nil
	}
	return c.Generator.Validate()
}
