package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/evcharge/core/factory"
	"github.com/kilianp07/evcharge/core/metrics"
)

// EnvPrefix is the prefix of environment overrides. Nested keys are joined
// with a double underscore, e.g. EVC_SIMULATION__CHARGING_POWER_KW=11.
const EnvPrefix = "EVC_"

type Config struct {
	Simulation SimulationConfig       `json:"simulation"`
	Fleet      FleetConfig            `json:"fleet"`
	Policies   []factory.ModuleConfig `json:"policies"`
	Output     OutputConfig           `json:"output"`
	Metrics    metrics.Config         `json:"metrics"`
	API        APIConfig              `json:"api"`
	Logging    LoggingConfig          `json:"logging"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// Load reads the configuration file at path, applies environment overrides
// and defaults, then validates the result. An empty path loads defaults and
// environment overrides only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section. Peak-avoiding policies without their own
// peak hours inherit simulation.peak_hours.
func (c *Config) SetDefaults() {
	c.Simulation.SetDefaults()
	c.Fleet.SetDefaults()
	c.Output.SetDefaults()
	c.API.SetDefaults()
	c.Logging.SetDefaults()
	if len(c.Policies) == 0 {
		c.Policies = []factory.ModuleConfig{{Type: "uncontrolled"}, {Type: "rule_based"}}
	}
	for i, p := range c.Policies {
		if p.Type != "rule_based" && p.Type != "peak_avoiding" {
			continue
		}
		if _, ok := p.Conf["peak_hours"]; ok {
			continue
		}
		conf := make(map[string]any, len(p.Conf)+1)
		for k, v := range p.Conf {
			conf[k] = v
		}
		conf["peak_hours"] = append([]int(nil), c.Simulation.PeakHours...)
		c.Policies[i].Conf = conf
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := c.Fleet.Validate(); err != nil {
		return fmt.Errorf("fleet: %w", err)
	}
	for i, p := range c.Policies {
		if p.Type == "" {
			return fmt.Errorf("policies[%d]: type is required", i)
		}
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
