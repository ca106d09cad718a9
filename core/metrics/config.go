package metrics

import "github.com/kilianp07/evcharge/core/factory"

// Config lists the result sinks a run is reported to.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
}
