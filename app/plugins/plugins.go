// Package plugins links the built-in result sinks into the binary and
// reports which modules can be named in the configuration.
package plugins

import (
	"github.com/kilianp07/evcharge/core/charging"
	coremetrics "github.com/kilianp07/evcharge/core/metrics"

	_ "github.com/kilianp07/evcharge/infra/metrics"
	_ "github.com/kilianp07/evcharge/infra/mqtt"
)

// Catalog lists the registered module types by kind.
type Catalog struct {
	Policies []string `json:"policies"`
	Sinks    []string `json:"sinks"`
}

// Available returns the policies and sinks compiled into the binary.
func Available() Catalog {
	return Catalog{
		Policies: charging.PolicyNames(),
		Sinks:    coremetrics.SinkNames(),
	}
}
