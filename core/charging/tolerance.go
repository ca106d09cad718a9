package charging

import "fmt"

const (
	// DefaultExhaustedKWh is the remaining energy below which allocation stops.
	DefaultExhaustedKWh = 1e-9
	// DefaultSatisfiedKWh is the slack allowed when deciding that a need is met.
	DefaultSatisfiedKWh = 1e-6
)

// Tolerance holds the numerical thresholds used by the allocation engine.
type Tolerance struct {
	ExhaustedKWh float64 `json:"exhausted_kwh"`
	SatisfiedKWh float64 `json:"satisfied_kwh"`
}

// DefaultTolerance returns the standard thresholds.
func DefaultTolerance() Tolerance {
	return Tolerance{ExhaustedKWh: DefaultExhaustedKWh, SatisfiedKWh: DefaultSatisfiedKWh}
}

// SetDefaults replaces unset thresholds with the standard ones.
func (t *Tolerance) SetDefaults() {
	if t.ExhaustedKWh == 0 {
		t.ExhaustedKWh = DefaultExhaustedKWh
	}
	if t.SatisfiedKWh == 0 {
		t.SatisfiedKWh = DefaultSatisfiedKWh
	}
}

// Validate rejects negative thresholds and an exhaustion threshold above the
// satisfaction slack, which would stop allocation short of a feasible need.
func (t Tolerance) Validate() error {
	if t.ExhaustedKWh < 0 {
		return fmt.Errorf("exhausted_kwh must not be negative")
	}
	if t.SatisfiedKWh < 0 {
		return fmt.Errorf("satisfied_kwh must not be negative")
	}
	if t.ExhaustedKWh > t.SatisfiedKWh {
		return fmt.Errorf("exhausted_kwh %g exceeds satisfied_kwh %g", t.ExhaustedKWh, t.SatisfiedKWh)
	}
	return nil
}
