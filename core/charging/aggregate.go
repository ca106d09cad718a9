package charging

import (
	"sync"

	"github.com/kilianp07/evcharge/core/model"
)

// Aggregate sums per-vehicle hourly draws into a fleet load curve. Hours
// outside the day are ignored. The result does not depend on the order of
// the contributions beyond floating point rounding.
func Aggregate(contributions []model.HourlyEnergy) model.FleetLoadCurve {
	var acc LoadAccumulator
	for _, c := range contributions {
		acc.Add(c)
	}
	return acc.Curve()
}

// LoadAccumulator collects hourly draws from concurrent allocations. The
// zero value is ready to use.
type LoadAccumulator struct {
	mu    sync.Mutex
	loads [model.HoursPerDay]float64
}

// Add combines one vehicle's hourly draw into the fleet totals.
func (a *LoadAccumulator) Add(h model.HourlyEnergy) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for hour, kwh := range h {
		if hour < 0 || hour >= model.HoursPerDay {
			continue
		}
		a.loads[hour] += kwh
	}
}

// Curve returns a snapshot of the accumulated fleet load.
func (a *LoadAccumulator) Curve() model.FleetLoadCurve {
	a.mu.Lock()
	defer a.mu.Unlock()
	c := model.NewFleetLoadCurve()
	for h := range c {
		c[h].LoadKW = a.loads[h]
	}
	return c
}
