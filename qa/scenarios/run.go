package scenarios

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/kilianp07/evcharge/core/charging"
	"github.com/kilianp07/evcharge/core/logger"
	"github.com/kilianp07/evcharge/core/model"
	"github.com/kilianp07/evcharge/internal/eventbus"
)

// Outcome pairs a scenario with the run it produced.
type Outcome struct {
	Scenario Scenario
	Run      *charging.Run
}

// Runner executes scenarios against a shared fleet.
type Runner struct {
	Base charging.Params
	// PeakHours are used by scenarios that set none.
	PeakHours []int
	Logger    logger.Logger
	Events    *eventbus.TypedBus[charging.AllocationEvent]
}

// Run executes every scenario in order. Scenarios without vehicles use fleet
// and scenarios without peak hours use r.PeakHours when set.
func (r Runner) Run(ctx context.Context, scs []Scenario, fleet []model.EVProfile) ([]Outcome, error) {
	out := make([]Outcome, 0, len(scs))
	for _, sc := range scs {
		if len(sc.PeakHours) == 0 && len(r.PeakHours) > 0 {
			sc.PeakHours = append([]int(nil), r.PeakHours...)
		}
		policy, err := charging.NewPolicy(sc.PolicyConfig())
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		opts := []charging.Option{}
		if r.Logger != nil {
			opts = append(opts, charging.WithLogger(r.Logger))
		}
		if r.Events != nil {
			opts = append(opts, charging.WithEvents(r.Events))
		}
		sim, err := charging.NewSimulator(sc.Params(r.Base), opts...)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		run, err := sim.Run(ctx, policy, sc.Profiles(fleet))
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		out = append(out, Outcome{Scenario: sc, Run: run})
	}
	return out, nil
}

// expectTolerance is the absolute slack allowed when comparing kWh values.
const expectTolerance = 1e-6

// Check compares the outcome with the scenario's expectations and returns
// one message per mismatch.
func (o Outcome) Check() []string {
	exp := o.Scenario.Expected
	if exp == nil {
		return nil
	}
	m := o.Run.Metrics
	var diffs []string
	if exp.PeakLoadKW != nil && !near(*exp.PeakLoadKW, m.PeakLoadKW) {
		diffs = append(diffs, fmt.Sprintf("peak_load_kw: want %g, got %g", *exp.PeakLoadKW, m.PeakLoadKW))
	}
	if exp.DeliveredKWh != nil && !near(*exp.DeliveredKWh, m.TotalEnergyDeliveredKWh) {
		diffs = append(diffs, fmt.Sprintf("energy_delivered_kwh: want %g, got %g", *exp.DeliveredKWh, m.TotalEnergyDeliveredKWh))
	}
	if exp.CompletionRatePct != nil && !near(*exp.CompletionRatePct, m.CompletionRatePct) {
		diffs = append(diffs, fmt.Sprintf("completion_rate_pct: want %g, got %g", *exp.CompletionRatePct, m.CompletionRatePct))
	}
	hours := make([]int, 0, len(exp.Load))
	for h := range exp.Load {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	for _, h := range hours {
		if got := o.Run.Curve.At(h); !near(exp.Load[h], got) {
			diffs = append(diffs, fmt.Sprintf("load[%d]: want %g, got %g", h, exp.Load[h], got))
		}
	}
	return diffs
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= expectTolerance
}
