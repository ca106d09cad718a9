package charging

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/evcharge/core/model"
)

// ShortfallQuantile is the quantile reported for shortfalls of incomplete EVs.
const ShortfallQuantile = 0.95

// ComputeMetrics reduces a load curve and the per-vehicle results to fleet
// statistics. Shortfall statistics only consider incomplete vehicles and
// are zero when every vehicle completed. Inputs are not modified.
func ComputeMetrics(curve model.FleetLoadCurve, results []model.AllocationResult) model.FleetMetrics {
	m := model.FleetMetrics{EVCount: len(results)}

	if loads := curve.Loads(); len(loads) > 0 {
		idx := floats.MaxIdx(loads)
		m.PeakLoadKW = loads[idx]
		m.PeakHour = curve[idx].Hour
	}

	delivered := make([]float64, len(results))
	needed := make([]float64, len(results))
	var shortfalls []float64
	completed := 0
	for i, r := range results {
		delivered[i] = r.EnergyDeliveredKWh
		needed[i] = r.EnergyNeededKWh
		if r.Completed {
			completed++
			continue
		}
		shortfalls = append(shortfalls, r.EnergyShortfallKWh)
	}
	m.TotalEnergyDeliveredKWh = floats.Sum(delivered)
	m.TotalEnergyNeededKWh = floats.Sum(needed)
	m.IncompleteCount = len(shortfalls)

	if len(results) > 0 {
		m.CompletionRate = float64(completed) / float64(len(results))
		m.CompletionRatePct = round(m.CompletionRate*100, 2)
	}
	if len(shortfalls) > 0 {
		m.TotalShortfallKWh = floats.Sum(shortfalls)
		m.MeanShortfallKWh = stat.Mean(shortfalls, nil)
		sort.Float64s(shortfalls)
		m.P95ShortfallKWh = stat.Quantile(ShortfallQuantile, stat.Empirical, shortfalls, nil)
	}
	return m
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
