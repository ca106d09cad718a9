package model

import "sort"

// AllocationResult is the outcome of charging one vehicle under one policy.
type AllocationResult struct {
	EVID               int     `json:"ev_id"`
	ArrivalHour        int     `json:"arrival_hour"`
	DepartureHour      int     `json:"departure_hour"`
	EnergyNeededKWh    float64 `json:"energy_needed_kwh"`
	EnergyDeliveredKWh float64 `json:"energy_delivered_kwh"`
	EnergyShortfallKWh float64 `json:"energy_shortfall_kwh"`
	Completed          bool    `json:"completed"`
}

// HourlyEnergy maps an hour of day to the kWh drawn during that hour.
type HourlyEnergy map[int]float64

// Total returns the energy summed over all hours.
func (h HourlyEnergy) Total() float64 {
	hours := make([]int, 0, len(h))
	for hour := range h {
		hours = append(hours, hour)
	}
	sort.Ints(hours)
	var sum float64
	for _, hour := range hours {
		sum += h[hour]
	}
	return sum
}

// LoadPoint is the fleet load during one hour. With an hourly step the kWh
// drawn in the hour equals the average kW.
type LoadPoint struct {
	Hour   int     `json:"hour"`
	LoadKW float64 `json:"fleet_load_kw"`
}

// FleetLoadCurve holds one LoadPoint per hour of day, sorted by hour.
type FleetLoadCurve []LoadPoint

// NewFleetLoadCurve returns a zeroed curve covering every hour of the day.
func NewFleetLoadCurve() FleetLoadCurve {
	c := make(FleetLoadCurve, HoursPerDay)
	for h := range c {
		c[h].Hour = h
	}
	return c
}

// Loads returns the load values indexed by hour.
func (c FleetLoadCurve) Loads() []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.LoadKW
	}
	return out
}

// At returns the load for the given hour, or 0 if the hour is not covered.
func (c FleetLoadCurve) At(hour int) float64 {
	for _, p := range c {
		if p.Hour == hour {
			return p.LoadKW
		}
	}
	return 0
}

// FleetMetrics summarises a simulation run.
type FleetMetrics struct {
	PeakLoadKW              float64 `json:"peak_load_kw"`
	PeakHour                int     `json:"peak_hour"`
	TotalEnergyDeliveredKWh float64 `json:"total_energy_delivered_kwh"`
	TotalEnergyNeededKWh    float64 `json:"total_energy_needed_kwh"`
	TotalShortfallKWh       float64 `json:"total_energy_shortfall_kwh"`
	EVCount                 int     `json:"ev_count"`
	IncompleteCount         int     `json:"incomplete_count"`
	CompletionRate          float64 `json:"completion_rate"`
	CompletionRatePct       float64 `json:"completion_rate_pct"`
	MeanShortfallKWh        float64 `json:"mean_shortfall_kwh"`
	P95ShortfallKWh         float64 `json:"p95_shortfall_kwh"`
}
