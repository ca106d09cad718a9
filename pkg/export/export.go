// Package export persists simulation inputs and results as CSV or JSON and
// reads fleet profiles back from CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/kilianp07/evcharge/core/model"
)

// Format selects the encoding used by the writers.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case CSV, JSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var profileHeader = []string{
	"ev_id", "arrival_hour", "departure_hour", "battery_kwh",
	"initial_soc", "target_soc", "energy_needed_kwh", "available_hours",
}

// WriteProfiles writes the fleet profiles in the given format.
func WriteProfiles(w io.Writer, f Format, profiles []model.EVProfile) error {
	if f == JSON {
		return WriteJSON(w, profiles)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(profileHeader); err != nil {
		return err
	}
	for _, p := range profiles {
		rec := []string{
			strconv.Itoa(p.ID),
			strconv.Itoa(p.ArrivalHour),
			strconv.Itoa(p.DepartureHour),
			fmtFloat(p.BatteryKWh),
			fmtFloat(p.InitialSoC),
			fmtFloat(p.TargetSoC),
			fmtFloat(p.EnergyNeededKWh),
			strconv.Itoa(p.AvailableHours()),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RoundResults returns a copy of results with kWh fields rounded to three
// decimals for persistence.
func RoundResults(results []model.AllocationResult) []model.AllocationResult {
	out := make([]model.AllocationResult, len(results))
	for i, r := range results {
		r.EnergyNeededKWh = Round3(r.EnergyNeededKWh)
		r.EnergyDeliveredKWh = Round3(r.EnergyDeliveredKWh)
		r.EnergyShortfallKWh = Round3(r.EnergyShortfallKWh)
		out[i] = r
	}
	return out
}

// WriteResults writes one row per EV.
func WriteResults(w io.Writer, f Format, results []model.AllocationResult) error {
	rounded := RoundResults(results)
	if f == JSON {
		return WriteJSON(w, rounded)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"ev_id", "arrival_hour", "departure_hour", "energy_needed_kwh",
		"energy_delivered_kwh", "energy_shortfall_kwh", "completed",
	}); err != nil {
		return err
	}
	for _, r := range rounded {
		rec := []string{
			strconv.Itoa(r.EVID),
			strconv.Itoa(r.ArrivalHour),
			strconv.Itoa(r.DepartureHour),
			fmtFloat(r.EnergyNeededKWh),
			fmtFloat(r.EnergyDeliveredKWh),
			fmtFloat(r.EnergyShortfallKWh),
			strconv.FormatBool(r.Completed),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLoad writes one row per hour of the fleet load curve.
func WriteLoad(w io.Writer, f Format, curve model.FleetLoadCurve) error {
	rounded := make(model.FleetLoadCurve, len(curve))
	for i, p := range curve {
		rounded[i] = model.LoadPoint{Hour: p.Hour, LoadKW: Round3(p.LoadKW)}
	}
	if f == JSON {
		return WriteJSON(w, rounded)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"hour", "fleet_load_kw"}); err != nil {
		return err
	}
	for _, p := range rounded {
		if err := cw.Write([]string{strconv.Itoa(p.Hour), fmtFloat(p.LoadKW)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// MetricsEntries lists the fleet metrics as ordered key-value pairs.
func MetricsEntries(m model.FleetMetrics) [][2]string {
	return [][2]string{
		{"peak_load_kw", fmtFloat(Round3(m.PeakLoadKW))},
		{"peak_hour", strconv.Itoa(m.PeakHour)},
		{"total_energy_delivered_kwh", fmtFloat(Round3(m.TotalEnergyDeliveredKWh))},
		{"total_energy_needed_kwh", fmtFloat(Round3(m.TotalEnergyNeededKWh))},
		{"total_energy_shortfall_kwh", fmtFloat(Round3(m.TotalShortfallKWh))},
		{"ev_count", strconv.Itoa(m.EVCount)},
		{"incomplete_count", strconv.Itoa(m.IncompleteCount)},
		{"completion_rate_pct", fmtFloat(m.CompletionRatePct)},
		{"mean_shortfall_kwh", fmtFloat(Round3(m.MeanShortfallKWh))},
		{"p95_shortfall_kwh", fmtFloat(Round3(m.P95ShortfallKWh))},
	}
}

// WriteMetrics writes the metrics as "- key: value" lines, or as a JSON
// object.
func WriteMetrics(w io.Writer, f Format, m model.FleetMetrics) error {
	if f == JSON {
		return WriteJSON(w, m)
	}
	for _, kv := range MetricsEntries(m) {
		if _, err := fmt.Fprintf(w, " - %s: %s\n", kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// Round3 rounds v to three decimals.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
