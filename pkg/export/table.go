package export

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kilianp07/evcharge/core/model"
)

// ComparisonRow is one scenario in a comparison table.
type ComparisonRow struct {
	Scenario        string             `json:"scenario"`
	Policy          string             `json:"policy"`
	ChargingPowerKW float64            `json:"charging_power_kw"`
	Metrics         model.FleetMetrics `json:"metrics"`
}

// WriteComparison renders rows as an aligned text table, or as a JSON array.
func WriteComparison(w io.Writer, f Format, rows []ComparisonRow) error {
	if f == JSON {
		return WriteJSON(w, rows)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "scenario\tpolicy\tpower_kw\tpeak_kw\tpeak_hour\tdelivered_kwh\tneeded_kwh\tcompletion_pct\tp95_shortfall_kwh\t")
	for _, r := range rows {
		m := r.Metrics
		fmt.Fprintf(tw, "%s\t%s\t%g\t%.3f\t%d\t%.3f\t%.3f\t%.2f\t%.3f\t\n",
			r.Scenario, r.Policy, r.ChargingPowerKW, m.PeakLoadKW, m.PeakHour,
			m.TotalEnergyDeliveredKWh, m.TotalEnergyNeededKWh, m.CompletionRatePct, m.P95ShortfallKWh)
	}
	return tw.Flush()
}
