package charging

import (
	"math"

	"github.com/kilianp07/evcharge/core/model"
)

// Allocation is the result of charging a single vehicle together with the
// energy it drew in each hour.
type Allocation struct {
	Result model.AllocationResult
	Hourly model.HourlyEnergy
}

// Allocate charges the vehicle at powerKW following the hour preference. Each
// hour delivers min(powerKW, remaining) kWh. Hours outside the plug-in window
// and repeated hours are skipped, so a vehicle never draws energy while it is
// away. Allocate never fails; a non-positive power delivers nothing.
func Allocate(p model.EVProfile, powerKW float64, preference []int, tol Tolerance) Allocation {
	hourly := make(model.HourlyEnergy, len(preference))
	remaining := p.EnergyNeededKWh
	var delivered float64

	if powerKW > 0 {
		for _, h := range preference {
			if remaining <= tol.ExhaustedKWh {
				break
			}
			if h < p.ArrivalHour || h >= p.DepartureHour {
				continue
			}
			if _, used := hourly[h]; used {
				continue
			}
			energy := math.Min(powerKW, remaining)
			hourly[h] = energy
			delivered += energy
			remaining -= energy
		}
	}

	return Allocation{
		Result: model.AllocationResult{
			EVID:               p.ID,
			ArrivalHour:        p.ArrivalHour,
			DepartureHour:      p.DepartureHour,
			EnergyNeededKWh:    p.EnergyNeededKWh,
			EnergyDeliveredKWh: delivered,
			EnergyShortfallKWh: math.Max(0, p.EnergyNeededKWh-delivered),
			Completed:          delivered >= p.EnergyNeededKWh-tol.SatisfiedKWh,
		},
		Hourly: hourly,
	}
}

// Feasible reports whether the need can be met within the plug-in window at
// the given power, regardless of the hour ordering.
func Feasible(p model.EVProfile, powerKW float64, tol Tolerance) bool {
	return p.EnergyNeededKWh <= float64(p.AvailableHours())*powerKW+tol.SatisfiedKWh
}
