package model

import (
	"errors"
	"fmt"
)

// HoursPerDay is the number of hourly slots in a simulated day.
const HoursPerDay = 24

var (
	ErrMissingColumn       = errors.New("missing column")
	ErrInvalidID           = errors.New("ev_id must be positive")
	ErrDuplicateID         = errors.New("duplicate ev_id")
	ErrArrivalOutOfRange   = errors.New("arrival_hour out of range")
	ErrDepartureOutOfRange = errors.New("departure_hour out of range")
	ErrWindow              = errors.New("departure_hour must be greater than arrival_hour")
	ErrBattery             = errors.New("battery_kwh must be positive")
	ErrSoC                 = errors.New("soc must be between 0 and 1")
	ErrTargetSoC           = errors.New("target_soc must be greater than initial_soc")
	ErrEnergy              = errors.New("energy_needed_kwh must be positive")
)

// ValidationError identifies the profile and field that broke a constraint.
type ValidationError struct {
	EVID  int
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.EVID == 0 {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("ev %d: %s: %v", e.EVID, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// EVProfile describes the single-day plug-in window and energy need of one
// vehicle. The vehicle can draw power during [ArrivalHour, DepartureHour).
type EVProfile struct {
	ID              int     `json:"ev_id"`
	ArrivalHour     int     `json:"arrival_hour"`
	DepartureHour   int     `json:"departure_hour"`
	BatteryKWh      float64 `json:"battery_kwh,omitempty"`
	InitialSoC      float64 `json:"initial_soc,omitempty"`
	TargetSoC       float64 `json:"target_soc,omitempty"`
	EnergyNeededKWh float64 `json:"energy_needed_kwh"`
}

// AvailableHours returns the number of hourly slots the vehicle is plugged in.
func (p EVProfile) AvailableHours() int {
	if p.DepartureHour <= p.ArrivalHour {
		return 0
	}
	return p.DepartureHour - p.ArrivalHour
}

// Hours lists the available hours in chronological order.
func (p EVProfile) Hours() []int {
	hours := make([]int, 0, p.AvailableHours())
	for h := p.ArrivalHour; h < p.DepartureHour; h++ {
		hours = append(hours, h)
	}
	return hours
}

// HasBattery reports whether any battery or SoC field holds a value.
func (p EVProfile) HasBattery() bool {
	return p.BatteryKWh != 0 || p.InitialSoC != 0 || p.TargetSoC != 0
}

// Validate checks the window and energy constraints of the profile. Battery
// and SoC fields are only checked when present, so profiles built from just
// the four core columns are accepted.
func (p EVProfile) Validate() error {
	if p.ID <= 0 {
		return &ValidationError{EVID: p.ID, Field: "ev_id", Err: ErrInvalidID}
	}
	if p.ArrivalHour < 0 || p.ArrivalHour > 23 {
		return &ValidationError{EVID: p.ID, Field: "arrival_hour", Err: ErrArrivalOutOfRange}
	}
	if p.DepartureHour < 1 || p.DepartureHour > 23 {
		return &ValidationError{EVID: p.ID, Field: "departure_hour", Err: ErrDepartureOutOfRange}
	}
	if p.DepartureHour <= p.ArrivalHour {
		return &ValidationError{EVID: p.ID, Field: "departure_hour", Err: ErrWindow}
	}
	if p.HasBattery() {
		if err := p.ValidateBattery(); err != nil {
			return err
		}
	}
	if p.EnergyNeededKWh <= 0 {
		return &ValidationError{EVID: p.ID, Field: "energy_needed_kwh", Err: ErrEnergy}
	}
	return nil
}

// ValidateBattery checks the battery capacity and SoC fields unconditionally.
// Zero values fail, so callers that know the fields were supplied use it
// instead of relying on HasBattery.
func (p EVProfile) ValidateBattery() error {
	if p.BatteryKWh <= 0 {
		return &ValidationError{EVID: p.ID, Field: "battery_kwh", Err: ErrBattery}
	}
	if p.InitialSoC < 0 || p.InitialSoC > 1 {
		return &ValidationError{EVID: p.ID, Field: "initial_soc", Err: ErrSoC}
	}
	if p.TargetSoC < 0 || p.TargetSoC > 1 {
		return &ValidationError{EVID: p.ID, Field: "target_soc", Err: ErrSoC}
	}
	if p.TargetSoC <= p.InitialSoC {
		return &ValidationError{EVID: p.ID, Field: "target_soc", Err: ErrTargetSoC}
	}
	return nil
}

// ValidateProfiles validates every profile and rejects duplicate IDs. It
// stops at the first violation.
func ValidateProfiles(profiles []EVProfile) error {
	seen := make(map[int]struct{}, len(profiles))
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, ok := seen[p.ID]; ok {
			return &ValidationError{EVID: p.ID, Field: "ev_id", Err: ErrDuplicateID}
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
