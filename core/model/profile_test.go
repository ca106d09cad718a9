package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() EVProfile {
	return EVProfile{ID: 1, ArrivalHour: 8, DepartureHour: 17, BatteryKWh: 60, InitialSoC: 0.3, TargetSoC: 0.9, EnergyNeededKWh: 36}
}

func TestEVProfile_Hours(t *testing.T) {
	p := EVProfile{ArrivalHour: 10, DepartureHour: 13}
	assert.Equal(t, []int{10, 11, 12}, p.Hours())
	assert.Equal(t, 3, p.AvailableHours())
	assert.Empty(t, EVProfile{ArrivalHour: 5, DepartureHour: 5}.Hours())
}

func TestEVProfile_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EVProfile)
		want   error
		field  string
	}{
		{"valid", func(*EVProfile) {}, nil, ""},
		{"core columns only", func(p *EVProfile) { p.BatteryKWh, p.InitialSoC, p.TargetSoC = 0, 0, 0 }, nil, ""},
		{"id", func(p *EVProfile) { p.ID = 0 }, ErrInvalidID, "ev_id"},
		{"arrival low", func(p *EVProfile) { p.ArrivalHour = -1 }, ErrArrivalOutOfRange, "arrival_hour"},
		{"arrival high", func(p *EVProfile) { p.ArrivalHour = 24 }, ErrArrivalOutOfRange, "arrival_hour"},
		{"departure low", func(p *EVProfile) { p.ArrivalHour, p.DepartureHour = 0, 0 }, ErrDepartureOutOfRange, "departure_hour"},
		{"departure high", func(p *EVProfile) { p.DepartureHour = 24 }, ErrDepartureOutOfRange, "departure_hour"},
		{"empty window", func(p *EVProfile) { p.DepartureHour = p.ArrivalHour }, ErrWindow, "departure_hour"},
		{"battery", func(p *EVProfile) { p.BatteryKWh = -5 }, ErrBattery, "battery_kwh"},
		{"initial soc", func(p *EVProfile) { p.InitialSoC = 1.2 }, ErrSoC, "initial_soc"},
		{"target soc", func(p *EVProfile) { p.TargetSoC = -0.1 }, ErrSoC, "target_soc"},
		{"target below initial", func(p *EVProfile) { p.TargetSoC = 0.3 }, ErrTargetSoC, "target_soc"},
		{"energy", func(p *EVProfile) { p.EnergyNeededKWh = 0 }, ErrEnergy, "energy_needed_kwh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(&p)
			err := p.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			var verr *ValidationError
			if assert.True(t, errors.As(err, &verr)) {
				assert.Equal(t, tt.field, verr.Field)
			}
		})
	}
}

func TestEVProfile_ValidateBattery(t *testing.T) {
	assert.NoError(t, validProfile().ValidateBattery())

	p := validProfile()
	p.BatteryKWh, p.InitialSoC, p.TargetSoC = 0, 0, 0
	require.NoError(t, p.Validate())
	err := p.ValidateBattery()
	assert.ErrorIs(t, err, ErrBattery)
}

func TestValidateProfiles_Duplicate(t *testing.T) {
	p := validProfile()
	err := ValidateProfiles([]EVProfile{p, p})
	assert.True(t, errors.Is(err, ErrDuplicateID))
	assert.Contains(t, err.Error(), "ev 1")
	assert.NoError(t, ValidateProfiles(nil))
}

func TestHourlyEnergy_Total(t *testing.T) {
	assert.InDelta(t, 15.0, HourlyEnergy{10: 7, 11: 7, 12: 1}.Total(), 1e-12)
	assert.Zero(t, HourlyEnergy(nil).Total())
}

func TestFleetLoadCurve(t *testing.T) {
	c := NewFleetLoadCurve()
	assert.Len(t, c, HoursPerDay)
	c[17].LoadKW = 21
	assert.Equal(t, 21.0, c.At(17))
	assert.Zero(t, c.At(30))
	assert.Equal(t, 21.0, c.Loads()[17])
}
