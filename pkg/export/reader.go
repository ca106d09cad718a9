package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/kilianp07/evcharge/core/model"
)

var (
	requiredColumns = []string{"ev_id", "arrival_hour", "departure_hour", "energy_needed_kwh"}
	batteryColumns  = []string{"battery_kwh", "initial_soc", "target_soc"}
)

// ReadProfiles parses a profile CSV with a header row. The columns ev_id,
// arrival_hour, departure_hour and energy_needed_kwh are required; battery
// and SoC columns are read when present. Once any of them appears in the
// header every row must carry valid battery and SoC values. available_hours
// is derived and ignored on input. The parsed fleet is validated before it
// is returned.
func ReadProfiles(r io.Reader) ([]model.EVProfile, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &model.ValidationError{Field: "header", Err: model.ErrMissingColumn}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &model.ValidationError{Field: strings.Join(missing, ","), Err: model.ErrMissingColumn}
	}
	withBattery := slices.ContainsFunc(batteryColumns, func(c string) bool {
		_, ok := idx[c]
		return ok
	})

	var profiles []model.EVProfile
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		p, err := parseProfile(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if withBattery {
			if err := p.ValidateBattery(); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		profiles = append(profiles, p)
	}
	if err := model.ValidateProfiles(profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func parseProfile(rec []string, idx map[string]int) (model.EVProfile, error) {
	var (
		p   model.EVProfile
		err error
	)
	if p.ID, err = intField(rec, idx, "ev_id"); err != nil {
		return p, err
	}
	if p.ArrivalHour, err = intField(rec, idx, "arrival_hour"); err != nil {
		return p, err
	}
	if p.DepartureHour, err = intField(rec, idx, "departure_hour"); err != nil {
		return p, err
	}
	if p.EnergyNeededKWh, err = floatField(rec, idx, "energy_needed_kwh"); err != nil {
		return p, err
	}
	if p.BatteryKWh, err = floatField(rec, idx, "battery_kwh"); err != nil {
		return p, err
	}
	if p.InitialSoC, err = floatField(rec, idx, "initial_soc"); err != nil {
		return p, err
	}
	if p.TargetSoC, err = floatField(rec, idx, "target_soc"); err != nil {
		return p, err
	}
	return p, nil
}

// cell returns the trimmed value of column name, or "" when the column is
// absent or the row is short.
func cell(rec []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func intField(rec []string, idx map[string]int, name string) (int, error) {
	s := cell(rec, idx, name)
	if s == "" {
		return 0, fmt.Errorf("%s: empty value", name)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Accept integral floats such as "10.0" written by spreadsheet tools.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		v = int(f)
	}
	return v, nil
}

func floatField(rec []string, idx map[string]int, name string) (float64, error) {
	s := cell(rec, idx, name)
	if s == "" {
		if slices.Contains(requiredColumns, name) {
			return 0, fmt.Errorf("%s: empty value", name)
		}
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}
