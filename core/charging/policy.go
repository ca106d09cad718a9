package charging

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kilianp07/evcharge/core/factory"
	"github.com/kilianp07/evcharge/core/model"
)

// ErrInvalidPeakHour is returned when a peak hour is outside [0,23].
var ErrInvalidPeakHour = errors.New("peak hour out of range")

// DefaultPeakHours are the evening hours avoided by the peak-avoiding policy.
func DefaultPeakHours() []int { return []int{16, 17, 18} }

// Policy orders the hours during which a vehicle may charge. The returned
// sequence is a permutation of the vehicle's plug-in window.
type Policy interface {
	Name() string
	HourPreference(p model.EVProfile) []int
}

// Immediate charges as soon as the vehicle arrives, hour after hour.
type Immediate struct{}

func (Immediate) Name() string { return "uncontrolled" }

// HourPreference returns the window in chronological order.
func (Immediate) HourPreference(p model.EVProfile) []int { return p.Hours() }

// PeakAvoiding uses every off-peak hour of the window before any peak hour.
// Both groups keep chronological order, so peak energy is only drawn when the
// off-peak hours cannot cover the need.
type PeakAvoiding struct {
	PeakHours []int
}

// NewPeakAvoiding validates the peak hours and returns the policy.
func NewPeakAvoiding(peakHours []int) (PeakAvoiding, error) {
	if err := ValidatePeakHours(peakHours); err != nil {
		return PeakAvoiding{}, err
	}
	cp := append([]int(nil), peakHours...)
	sort.Ints(cp)
	return PeakAvoiding{PeakHours: cp}, nil
}

func (PeakAvoiding) Name() string { return "rule_based" }

// HourPreference returns the off-peak hours followed by the peak hours.
func (pa PeakAvoiding) HourPreference(p model.EVProfile) []int {
	peak := make(map[int]struct{}, len(pa.PeakHours))
	for _, h := range pa.PeakHours {
		peak[h] = struct{}{}
	}
	hours := p.Hours()
	offPeak := make([]int, 0, len(hours))
	var inPeak []int
	for _, h := range hours {
		if _, ok := peak[h]; ok {
			inPeak = append(inPeak, h)
			continue
		}
		offPeak = append(offPeak, h)
	}
	return append(offPeak, inPeak...)
}

// Deferred charges as late as possible: the window in reverse order.
type Deferred struct{}

func (Deferred) Name() string { return "deferred" }

// HourPreference returns the window from the last hour back to arrival.
func (Deferred) HourPreference(p model.EVProfile) []int {
	hours := p.Hours()
	for i, j := 0, len(hours)-1; i < j; i, j = i+1, j-1 {
		hours[i], hours[j] = hours[j], hours[i]
	}
	return hours
}

// ValidatePeakHours checks that every hour lies in [0,23].
func ValidatePeakHours(hours []int) error {
	for _, h := range hours {
		if h < 0 || h >= model.HoursPerDay {
			return fmt.Errorf("%w: %d", ErrInvalidPeakHour, h)
		}
	}
	return nil
}

var policyRegistry = factory.NewRegistry[Policy]()

func init() {
	_ = RegisterPolicy("uncontrolled", func(map[string]any) (Policy, error) { return Immediate{}, nil })
	_ = RegisterPolicy("immediate", func(map[string]any) (Policy, error) { return Immediate{}, nil })
	_ = RegisterPolicy("deferred", func(map[string]any) (Policy, error) { return Deferred{}, nil })
	peak := func(conf map[string]any) (Policy, error) {
		var c struct {
			PeakHours []int `json:"peak_hours"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.PeakHours == nil {
			c.PeakHours = DefaultPeakHours()
		}
		return NewPeakAvoiding(c.PeakHours)
	}
	_ = RegisterPolicy("rule_based", peak)
	_ = RegisterPolicy("peak_avoiding", peak)
}

// RegisterPolicy adds a policy factory identified by name.
func RegisterPolicy(name string, f factory.Factory[Policy]) error {
	return policyRegistry.Register(name, f)
}

// NewPolicy creates a Policy from its configuration.
func NewPolicy(cfg factory.ModuleConfig) (Policy, error) {
	p, err := policyRegistry.Create(cfg)
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", cfg.Type, err)
	}
	return p, nil
}

// PolicyNames lists the registered policy types.
func PolicyNames() []string { return policyRegistry.Names() }
