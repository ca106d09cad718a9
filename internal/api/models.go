package api

import (
	"github.com/kilianp07/evcharge/core/model"
	"github.com/kilianp07/evcharge/core/profile"
)

// SimulateRequest is the body of POST /api/v1/simulate. Exactly one of
// Profiles and Generator describes the fleet; an empty request simulates
// the server's default generated fleet.
type SimulateRequest struct {
	Scenario        string                   `json:"scenario"`
	Policy          string                   `json:"policy"`
	PeakHours       []int                    `json:"peak_hours,omitempty"`
	ChargingPowerKW float64                  `json:"charging_power_kw,omitempty"`
	Profiles        []model.EVProfile        `json:"profiles,omitempty"`
	Generator       *profile.GeneratorConfig `json:"generator,omitempty"`
	IncludeResults  bool                     `json:"include_results,omitempty"`
}

// SimulateResponse summarizes one run.
type SimulateResponse struct {
	RunID           string                   `json:"run_id"`
	Scenario        string                   `json:"scenario"`
	Policy          string                   `json:"policy"`
	ChargingPowerKW float64                  `json:"charging_power_kw"`
	Metrics         model.FleetMetrics       `json:"metrics"`
	Curve           model.FleetLoadCurve     `json:"curve"`
	Results         []model.AllocationResult `json:"results,omitempty"`
}

// PoliciesResponse lists the registered policy types.
type PoliciesResponse struct {
	Policies []string `json:"policies"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	EVID    int    `json:"ev_id,omitempty"`
}
