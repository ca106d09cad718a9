// Package api exposes the charging simulator over HTTP.
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/kilianp07/evcharge/core/charging"
	"github.com/kilianp07/evcharge/core/logger"
	coremetrics "github.com/kilianp07/evcharge/core/metrics"
	"github.com/kilianp07/evcharge/core/model"
	"github.com/kilianp07/evcharge/core/profile"
	"github.com/kilianp07/evcharge/qa/scenarios"
)

// MaxFleetSize bounds the generated fleet a single request may ask for.
const MaxFleetSize = 10000

// Options configures the HTTP handler.
type Options struct {
	// Params are the defaults applied to every run.
	Params charging.Params
	// PeakHours feed peak-avoiding policies when a request has none.
	PeakHours []int
	// Generator describes the fleet used when a request carries none.
	Generator      profile.GeneratorConfig
	Sink           coremetrics.RunSink
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	Logger         logger.Logger
}

type server struct {
	opts Options
	log  logger.Logger
}

// NewHandler builds the gin router wrapped with CORS handling.
func NewHandler(opts Options) http.Handler {
	if opts.Sink == nil {
		opts.Sink = coremetrics.NopSink{}
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop{}
	}
	s := &server{opts: opts, log: opts.Logger}

	router := gin.New()
	router.Use(recovery(s.log), requestLogger(s.log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/policies", s.listPolicies)
		v1.POST("/simulate", s.simulate)
	}

	return cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
}

func (s *server) listPolicies(c *gin.Context) {
	c.JSON(http.StatusOK, PoliciesResponse{Policies: charging.PolicyNames()})
}

func (s *server) simulate(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	if req.Policy == "" {
		req.Policy = "uncontrolled"
	}
	if req.Scenario == "" {
		req.Scenario = req.Policy
	}
	sc := scenarios.Scenario{
		Name:            req.Scenario,
		Policy:          req.Policy,
		ChargingPowerKW: req.ChargingPowerKW,
		PeakHours:       req.PeakHours,
	}
	if len(sc.PeakHours) == 0 {
		sc.PeakHours = s.opts.PeakHours
	}
	if err := scenarios.Validate([]scenarios.Scenario{sc}); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_SCENARIO", err)
		return
	}

	fleet, err := s.fleet(req)
	if err != nil {
		writeError(c, http.StatusUnprocessableEntity, "INVALID_FLEET", err)
		return
	}

	outcomes, err := scenarios.Runner{Base: s.opts.Params, Logger: s.log}.Run(c.Request.Context(), []scenarios.Scenario{sc}, fleet)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			writeError(c, http.StatusUnprocessableEntity, "INVALID_PROFILES", err)
			return
		}
		writeError(c, http.StatusBadRequest, "SIMULATION_FAILED", err)
		return
	}
	run := outcomes[0].Run
	if err := s.opts.Sink.RecordRun(coremetrics.NewReport(sc.Name, run)); err != nil {
		s.log.Warnf("record run %s: %v", run.ID, err)
	}

	resp := SimulateResponse{
		RunID:           run.ID,
		Scenario:        sc.Name,
		Policy:          run.Policy,
		ChargingPowerKW: run.Params.ChargingPowerKW,
		Metrics:         run.Metrics,
		Curve:           run.Curve,
	}
	if req.IncludeResults {
		resp.Results = run.Results
	}
	c.JSON(http.StatusOK, resp)
}

func (s *server) fleet(req SimulateRequest) ([]model.EVProfile, error) {
	if len(req.Profiles) > 0 {
		if req.Generator != nil {
			return nil, errors.New("profiles and generator are mutually exclusive")
		}
		return req.Profiles, nil
	}
	cfg := s.opts.Generator
	if req.Generator != nil {
		cfg = *req.Generator
		if cfg.Size == 0 {
			cfg.Size = s.opts.Generator.Size
		}
		cfg.SetDefaults()
	}
	if cfg.Size > MaxFleetSize {
		return nil, fmt.Errorf("fleet size %d exceeds %d", cfg.Size, MaxFleetSize)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return profile.Generate(cfg)
}

func writeError(c *gin.Context, status int, code string, err error) {
	detail := ErrorDetail{Code: code, Message: err.Error()}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		detail.Field = verr.Field
		detail.EVID = verr.EVID
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: detail})
}
