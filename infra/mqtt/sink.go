package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/evcharge/core/factory"
	coremetrics "github.com/kilianp07/evcharge/core/metrics"
	"github.com/kilianp07/evcharge/core/model"
	"github.com/kilianp07/evcharge/infra/logger"
)

func init() {
	_ = coremetrics.RegisterSink("mqtt", func(conf map[string]any) (coremetrics.RunSink, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewResultSink(c)
	})
}

// MetricsMessage is the payload published on <prefix>/<scenario>/metrics.
type MetricsMessage struct {
	RunID           string             `json:"run_id"`
	Scenario        string             `json:"scenario"`
	Policy          string             `json:"policy"`
	ChargingPowerKW float64            `json:"charging_power_kw"`
	Metrics         model.FleetMetrics `json:"metrics"`
	Timestamp       int64              `json:"timestamp"`
}

// LoadMessage is the payload published on <prefix>/<scenario>/load.
type LoadMessage struct {
	RunID    string               `json:"run_id"`
	Scenario string               `json:"scenario"`
	Curve    model.FleetLoadCurve `json:"curve"`
}

// ResultSink publishes run summaries to an MQTT broker.
type ResultSink struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

// NewResultSink connects to the broker described by cfg.
func NewResultSink(cfg Config) (*ResultSink, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.New("mqtt-sink")
	cli, err := connect(cfg, log)
	if err != nil {
		return nil, err
	}
	return &ResultSink{
		cli:        cli,
		prefix:     strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
	}, nil
}

// Topic returns the topic used for kind under scenario.
func (s *ResultSink) Topic(scenario, kind string) string {
	return fmt.Sprintf("%s/%s/%s", s.prefix, scenario, kind)
}

// RecordRun publishes the metrics and the load curve of a run.
func (s *ResultSink) RecordRun(r coremetrics.RunReport) error {
	metrics, err := json.Marshal(MetricsMessage{
		RunID:           r.RunID,
		Scenario:        r.Scenario,
		Policy:          r.Policy,
		ChargingPowerKW: r.ChargingPowerKW,
		Metrics:         r.Metrics,
		Timestamp:       r.Time.UnixMilli(),
	})
	if err != nil {
		return err
	}
	load, err := json.Marshal(LoadMessage{RunID: r.RunID, Scenario: r.Scenario, Curve: r.Curve})
	if err != nil {
		return err
	}
	if err := publish(s.cli, s.Topic(r.Scenario, "metrics"), s.qos, s.retain, metrics, s.maxRetries, s.backoff, s.log); err != nil {
		return fmt.Errorf("publish metrics: %w", err)
	}
	if err := publish(s.cli, s.Topic(r.Scenario, "load"), s.qos, s.retain, load, s.maxRetries, s.backoff, s.log); err != nil {
		return fmt.Errorf("publish load: %w", err)
	}
	s.log.Infof("published run %s for scenario %s", r.RunID, r.Scenario)
	return nil
}

// Close disconnects from the broker.
func (s *ResultSink) Close() error {
	if s.cli != nil && s.cli.IsConnected() {
		s.cli.Disconnect(250)
	}
	return nil
}
