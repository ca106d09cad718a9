package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/evcharge/core/metrics"
	"github.com/kilianp07/evcharge/infra/logger"
)

// InfluxSink writes run results to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails, so a missing database never blocks a
// simulation.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.RunSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes one fleet_load point per hour and one fleet_metrics
// point. Hourly points are stamped at that hour of the run's day.
func (s *InfluxSink) RecordRun(r coremetrics.RunReport) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, runPoints(r)...)
}

func runPoints(r coremetrics.RunReport) []*write.Point {
	day := r.Time.UTC().Truncate(24 * time.Hour)
	points := make([]*write.Point, 0, len(r.Curve)+1)
	for _, p := range r.Curve {
		points = append(points, write.NewPointWithMeasurement("fleet_load").
			AddTag("scenario", r.Scenario).
			AddTag("policy", r.Policy).
			AddTag("run_id", r.RunID).
			AddTag("hour", strconv.Itoa(p.Hour)).
			AddField("load_kw", round3(p.LoadKW)).
			SetTime(day.Add(time.Duration(p.Hour)*time.Hour)))
	}
	m := r.Metrics
	points = append(points, write.NewPointWithMeasurement("fleet_metrics").
		AddTag("scenario", r.Scenario).
		AddTag("policy", r.Policy).
		AddTag("run_id", r.RunID).
		AddField("charging_power_kw", r.ChargingPowerKW).
		AddField("peak_load_kw", round3(m.PeakLoadKW)).
		AddField("peak_hour", m.PeakHour).
		AddField("energy_delivered_kwh", round3(m.TotalEnergyDeliveredKWh)).
		AddField("energy_needed_kwh", round3(m.TotalEnergyNeededKWh)).
		AddField("completion_rate", m.CompletionRate).
		AddField("incomplete", m.IncompleteCount).
		AddField("mean_shortfall_kwh", round3(m.MeanShortfallKWh)).
		AddField("p95_shortfall_kwh", round3(m.P95ShortfallKWh)).
		SetTime(r.Time))
	return points
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
