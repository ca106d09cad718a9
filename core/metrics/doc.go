// Package metrics defines the sinks simulation runs are reported to. A
// RunReport carries the fleet load curve, the per-EV results and the fleet
// metrics of one run. Sinks are built from {type, conf} entries through a
// registry; infra/metrics and infra/mqtt register the Prometheus, InfluxDB
// and MQTT implementations.
package metrics
