// Package infra contains technical adapters: the zerolog logger, the
// Prometheus and InfluxDB result sinks and the MQTT result publisher.
// These packages depend only on the interfaces defined in the core packages.
package infra
