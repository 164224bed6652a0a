// Package infra groups the adapters of the allocation service: the zerolog
// logger, the MQTT delivery client and the Prometheus and InfluxDB sinks.
// They implement interfaces declared under core.
package infra
