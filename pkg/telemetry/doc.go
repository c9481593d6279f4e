// Package telemetry wires OpenTelemetry metrics, backed by a Prometheus
// exporter, and tracing into the pipeline executor, the way
// thaiyyal/backend/pkg/telemetry does for its workflow engine. Instruments
// here are scoped to process lifecycle: forks, reaps, and durations, rather
// than workflow/node/HTTP counters.
package telemetry
