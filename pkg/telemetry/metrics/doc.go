// Package metrics provides Prometheus instrumentation for the metering
// engine. Collectors are registered against a caller-provided registry so
// the host application controls exposition; nothing is registered
// globally.
package metrics
