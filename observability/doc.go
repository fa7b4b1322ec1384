// Package observability sets up OpenTelemetry tracing and metrics for
// llmkit binaries and offers the span and instrument helpers used by the
// provider middleware.
//
// Without InitTracer or InitMeter the global no-op providers are used, so
// library code can call StartSpan and record metrics unconditionally.
package observability
