// Package testdoubles provides spy implementations of the observability
// contracts (Logger, ContextualLogger, MetricsCollector, TracingCollector)
// that capture calls for inspection in tests.
package testdoubles
