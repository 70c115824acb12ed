package postgresengine

import (
	"time"

	"github.com/openshelf/lending-engine-go/lending"
)

// TableNames holds the names of the tables the engine reads and writes.
type TableNames struct {
	Items   string
	Members string
	Loans   string
	Fines   string
	Audit   string
}

// DefaultTableNames returns the table names used unless overridden.
func DefaultTableNames() TableNames {
	return TableNames{
		Items:   defaultItemsTableName,
		Members: defaultMembersTableName,
		Loans:   defaultLoansTableName,
		Fines:   defaultFinesTableName,
		Audit:   defaultAuditTableName,
	}
}

func (t TableNames) validate() error {
	if t.Items == "" || t.Members == "" || t.Loans == "" || t.Fines == "" || t.Audit == "" {
		return lending.ErrEmptyTableName
	}

	return nil
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine) error

// WithTableNames overrides the default table names.
func WithTableNames(names TableNames) Option {
	return func(e *Engine) error {
		if err := names.validate(); err != nil {
			return err
		}

		e.tables = names

		return nil
	}
}

// WithLockTimeout bounds how long a unit of work waits for a row lock.
// Exceeding the bound surfaces as lending.ErrConcurrencyConflict, which the
// caller may retry; it never hangs.
func WithLockTimeout(timeout time.Duration) Option {
	return func(e *Engine) error {
		if timeout <= 0 {
			return lending.ErrInvalidLockTimeout
		}

		e.lockTimeout = timeout

		return nil
	}
}

// WithLogger sets the logger for the Engine.
//
// Debug level: SQL statements with execution timing (development use)
// Info level: operation outcomes, durations, concurrency conflicts
// Warn level: non-critical issues like cleanup failures
// Error level: failures that abort a unit of work, including ledger
// invariant violations.
func WithLogger(logger lending.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithContextualLogger sets the context-aware logger for the Engine,
// enabling automatic trace correlation when tracing is configured.
func WithContextualLogger(logger lending.ContextualLogger) Option {
	return func(e *Engine) error {
		e.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Engine. The collector
// receives unit-of-work durations, commit/rollback counts, and concurrency
// conflict counts.
func WithMetrics(collector lending.MetricsCollector) Option {
	return func(e *Engine) error {
		e.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Engine. Every unit of work
// and every reporting read runs inside its own span.
func WithTracing(collector lending.TracingCollector) Option {
	return func(e *Engine) error {
		e.tracingCollector = collector
		return nil
	}
}
