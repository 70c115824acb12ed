package postgresengine

import (
	"context"
	"time"

	"github.com/openshelf/lending-engine-go/lending"
)

const (
	metricUnitOfWorkDuration = "lending_unit_of_work_duration_seconds"
	metricSQLDuration        = "lending_sql_duration_seconds"
	metricConflictTotal      = "lending_concurrency_conflicts_total"

	spanNameUnitOfWork = "lending.unit_of_work"
	spanStatusOK       = "ok"
	spanStatusError    = "error"
)

// startSpan opens a tracing span when a collector is configured; the
// returned finish func is safe to call either way.
func (e Engine) startSpan(ctx context.Context, name string) (context.Context, func(err error)) {
	if e.tracingCollector == nil {
		return ctx, func(error) {}
	}

	spanCtx, span := e.tracingCollector.StartSpan(ctx, name, nil)

	return spanCtx, func(err error) {
		status := spanStatusOK
		var attrs map[string]string

		if err != nil {
			status = spanStatusError
			attrs = map[string]string{logAttrError: err.Error()}
		}

		e.tracingCollector.FinishSpan(span, status, attrs)
	}
}

func (e Engine) logDebug(ctx context.Context, msg string, args ...any) {
	if e.contextualLogger != nil {
		e.contextualLogger.DebugContext(ctx, msg, args...)
		return
	}

	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func (e Engine) logInfo(ctx context.Context, msg string, args ...any) {
	if e.contextualLogger != nil {
		e.contextualLogger.InfoContext(ctx, msg, args...)
		return
	}

	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

func (e Engine) logWarn(ctx context.Context, msg string, args ...any) {
	if e.contextualLogger != nil {
		e.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}

func (e Engine) logError(ctx context.Context, msg string, args ...any) {
	if e.contextualLogger != nil {
		e.contextualLogger.ErrorContext(ctx, msg, args...)
		return
	}

	if e.logger != nil {
		e.logger.Error(msg, args...)
	}
}

// logSQLWithDuration logs the executed statement including its duration at
// debug level and records the duration metric when a collector is set.
func (e Engine) logSQLWithDuration(ctx context.Context, sqlQuery string, duration time.Duration) {
	e.logDebug(ctx, logMsgSQLExecuted+sqlQuery, logAttrDurationMS, durationToMilliseconds(duration))

	if e.metricsCollector != nil {
		e.metricsCollector.RecordDuration(metricSQLDuration, duration, nil)
	}
}

func (e Engine) recordTxMetrics(ctx context.Context, duration time.Duration) {
	if contextual, ok := e.metricsCollector.(lending.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metricUnitOfWorkDuration, duration, nil)
		return
	}

	if e.metricsCollector != nil {
		e.metricsCollector.RecordDuration(metricUnitOfWorkDuration, duration, nil)
	}
}

func durationToMilliseconds(duration time.Duration) float64 {
	return float64(duration.Nanoseconds()) / 1e6
}
