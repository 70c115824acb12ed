package shell

import "time"

// HandlerResult captures the execution metadata of a command handler run -
// how many attempts it took and how the final attempt ended - without
// coupling the handler to a specific observability implementation.
type HandlerResult struct {
	// RetryAttempts is the total number of attempts made (1 for no retries, 2+ for retries).
	RetryAttempts int

	// TotalRetryDelay is the cumulative time spent in retry backoff delays.
	// It excludes execution time, only counting sleep periods.
	TotalRetryDelay time.Duration

	// LastErrorType categorizes the final error. Values: "none" (success),
	// "concurrency_conflict", "context_canceled",
	// "context_deadline_exceeded", "policy_rejection", "other".
	LastErrorType string

	// RetriesExhausted indicates whether max retry attempts were reached
	// with a retryable error still occurring.
	RetriesExhausted bool
}

// NewHandlerResult converts the retry metadata of one execution into a
// HandlerResult. It serves the success and the error case alike.
func NewHandlerResult(retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}
