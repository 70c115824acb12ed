package observable_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/shell"
	"github.com/openshelf/lending-engine-go/shell/observable"
	"github.com/openshelf/lending-engine-go/testutil/observability/testdoubles"
)

type stubCommand struct{}

func (stubCommand) CommandType() string {
	return "StubCommand"
}

type stubResult struct {
	outcome shell.HandlerResult
}

func (r stubResult) HandlerOutcome() shell.HandlerResult {
	return r.outcome
}

type stubCommandHandler struct {
	result stubResult
	err    error
	calls  int
}

func (h *stubCommandHandler) Handle(_ context.Context, _ stubCommand) (stubResult, error) {
	h.calls++
	return h.result, h.err
}

func Test_CommandWrapper_Records_Success_Metrics_Span_And_Logs(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	logger := testdoubles.NewContextualLoggerSpy()
	core := &stubCommandHandler{result: stubResult{outcome: shell.HandlerResult{RetryAttempts: 1}}}

	wrapper, err := observable.NewCommandWrapper[stubCommand, stubResult](
		core,
		observable.WithCommandMetrics[stubCommand, stubResult](metrics),
		observable.WithCommandTracing[stubCommand, stubResult](tracing),
		observable.WithCommandContextualLogging[stubCommand, stubResult](logger),
	)
	assert.NoError(t, err)

	// act
	_, handleErr := wrapper.Handle(context.Background(), stubCommand{})

	// assert
	assert.NoError(t, handleErr)
	assert.Equal(t, 1, core.calls)
	assert.Equal(t, 1, metrics.DurationCount(shell.CommandHandlerDurationMetric))
	assert.Equal(t, 1, metrics.CounterCount(shell.CommandHandlerCallsMetric))
	assert.Zero(t, metrics.CounterCount(shell.CommandHandlerRetriesMetric))

	spans := tracing.SpansWithName(shell.SpanNameCommandHandle)
	assert.Len(t, spans, 1)
	assert.True(t, spans[0].Finished)
	assert.Equal(t, shell.StatusSuccess, spans[0].Status)

	assert.True(t, logger.HasMessage(shell.LogMsgCommandStarted))
	assert.True(t, logger.HasMessage(shell.LogMsgCommandCompleted))
}

func Test_CommandWrapper_Classifies_Policy_Rejections(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	logger := testdoubles.NewContextualLoggerSpy()
	core := &stubCommandHandler{
		result: stubResult{outcome: shell.HandlerResult{RetryAttempts: 1, LastErrorType: shell.ErrorTypePolicyRejection}},
		err:    lending.ErrOutOfStock,
	}

	wrapper, err := observable.NewCommandWrapper[stubCommand, stubResult](
		core,
		observable.WithCommandMetrics[stubCommand, stubResult](metrics),
		observable.WithCommandTracing[stubCommand, stubResult](tracing),
		observable.WithCommandContextualLogging[stubCommand, stubResult](logger),
	)
	assert.NoError(t, err)

	// act
	_, handleErr := wrapper.Handle(context.Background(), stubCommand{})

	// assert
	assert.ErrorIs(t, handleErr, lending.ErrOutOfStock)
	assert.Equal(t, 1, metrics.CounterCount(shell.CommandHandlerPolicyRejectedMetric))
	assert.Zero(t, metrics.CounterCount(shell.CommandHandlerConcurrencyConflictMetric))

	spans := tracing.SpansWithName(shell.SpanNameCommandHandle)
	assert.Len(t, spans, 1)
	assert.Equal(t, shell.StatusPolicyRejected, spans[0].Status)

	// a rejection is a business outcome, not a failure
	assert.True(t, logger.HasMessage(shell.LogMsgCommandRejected))
	assert.False(t, logger.HasMessage(shell.LogMsgCommandFailed))
}

func Test_CommandWrapper_Records_Retry_Metadata(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	core := &stubCommandHandler{
		result: stubResult{outcome: shell.HandlerResult{
			RetryAttempts:   3,
			TotalRetryDelay: 25 * time.Millisecond,
			LastErrorType:   shell.ErrorTypeConcurrencyConflict,
		}},
	}

	wrapper, err := observable.NewCommandWrapper[stubCommand, stubResult](
		core,
		observable.WithCommandMetrics[stubCommand, stubResult](metrics),
	)
	assert.NoError(t, err)

	// act
	_, handleErr := wrapper.Handle(context.Background(), stubCommand{})

	// assert
	assert.NoError(t, handleErr)
	assert.Equal(t, 1, metrics.CounterCount(shell.CommandHandlerRetriesMetric))
	assert.Equal(t, 1, metrics.DurationCount(shell.CommandHandlerRetryDelayMetric))
	assert.Zero(t, metrics.CounterCount(shell.CommandHandlerMaxRetriesReachedMetric))
}

func Test_CommandWrapper_Records_Exhausted_Retries_As_Concurrency_Conflict(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	logger := testdoubles.NewContextualLoggerSpy()
	core := &stubCommandHandler{
		result: stubResult{outcome: shell.HandlerResult{
			RetryAttempts:    6,
			LastErrorType:    shell.ErrorTypeConcurrencyConflict,
			RetriesExhausted: true,
		}},
		err: lending.ErrConcurrencyConflict,
	}

	wrapper, err := observable.NewCommandWrapper[stubCommand, stubResult](
		core,
		observable.WithCommandMetrics[stubCommand, stubResult](metrics),
		observable.WithCommandContextualLogging[stubCommand, stubResult](logger),
	)
	assert.NoError(t, err)

	// act
	_, handleErr := wrapper.Handle(context.Background(), stubCommand{})

	// assert
	assert.ErrorIs(t, handleErr, lending.ErrConcurrencyConflict)
	assert.Equal(t, 1, metrics.CounterCount(shell.CommandHandlerMaxRetriesReachedMetric))
	assert.Equal(t, 1, metrics.CounterCount(shell.CommandHandlerConcurrencyConflictMetric))
	assert.True(t, logger.HasMessage(shell.LogMsgCommandFailed))
}

func Test_CommandWrapper_Classifies_Cancellation_And_Timeout(t *testing.T) {
	testCases := []struct {
		name            string
		handlerErr      error
		expectedCounter string
	}{
		{
			name:            "canceled context",
			handlerErr:      context.Canceled,
			expectedCounter: shell.CommandHandlerCanceledMetric,
		},
		{
			name:            "deadline exceeded",
			handlerErr:      context.DeadlineExceeded,
			expectedCounter: shell.CommandHandlerTimeoutMetric,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			metrics := testdoubles.NewMetricsCollectorSpy()
			core := &stubCommandHandler{
				result: stubResult{outcome: shell.HandlerResult{RetryAttempts: 1}},
				err:    tc.handlerErr,
			}

			wrapper, err := observable.NewCommandWrapper[stubCommand, stubResult](
				core,
				observable.WithCommandMetrics[stubCommand, stubResult](metrics),
			)
			assert.NoError(t, err)

			// act
			_, handleErr := wrapper.Handle(context.Background(), stubCommand{})

			// assert
			assert.ErrorIs(t, handleErr, tc.handlerErr)
			assert.Equal(t, 1, metrics.CounterCount(tc.expectedCounter))
		})
	}
}

func Test_CommandWrapper_Works_Without_Collectors(t *testing.T) {
	// arrange
	core := &stubCommandHandler{
		result: stubResult{outcome: shell.HandlerResult{RetryAttempts: 1}},
		err:    errors.New("storage unavailable"),
	}

	wrapper, err := observable.NewCommandWrapper[stubCommand, stubResult](core)
	assert.NoError(t, err)

	// act / assert: no collectors configured must not panic
	_, handleErr := wrapper.Handle(context.Background(), stubCommand{})
	assert.Error(t, handleErr)
}
