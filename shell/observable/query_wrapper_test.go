package observable_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/lending-engine-go/shell"
	"github.com/openshelf/lending-engine-go/shell/observable"
	"github.com/openshelf/lending-engine-go/testutil/observability/testdoubles"
)

type stubQuery struct{}

func (stubQuery) QueryType() string {
	return "StubQuery"
}

type stubQueryHandler struct {
	result []string
	err    error
}

func (h *stubQueryHandler) Handle(_ context.Context, _ stubQuery) ([]string, error) {
	return h.result, h.err
}

func Test_QueryWrapper_Records_Success_Metrics_Span_And_Logs(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	logger := testdoubles.NewContextualLoggerSpy()
	core := &stubQueryHandler{result: []string{"first", "second"}}

	wrapper, err := observable.NewQueryWrapper[stubQuery, []string](
		core,
		observable.WithQueryMetrics[stubQuery, []string](metrics),
		observable.WithQueryTracing[stubQuery, []string](tracing),
		observable.WithQueryContextualLogging[stubQuery, []string](logger),
	)
	assert.NoError(t, err)

	// act
	result, handleErr := wrapper.Handle(context.Background(), stubQuery{})

	// assert
	assert.NoError(t, handleErr)
	assert.Equal(t, []string{"first", "second"}, result)
	assert.Equal(t, 1, metrics.DurationCount(shell.QueryHandlerDurationMetric))
	assert.Equal(t, 1, metrics.CounterCount(shell.QueryHandlerCallsMetric))

	spans := tracing.SpansWithName(shell.SpanNameQueryHandle)
	assert.Len(t, spans, 1)
	assert.True(t, spans[0].Finished)
	assert.Equal(t, shell.StatusSuccess, spans[0].Status)

	assert.True(t, logger.HasMessage(shell.LogMsgQueryStarted))
	assert.True(t, logger.HasMessage(shell.LogMsgQueryCompleted))
}

func Test_QueryWrapper_Records_Failure_With_Error_Status(t *testing.T) {
	testCases := []struct {
		name           string
		handlerErr     error
		expectedStatus string
	}{
		{
			name:           "storage failure",
			handlerErr:     errors.New("storage unavailable"),
			expectedStatus: shell.StatusError,
		},
		{
			name:           "canceled context",
			handlerErr:     context.Canceled,
			expectedStatus: shell.StatusCanceled,
		},
		{
			name:           "deadline exceeded",
			handlerErr:     context.DeadlineExceeded,
			expectedStatus: shell.StatusTimeout,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			metrics := testdoubles.NewMetricsCollectorSpy()
			tracing := testdoubles.NewTracingCollectorSpy()
			logger := testdoubles.NewContextualLoggerSpy()
			core := &stubQueryHandler{err: tc.handlerErr}

			wrapper, err := observable.NewQueryWrapper[stubQuery, []string](
				core,
				observable.WithQueryMetrics[stubQuery, []string](metrics),
				observable.WithQueryTracing[stubQuery, []string](tracing),
				observable.WithQueryContextualLogging[stubQuery, []string](logger),
			)
			assert.NoError(t, err)

			// act
			_, handleErr := wrapper.Handle(context.Background(), stubQuery{})

			// assert
			assert.ErrorIs(t, handleErr, tc.handlerErr)

			spans := tracing.SpansWithName(shell.SpanNameQueryHandle)
			assert.Len(t, spans, 1)
			assert.Equal(t, tc.expectedStatus, spans[0].Status)
			assert.True(t, logger.HasMessage(shell.LogMsgQueryFailed))

			counters := metrics.CounterRecords()
			assert.Len(t, counters, 1)
			assert.Equal(t, shell.QueryHandlerCallsMetric, counters[0].Metric)
			assert.Equal(t, tc.expectedStatus, counters[0].Labels[shell.LogAttrStatus])
		})
	}
}
