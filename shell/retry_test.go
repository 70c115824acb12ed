package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/shell"
)

func Test_Retry_Succeeds_On_First_Attempt_Without_Delay(t *testing.T) {
	// arrange
	calls := 0

	// act
	metrics, err := shell.RetryWithExponentialBackoff(context.Background(), func(_ context.Context) error {
		calls++
		return nil
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, metrics.Attempts)
	assert.Equal(t, time.Duration(0), metrics.TotalDelay)
	assert.Equal(t, shell.ErrorTypeNone, metrics.LastErrorType)
	assert.False(t, metrics.RetriesExhausted)
}

func Test_Retry_Retries_ConcurrencyConflicts_Until_Success(t *testing.T) {
	// arrange
	calls := 0

	// act
	metrics, err := shell.RetryWithExponentialBackoff(
		context.Background(),
		func(_ context.Context) error {
			calls++
			if calls < 3 {
				return lending.ErrConcurrencyConflict
			}

			return nil
		},
		shell.WithBaseDelay(time.Millisecond),
		shell.WithJitterFactor(0.0),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, metrics.Attempts)
	assert.Positive(t, metrics.TotalDelay)
	assert.Equal(t, shell.ErrorTypeNone, metrics.LastErrorType)
	assert.False(t, metrics.RetriesExhausted)
}

func Test_Retry_Fails_Fast_On_NonRetryable_Errors(t *testing.T) {
	testCases := []struct {
		name              string
		err               error
		expectedErrorType string
	}{
		{name: "policy rejection", err: lending.ErrOutOfStock, expectedErrorType: shell.ErrorTypePolicyRejection},
		{name: "not found", err: lending.ErrItemNotFound, expectedErrorType: shell.ErrorTypeOther},
		{name: "context deadline", err: context.DeadlineExceeded, expectedErrorType: shell.ErrorTypeContextDeadlineExceeded},
		{name: "arbitrary error", err: errors.New("boom"), expectedErrorType: shell.ErrorTypeOther},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			calls := 0

			// act
			metrics, err := shell.RetryWithExponentialBackoff(context.Background(), func(_ context.Context) error {
				calls++
				return tc.err
			})

			// assert
			require.ErrorIs(t, err, tc.err)
			assert.Equal(t, 1, calls, "non-retryable errors must not be retried")
			assert.Equal(t, tc.expectedErrorType, metrics.LastErrorType)
			assert.False(t, metrics.RetriesExhausted)
		})
	}
}

func Test_Retry_Reports_Exhaustion_When_Conflicts_Persist(t *testing.T) {
	// arrange
	calls := 0

	// act
	metrics, err := shell.RetryWithExponentialBackoff(
		context.Background(),
		func(_ context.Context) error {
			calls++
			return lending.ErrConcurrencyConflict
		},
		shell.WithMaxAttempts(3),
		shell.WithBaseDelay(time.Millisecond),
		shell.WithJitterFactor(0.0),
	)

	// assert
	require.ErrorIs(t, err, lending.ErrConcurrencyConflict)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, metrics.Attempts)
	assert.Equal(t, shell.ErrorTypeConcurrencyConflict, metrics.LastErrorType)
	assert.True(t, metrics.RetriesExhausted)
}

func Test_Retry_Stops_When_Context_Is_Canceled_During_Backoff(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())

	// act
	_, err := shell.RetryWithExponentialBackoff(
		ctx,
		func(_ context.Context) error {
			cancel()
			return lending.ErrConcurrencyConflict
		},
		shell.WithBaseDelay(time.Hour), // the cancellation must win, not the sleep
	)

	// assert
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_Retry_Option_Validation(t *testing.T) {
	testCases := []struct {
		name        string
		option      shell.RetryOption
		expectedErr error
	}{
		{name: "zero max attempts", option: shell.WithMaxAttempts(0), expectedErr: shell.ErrInvalidMaxAttempts},
		{name: "negative base delay", option: shell.WithBaseDelay(-time.Second), expectedErr: shell.ErrNegativeBaseDelay},
		{name: "jitter factor above one", option: shell.WithJitterFactor(1.5), expectedErr: shell.ErrInvalidJitterFactor},
		{name: "nil metrics collector", option: shell.WithMetrics(nil, "BorrowItem"), expectedErr: shell.ErrNilMetricsCollector},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := shell.RetryWithExponentialBackoff(context.Background(), func(_ context.Context) error {
				return nil
			}, tc.option)

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}
