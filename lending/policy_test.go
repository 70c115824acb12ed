package lending_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/lending-engine-go/lending"
)

func Test_DefaultPolicy_Is_Valid(t *testing.T) {
	policy := lending.DefaultPolicy()

	assert.NoError(t, policy.Validate())
	assert.Equal(t, 14*24*time.Hour, policy.LoanPeriod)
	assert.Equal(t, 5, policy.LoanCap)
	assert.Equal(t, lending.Cents(50), policy.DailyFine)
	assert.False(t, policy.LostCopyReturnsToStock)
}

func Test_Policy_Validate_Returns_First_Violation(t *testing.T) {
	testCases := []struct {
		name        string
		mutate      func(*lending.Policy)
		expectedErr error
	}{
		{
			name:        "zero loan period",
			mutate:      func(p *lending.Policy) { p.LoanPeriod = 0 },
			expectedErr: lending.ErrNonPositiveLoanPeriod,
		},
		{
			name:        "zero loan cap",
			mutate:      func(p *lending.Policy) { p.LoanCap = 0 },
			expectedErr: lending.ErrNonPositiveLoanCap,
		},
		{
			name:        "negative daily fine",
			mutate:      func(p *lending.Policy) { p.DailyFine = -1 },
			expectedErr: lending.ErrNegativeDailyFine,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			policy := lending.DefaultPolicy()
			tc.mutate(&policy)

			// act / assert
			assert.ErrorIs(t, policy.Validate(), tc.expectedErr)
		})
	}
}

func Test_Policy_With_Zero_Daily_Fine_Is_Valid(t *testing.T) {
	// a zero fine disables fining without touching the return transition
	policy := lending.DefaultPolicy()
	policy.DailyFine = 0

	assert.NoError(t, policy.Validate())
	assert.Zero(t, lending.CalculateFine(
		time.Date(2025, time.January, 24, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 30, 0, 0, 0, 0, time.UTC),
		policy,
	))
}
