package borrowitem_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/openshelf/lending-engine-go/features/command/borrowitem"
	"github.com/openshelf/lending-engine-go/lending"
)

var now = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func Test_Decide_Success_When_Member_Is_Eligible_And_Copy_Is_Available(t *testing.T) {
	// arrange
	policy := lending.DefaultPolicy()
	member := givenActiveMember()
	item := lending.BuildItem("item-1", "The Go Programming Language", 1)

	// act
	err := borrowitem.Decide(member, nil, item, now, policy)

	// assert
	assert.NoError(t, err)
}

func Test_Decide_Fails_With_Expected_Rejection(t *testing.T) {
	policy := lending.DefaultPolicy()

	testCases := []struct {
		name            string
		member          lending.Member
		unresolvedLoans []lending.Loan
		item            lending.Item
		expectedErr     error
	}{
		{
			name:        "member is suspended",
			member:      lending.Member{ID: "member-1", Name: "Sam Carter", Status: lending.MembershipSuspended},
			item:        lending.BuildItem("item-1", "In Stock", 1),
			expectedErr: lending.ErrMembershipNotActive,
		},
		{
			name:        "membership is expired",
			member:      lending.Member{ID: "member-1", Name: "Sam Carter", Status: lending.MembershipExpired},
			item:        lending.BuildItem("item-1", "In Stock", 1),
			expectedErr: lending.ErrMembershipNotActive,
		},
		{
			name:            "member has a past-due loan",
			member:          givenActiveMember(),
			unresolvedLoans: []lending.Loan{givenLoanStarted(now.AddDate(0, 0, -30), policy)},
			item:            lending.BuildItem("item-1", "In Stock", 1),
			expectedErr:     lending.ErrMemberHasOverdueLoan,
		},
		{
			name:            "member is at the loan cap",
			member:          givenActiveMember(),
			unresolvedLoans: givenLoansAtCap(policy),
			item:            lending.BuildItem("item-1", "In Stock", 1),
			expectedErr:     lending.ErrLoanCapExceeded,
		},
		{
			name:        "no copy is available",
			member:      givenActiveMember(),
			item:        lending.Item{ID: "item-1", Title: "Sold Out", TotalCopies: 2, AvailableCopies: 0},
			expectedErr: lending.ErrOutOfStock,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			err := borrowitem.Decide(tc.member, tc.unresolvedLoans, tc.item, now, policy)

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.True(t, lending.IsPolicyRejection(err))
		})
	}
}

func Test_Decide_Checks_Eligibility_Before_Stock(t *testing.T) {
	// arrange - a suspended member asking for a sold-out item
	policy := lending.DefaultPolicy()
	member := lending.Member{ID: "member-1", Name: "Sam Carter", Status: lending.MembershipSuspended}
	item := lending.Item{ID: "item-1", Title: "Sold Out", TotalCopies: 1, AvailableCopies: 0}

	// act
	err := borrowitem.Decide(member, nil, item, now, policy)

	// assert - the membership rejection wins over the stock rejection
	assert.ErrorIs(t, err, lending.ErrMembershipNotActive)
}

func Test_Decide_Ignores_Past_Due_Dates_On_Resolved_Loans(t *testing.T) {
	// arrange - a loan returned long after its due date, but resolved
	policy := lending.DefaultPolicy()
	member := givenActiveMember()
	item := lending.BuildItem("item-1", "In Stock", 1)

	resolvedLate := givenLoanStarted(now.AddDate(0, 0, -60), policy)
	returnDate := now.AddDate(0, 0, -1)
	resolvedLate.ReturnDate = &returnDate
	resolvedLate.Status = lending.LoanStatusOverdue

	// the unresolved set never contains resolved loans; an engine bug aside,
	// eligibility must not consider them
	unresolved := []lending.Loan{givenLoanStarted(now.AddDate(0, 0, -2), policy)}

	// act
	err := borrowitem.Decide(member, unresolved, item, now, policy)

	// assert
	assert.NoError(t, err)
}

/*** test helpers ***/

func givenActiveMember() lending.Member {
	return lending.Member{ID: "member-1", Name: "Sam Carter", Status: lending.MembershipActive}
}

func givenLoanStarted(loanDate time.Time, policy lending.Policy) lending.Loan {
	return lending.StartLoan(uuid.New(), "some-item", "member-1", loanDate, policy)
}

func givenLoansAtCap(policy lending.Policy) []lending.Loan {
	loans := make([]lending.Loan, 0, policy.LoanCap)
	for i := 0; i < policy.LoanCap; i++ {
		loans = append(loans, givenLoanStarted(now.AddDate(0, 0, -1), policy))
	}

	return loans
}
