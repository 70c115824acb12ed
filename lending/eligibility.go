package lending

import "time"

// CheckEligibility evaluates whether a member may be admitted for a new
// borrow. This is a pure function over a snapshot of the member and their
// unresolved loans; the orchestrator must read that snapshot inside the same
// unit of work that reserves the copy, otherwise two racing borrows for the
// same member could both pass.
//
// The checks run in fixed priority order and the first failure wins:
//
//  1. Membership must be active (ErrMembershipNotActive).
//  2. No unresolved loan may be past its due date (ErrMemberHasOverdueLoan) -
//     a single overdue loan blocks all new borrowing.
//  3. The count of unresolved loans must be below the policy's loan cap
//     (ErrLoanCapExceeded).
func CheckEligibility(member Member, unresolvedLoans []Loan, now time.Time, policy Policy) error {
	if !member.IsActive() {
		return ErrMembershipNotActive
	}

	for _, loan := range unresolvedLoans {
		if loan.IsPastDue(now) {
			return ErrMemberHasOverdueLoan
		}
	}

	if len(unresolvedLoans) >= policy.LoanCap {
		return ErrLoanCapExceeded
	}

	return nil
}
