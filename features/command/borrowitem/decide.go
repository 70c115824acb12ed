package borrowitem

import (
	"time"

	"github.com/openshelf/lending-engine-go/lending"
)

// Decide implements the business logic that determines whether a borrow
// request is admitted. This is a pure function with no side effects - it
// takes a locked snapshot of the member, their unresolved loans, and the
// item, and returns nil or the first failing rule.
//
// Business Rules:
//
//	GIVEN: A member with MemberID and an item with ItemID
//	WHEN: BorrowItem command is received
//	THEN: A loan is opened and one copy is reserved
//	ERROR: "member is not active" if membership is expired or suspended
//	ERROR: "member has an overdue loan" if any unresolved loan is past due
//	ERROR: "member has reached the loan cap" if unresolved loans are at the cap
//	ERROR: "no copies of the item are available" if the ledger shows zero
//
// Eligibility rules run in fixed priority order before the stock check, so
// an ineligible member sees the same rejection whether or not a copy is free.
func Decide(member lending.Member, unresolvedLoans []lending.Loan, item lending.Item, now time.Time, policy lending.Policy) error {
	if err := lending.CheckEligibility(member, unresolvedLoans, now, policy); err != nil {
		return err
	}

	if !item.HasAvailableCopy() {
		return lending.ErrOutOfStock
	}

	return nil
}
