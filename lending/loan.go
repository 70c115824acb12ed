package lending

import (
	"time"

	"github.com/google/uuid"
)

// LoanStatus is the stored lifecycle state of a loan.
//
// Note that "overdue" is a resolution status: it records that the loan WAS
// returned late. A loan that is currently unresolved and past its due date
// keeps the on_loan status; that condition is derived via IsPastDue, never
// stored.
type LoanStatus string

const (
	LoanStatusOnLoan   LoanStatus = "on_loan"
	LoanStatusReturned LoanStatus = "returned"
	LoanStatusOverdue  LoanStatus = "overdue"
	LoanStatusLost     LoanStatus = "lost"
)

// Loan is a lending record owned by this engine. It is created by a
// successful borrow, resolved at most once by a return or a lost
// declaration, and immutable afterwards except for the audit trail.
type Loan struct {
	ID         uuid.UUID
	ItemID     ItemIDString
	MemberID   MemberIDString
	LoanDate   time.Time
	DueDate    time.Time
	ReturnDate *time.Time
	Status     LoanStatus
}

// ReturnOutcome describes what a return transition produced, including
// whether a fine was derived and how large it is.
type ReturnOutcome struct {
	Status     LoanStatus
	DaysLate   int
	FineAmount Cents
	FineIssued bool
}

// StartLoan creates a loan in the on_loan state with the due date derived
// from the policy's loan period.
func StartLoan(id uuid.UUID, itemID ItemIDString, memberID MemberIDString, loanDate time.Time, policy Policy) Loan {
	loanDate = ToOccurredAt(loanDate)

	return Loan{
		ID:       id,
		ItemID:   itemID,
		MemberID: memberID,
		LoanDate: loanDate,
		DueDate:  loanDate.Add(policy.LoanPeriod),
		Status:   LoanStatusOnLoan,
	}
}

// IsUnresolved reports whether the loan still occupies a ledger slot,
// i.e. no return date has been recorded yet.
func (l Loan) IsUnresolved() bool {
	return l.ReturnDate == nil
}

// IsPastDue reports the derived condition "unresolved and past its due
// date", compared on whole UTC dates.
func (l Loan) IsPastDue(now time.Time) bool {
	return l.IsUnresolved() && ToUTCDate(l.DueDate).Before(ToUTCDate(now))
}

// Returned applies the return transition.
//
// Transition rules:
//
//	on_loan, returned on or before the due date -> returned
//	on_loan, returned after the due date        -> overdue, fine derived
//	any resolved loan                           -> ErrAlreadyReturned, no mutation
//
// Due-date comparison and late-day counting work on whole UTC dates.
func (l Loan) Returned(at time.Time, policy Policy) (Loan, ReturnOutcome, error) {
	if !l.IsUnresolved() {
		return l, ReturnOutcome{}, ErrAlreadyReturned
	}

	returnDate := ToOccurredAt(at)
	daysLate := DaysLate(l.DueDate, returnDate)

	returned := l
	returned.ReturnDate = &returnDate
	returned.Status = LoanStatusReturned

	outcome := ReturnOutcome{Status: LoanStatusReturned}

	if daysLate > 0 {
		returned.Status = LoanStatusOverdue
		outcome = ReturnOutcome{
			Status:     LoanStatusOverdue,
			DaysLate:   daysLate,
			FineAmount: CalculateFine(l.DueDate, returnDate, policy),
			FineIssued: true,
		}
	}

	return returned, outcome, nil
}

// DeclaredLost applies the out-of-band lost transition. The resolution
// timestamp is recorded in ReturnDate so that the loan leaves the unresolved
// set; the ledger disposition (copy gone vs. back to stock) is the
// orchestrator's job, driven by Policy.LostCopyReturnsToStock.
func (l Loan) DeclaredLost(at time.Time) (Loan, error) {
	if !l.IsUnresolved() {
		return l, ErrAlreadyReturned
	}

	resolvedAt := ToOccurredAt(at)

	lost := l
	lost.ReturnDate = &resolvedAt
	lost.Status = LoanStatusLost

	return lost, nil
}
