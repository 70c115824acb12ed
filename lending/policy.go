package lending

import (
	"errors"
	"time"
)

const (
	defaultLoanPeriod = 14 * 24 * time.Hour
	defaultLoanCap    = 5
	defaultDailyFine  = Cents(50)
)

var (
	// ErrNonPositiveLoanPeriod is returned when a policy carries a loan period of zero or less.
	ErrNonPositiveLoanPeriod = errors.New("loan period must be positive")

	// ErrNonPositiveLoanCap is returned when a policy carries a loan cap of zero or less.
	ErrNonPositiveLoanCap = errors.New("loan cap must be positive")

	// ErrNegativeDailyFine is returned when a policy carries a negative daily fine.
	ErrNegativeDailyFine = errors.New("daily fine must not be negative")
)

// Policy holds the injectable lending policy values. Handlers receive a
// Policy instead of reading package constants so that policy changes and
// policy tests never touch the core logic.
type Policy struct {
	// LoanPeriod is added to the loan date to derive the due date.
	LoanPeriod time.Duration

	// LoanCap is the maximum number of unresolved loans a member may hold.
	LoanCap int

	// DailyFine is charged per whole day a return is late.
	DailyFine Cents

	// LostCopyReturnsToStock selects the ledger disposition when a loan is
	// declared lost. False (the default) treats the physical copy as gone:
	// the item's total copy count shrinks by one and nothing returns to
	// availability. True releases the copy back to stock instead.
	LostCopyReturnsToStock bool
}

// DefaultPolicy returns the standard policy: 14-day loan period, cap of 5
// unresolved loans, 0.50 currency units per late day, lost copies are gone.
func DefaultPolicy() Policy {
	return Policy{
		LoanPeriod:             defaultLoanPeriod,
		LoanCap:                defaultLoanCap,
		DailyFine:              defaultDailyFine,
		LostCopyReturnsToStock: false,
	}
}

// Validate checks the policy values and returns the first violation found.
func (p Policy) Validate() error {
	if p.LoanPeriod <= 0 {
		return ErrNonPositiveLoanPeriod
	}

	if p.LoanCap <= 0 {
		return ErrNonPositiveLoanCap
	}

	if p.DailyFine < 0 {
		return ErrNegativeDailyFine
	}

	return nil
}
