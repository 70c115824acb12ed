package lending

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Cents is a monetary amount in hundredths of a currency unit.
type Cents int64

// String formats the amount with two decimal places, e.g. Cents(300) -> "3.00".
func (c Cents) String() string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}

	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// FineStatus is the lifecycle state of a fine. The engine only ever creates
// fines as outstanding; paid and waived are written by the external billing
// collaborator.
type FineStatus string

const (
	FineStatusOutstanding FineStatus = "outstanding"
	FineStatusPaid        FineStatus = "paid"
	FineStatusWaived      FineStatus = "waived"
)

// Fine is a penalty derived from a late return. At most one fine exists per
// loan, created by the return transition that resolved the loan as overdue.
type Fine struct {
	ID          uuid.UUID
	LoanID      uuid.UUID
	Amount      Cents
	IssueDate   time.Time
	PaymentDate *time.Time
	Status      FineStatus
}

// DaysLate counts the whole UTC days between the due date and the return
// date. Zero or negative means the return was on time.
func DaysLate(dueDate time.Time, returnDate time.Time) int {
	return int(ToUTCDate(returnDate).Sub(ToUTCDate(dueDate)).Hours() / 24)
}

// CalculateFine derives the fine amount for a late return: whole days late
// times the policy's daily fine, floored at zero.
func CalculateFine(dueDate time.Time, returnDate time.Time, policy Policy) Cents {
	daysLate := DaysLate(dueDate, returnDate)
	if daysLate <= 0 {
		return 0
	}

	return Cents(daysLate) * policy.DailyFine
}

// BuildFine creates an outstanding fine with its issue date set to the
// return date that caused it.
func BuildFine(id uuid.UUID, loanID uuid.UUID, amount Cents, returnDate time.Time) Fine {
	return Fine{
		ID:        id,
		LoanID:    loanID,
		Amount:    amount,
		IssueDate: ToOccurredAt(returnDate),
		Status:    FineStatusOutstanding,
	}
}
