package lending

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TxAccess is the row-scoped view the orchestrators work with inside one
// unit of work. The *ForUpdate reads take a row lock (or the engine's
// equivalent) so that the decision made on the snapshot still holds when the
// writes commit. Lock waits are bounded; exceeding the bound surfaces as
// ErrConcurrencyConflict, never as an indefinite hang.
type TxAccess interface {
	// ItemForUpdate locks and returns the item row. ErrItemNotFound if absent.
	ItemForUpdate(ctx context.Context, itemID ItemIDString) (Item, error)

	// MemberForUpdate locks and returns the member row. Locking the member
	// serializes concurrent borrows for the same member, which is what keeps
	// the loan cap raceproof. ErrMemberNotFound if absent.
	MemberForUpdate(ctx context.Context, memberID MemberIDString) (Member, error)

	// LoanForUpdate locks and returns the loan row. ErrLoanNotFound if absent.
	LoanForUpdate(ctx context.Context, loanID LoanID) (Loan, error)

	// UnresolvedLoansForMember returns the member's loans with no return date.
	UnresolvedLoansForMember(ctx context.Context, memberID MemberIDString) ([]Loan, error)

	// UnresolvedLoanCountForItem counts loans on the item with no return date.
	UnresolvedLoanCountForItem(ctx context.Context, itemID ItemIDString) (int, error)

	InsertItem(ctx context.Context, item Item) error
	InsertLoan(ctx context.Context, loan Loan) error
	UpdateLoan(ctx context.Context, loan Loan) error
	InsertFine(ctx context.Context, fine Fine) error

	// ReserveCopy decrements the item's available copies by one iff the count
	// is currently above zero, atomically with respect to all other ledger
	// calls on the same item. ErrOutOfStock when no copy is available.
	ReserveCopy(ctx context.Context, itemID ItemIDString) error

	// ReleaseCopy increments the item's available copies by one iff the count
	// is currently below the total. A failed guard is ErrOverRelease: a
	// bookkeeping defect that must abort the unit of work, never be clamped.
	ReleaseCopy(ctx context.Context, itemID ItemIDString) error

	// RemoveCopy shrinks the item's total copies by one without touching
	// availability - the lost-copy disposition. The guard requires an
	// outstanding copy to exist (available < total); a failed guard is
	// ErrCopyNotRemovable.
	RemoveCopy(ctx context.Context, itemID ItemIDString) error

	// DeleteItem removes the item row. The deletion guard (no unresolved
	// loans) is the orchestrator's responsibility and runs in the same unit
	// of work. ErrItemNotFound if absent.
	DeleteItem(ctx context.Context, itemID ItemIDString) error

	// AppendAudit records a state transition in the audit trail.
	AppendAudit(ctx context.Context, entry AuditEntry) error
}

// LoanID aliases the loan identifier type for signature readability.
type LoanID = uuid.UUID

// ReadAccess serves the reporting views. Reads see committed state only;
// there is no cross-request caching of availability counts.
type ReadAccess interface {
	// CheckedOutLoans returns all unresolved loans ("items currently checked out").
	CheckedOutLoans(ctx context.Context) ([]Loan, error)

	// OverdueLoans returns unresolved loans whose due date lies before asOf.
	OverdueLoans(ctx context.Context, asOf time.Time) ([]Loan, error)

	// AvailableItems returns items with at least one available copy.
	AvailableItems(ctx context.Context) ([]Item, error)

	// FinesWithStatus returns fines filtered by status.
	FinesWithStatus(ctx context.Context, status FineStatus) ([]Fine, error)

	// LoansForMember returns the member's loans, resolved and unresolved.
	LoansForMember(ctx context.Context, memberID MemberIDString) ([]Loan, error)

	// LoansForItem returns the item's loan history.
	LoansForItem(ctx context.Context, itemID ItemIDString) ([]Loan, error)
}

// Storage is the contract a storage engine fulfills: atomic units of work
// plus committed-state reads. WithinTx is all-or-nothing - when fn returns
// an error or the context is canceled before commit, no ledger or loan
// mutation from this unit of work is ever observable.
type Storage interface {
	ReadAccess
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx TxAccess) error) error
}
