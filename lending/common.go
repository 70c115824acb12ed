package lending

import (
	"errors"
	"time"
)

// Policy rejections: expected outcomes of the business rules.
// They are returned to the caller as-is, imply no retry, and never leave
// partial state behind.
var (
	ErrMembershipNotActive  = errors.New("member is not active")
	ErrMemberHasOverdueLoan = errors.New("member has an overdue loan")
	ErrLoanCapExceeded      = errors.New("member has reached the loan cap")
	ErrOutOfStock           = errors.New("no copies of the item are available")
	ErrAlreadyReturned      = errors.New("loan is already resolved")
	ErrItemHasActiveLoans   = errors.New("item has active loans")
	ErrItemAlreadyExists    = errors.New("item already exists")
	ErrNonPositiveCopyCount = errors.New("total copies must be positive")
)

// Not-found errors: the referenced row does not exist. Nothing is mutated.
var (
	ErrItemNotFound   = errors.New("item not found")
	ErrMemberNotFound = errors.New("member not found")
	ErrLoanNotFound   = errors.New("loan not found")
)

// ErrConcurrencyConflict indicates a transient conflict (lock wait timeout,
// serialization failure, or a guarded update that lost a race). The unit of
// work did not commit; the caller may retry the whole operation.
var ErrConcurrencyConflict = errors.New("concurrency conflict, unit of work did not commit")

// Invariant violations: these indicate a bookkeeping defect, not a user
// error. Engines log them at error level and abort the unit of work. They
// are never auto-corrected by clamping, since clamping would hide the bug.
var (
	ErrOverRelease      = errors.New("ledger over-release: available copies would exceed total copies")
	ErrCopyNotRemovable = errors.New("ledger copy removal: no outstanding copy to remove")
)

// Engine configuration errors.
var (
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")
	ErrEmptyTableName        = errors.New("empty table name supplied")
	ErrInvalidLockTimeout    = errors.New("lock timeout must be positive")
)

// IsPolicyRejection reports whether err is one of the expected business-rule
// rejections that callers handle as a normal outcome.
func IsPolicyRejection(err error) bool {
	return errors.Is(err, ErrMembershipNotActive) ||
		errors.Is(err, ErrMemberHasOverdueLoan) ||
		errors.Is(err, ErrLoanCapExceeded) ||
		errors.Is(err, ErrOutOfStock) ||
		errors.Is(err, ErrAlreadyReturned) ||
		errors.Is(err, ErrItemHasActiveLoans) ||
		errors.Is(err, ErrItemAlreadyExists) ||
		errors.Is(err, ErrNonPositiveCopyCount)
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrMemberNotFound) ||
		errors.Is(err, ErrLoanNotFound)
}

// IsInvariantViolation reports whether err indicates a ledger bookkeeping
// defect that must be surfaced rather than retried.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrOverRelease) || errors.Is(err, ErrCopyNotRemovable)
}

// ItemIDString represents an item identifier. Items are catalog entries
// owned by an external collaborator; only the two ledger fields are ours.
type ItemIDString = string

// MemberIDString represents a member identifier, owned by the external
// member-management collaborator.
type MemberIDString = string

// ToOccurredAt normalizes a timestamp to UTC with microsecond precision,
// matching what the storage engines persist.
func ToOccurredAt(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// ToUTCDate truncates a timestamp to its UTC calendar date. Due-date
// comparisons and late-day counts work on whole dates, not instants.
func ToUTCDate(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
