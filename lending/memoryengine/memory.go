package memoryengine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/lending"
)

const defaultLockTimeout = 3 * time.Second

const (
	lockKeyItemPrefix   = "item:"
	lockKeyMemberPrefix = "member:"
	lockKeyLoanPrefix   = "loan:"
)

// Engine is an in-memory lending.Storage. State lives in maps guarded by a
// single mutex; row-level concurrency control comes from the lock table, so
// two units of work touching the same row serialize exactly like they would
// against the SQL engine.
type Engine struct {
	mu      sync.Mutex
	items   map[lending.ItemIDString]lending.Item
	members map[lending.MemberIDString]lending.Member
	loans   map[uuid.UUID]lending.Loan
	fines   map[uuid.UUID]lending.Fine
	audit   []lending.AuditEntry

	locks       *lockTable
	lockTimeout time.Duration
	logger      lending.Logger
}

var _ lending.Storage = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine) error

// WithLockTimeout bounds how long a unit of work waits for a row lock.
func WithLockTimeout(timeout time.Duration) Option {
	return func(e *Engine) error {
		if timeout <= 0 {
			return lending.ErrInvalidLockTimeout
		}

		e.lockTimeout = timeout

		return nil
	}
}

// WithLogger sets the logger for the Engine.
func WithLogger(logger lending.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// NewEngine creates an empty in-memory engine with optional configuration.
func NewEngine(options ...Option) (*Engine, error) {
	e := &Engine{
		items:       make(map[lending.ItemIDString]lending.Item),
		members:     make(map[lending.MemberIDString]lending.Member),
		loans:       make(map[uuid.UUID]lending.Loan),
		fines:       make(map[uuid.UUID]lending.Fine),
		locks:       newLockTable(),
		lockTimeout: defaultLockTimeout,
	}

	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// PutMember seeds or replaces a member record. Member administration is
// outside the engine's command surface, so fixtures and callers use this
// directly.
func (e *Engine) PutMember(member lending.Member) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.members[member.ID] = member
}

// PutItem seeds or replaces an item record without going through the
// add-item command.
func (e *Engine) PutItem(item lending.Item) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.items[item.ID] = item
}

// AuditEntries returns a copy of the audit trail in append order.
func (e *Engine) AuditEntries() []lending.AuditEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries := make([]lending.AuditEntry, len(e.audit))
	copy(entries, e.audit)

	return entries
}

// WithinTx runs fn as one atomic unit of work. Row locks acquired by fn are
// held until commit or rollback; staged writes become visible to other
// callers only after commit.
func (e *Engine) WithinTx(ctx context.Context, fn func(ctx context.Context, tx lending.TxAccess) error) error {
	access := newMemTx(e)
	defer access.releaseLocks()

	if err := fn(ctx, access); err != nil {
		e.logDebug("unit of work rolled back", "error", err.Error())
		return err
	}

	access.commit()
	e.logDebug("unit of work committed")

	return nil
}

func (e *Engine) logDebug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

/*** reporting views ***/

// CheckedOutLoans returns every unresolved loan ordered by loan date.
func (e *Engine) CheckedOutLoans(_ context.Context) ([]lending.Loan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	loans := make([]lending.Loan, 0)
	for _, loan := range e.loans {
		if loan.IsUnresolved() {
			loans = append(loans, loan)
		}
	}

	sortLoansByLoanDate(loans)

	return loans, nil
}

// OverdueLoans returns unresolved loans whose due date lies before asOf,
// ordered by due date.
func (e *Engine) OverdueLoans(_ context.Context, asOf time.Time) ([]lending.Loan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	loans := make([]lending.Loan, 0)
	for _, loan := range e.loans {
		if loan.IsUnresolved() && lending.ToUTCDate(loan.DueDate).Before(lending.ToUTCDate(asOf)) {
			loans = append(loans, loan)
		}
	}

	sort.Slice(loans, func(i, j int) bool {
		if loans[i].DueDate.Equal(loans[j].DueDate) {
			return loans[i].ID.String() < loans[j].ID.String()
		}

		return loans[i].DueDate.Before(loans[j].DueDate)
	})

	return loans, nil
}

// AvailableItems returns items with at least one available copy, ordered by
// title.
func (e *Engine) AvailableItems(_ context.Context) ([]lending.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := make([]lending.Item, 0)
	for _, item := range e.items {
		if item.HasAvailableCopy() {
			items = append(items, item)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Title == items[j].Title {
			return items[i].ID < items[j].ID
		}

		return items[i].Title < items[j].Title
	})

	return items, nil
}

// FinesWithStatus returns fines in the given status ordered by issue date.
func (e *Engine) FinesWithStatus(_ context.Context, status lending.FineStatus) ([]lending.Fine, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fines := make([]lending.Fine, 0)
	for _, fine := range e.fines {
		if fine.Status == status {
			fines = append(fines, fine)
		}
	}

	sort.Slice(fines, func(i, j int) bool {
		if fines[i].IssueDate.Equal(fines[j].IssueDate) {
			return fines[i].ID.String() < fines[j].ID.String()
		}

		return fines[i].IssueDate.Before(fines[j].IssueDate)
	})

	return fines, nil
}

// LoansForMember returns the member's full loan history, newest first.
func (e *Engine) LoansForMember(_ context.Context, memberID lending.MemberIDString) ([]lending.Loan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	loans := make([]lending.Loan, 0)
	for _, loan := range e.loans {
		if loan.MemberID == memberID {
			loans = append(loans, loan)
		}
	}

	sortLoansNewestFirst(loans)

	return loans, nil
}

// LoansForItem returns the item's full loan history, newest first.
func (e *Engine) LoansForItem(_ context.Context, itemID lending.ItemIDString) ([]lending.Loan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	loans := make([]lending.Loan, 0)
	for _, loan := range e.loans {
		if loan.ItemID == itemID {
			loans = append(loans, loan)
		}
	}

	sortLoansNewestFirst(loans)

	return loans, nil
}

func sortLoansByLoanDate(loans []lending.Loan) {
	sort.Slice(loans, func(i, j int) bool {
		if loans[i].LoanDate.Equal(loans[j].LoanDate) {
			return loans[i].ID.String() < loans[j].ID.String()
		}

		return loans[i].LoanDate.Before(loans[j].LoanDate)
	})
}

func sortLoansNewestFirst(loans []lending.Loan) {
	sort.Slice(loans, func(i, j int) bool {
		if loans[i].LoanDate.Equal(loans[j].LoanDate) {
			return loans[i].ID.String() < loans[j].ID.String()
		}

		return loans[i].LoanDate.After(loans[j].LoanDate)
	})
}
