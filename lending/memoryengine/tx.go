package memoryengine

import (
	"context"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/lending"
)

// memTx implements lending.TxAccess. Writes go into overlays that commit
// atomically under the engine mutex; reads see the overlay first, then
// committed state. Row locks are idempotent within one unit of work, so a
// guarded ledger update on an already-locked item does not self-deadlock.
type memTx struct {
	engine *Engine

	held    []string
	heldSet map[string]bool

	items        map[lending.ItemIDString]lending.Item
	deletedItems map[lending.ItemIDString]bool
	loans        map[uuid.UUID]lending.Loan
	fines        []lending.Fine
	audit        []lending.AuditEntry
}

func newMemTx(engine *Engine) *memTx {
	return &memTx{
		engine:       engine,
		heldSet:      make(map[string]bool),
		items:        make(map[lending.ItemIDString]lending.Item),
		deletedItems: make(map[lending.ItemIDString]bool),
		loans:        make(map[uuid.UUID]lending.Loan),
	}
}

func (t *memTx) lock(ctx context.Context, key string) error {
	if t.heldSet[key] {
		return nil
	}

	if err := t.engine.locks.acquire(ctx, key, t.engine.lockTimeout); err != nil {
		return err
	}

	t.held = append(t.held, key)
	t.heldSet[key] = true

	return nil
}

func (t *memTx) releaseLocks() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.engine.locks.release(t.held[i])
	}

	t.held = nil
	t.heldSet = make(map[string]bool)
}

func (t *memTx) commit() {
	t.engine.mu.Lock()
	defer t.engine.mu.Unlock()

	for id, item := range t.items {
		t.engine.items[id] = item
	}

	for id := range t.deletedItems {
		delete(t.engine.items, id)
	}

	for id, loan := range t.loans {
		t.engine.loans[id] = loan
	}

	for _, fine := range t.fines {
		t.engine.fines[fine.ID] = fine
	}

	t.engine.audit = append(t.engine.audit, t.audit...)
}

/*** snapshot reads ***/

func (t *memTx) ItemForUpdate(ctx context.Context, itemID lending.ItemIDString) (lending.Item, error) {
	if err := t.lock(ctx, lockKeyItemPrefix+itemID); err != nil {
		return lending.Item{}, err
	}

	item, found := t.currentItem(itemID)
	if !found {
		return lending.Item{}, lending.ErrItemNotFound
	}

	return item, nil
}

func (t *memTx) MemberForUpdate(ctx context.Context, memberID lending.MemberIDString) (lending.Member, error) {
	if err := t.lock(ctx, lockKeyMemberPrefix+memberID); err != nil {
		return lending.Member{}, err
	}

	t.engine.mu.Lock()
	defer t.engine.mu.Unlock()

	member, found := t.engine.members[memberID]
	if !found {
		return lending.Member{}, lending.ErrMemberNotFound
	}

	return member, nil
}

func (t *memTx) LoanForUpdate(ctx context.Context, loanID lending.LoanID) (lending.Loan, error) {
	if err := t.lock(ctx, lockKeyLoanPrefix+loanID.String()); err != nil {
		return lending.Loan{}, err
	}

	loan, found := t.currentLoan(loanID)
	if !found {
		return lending.Loan{}, lending.ErrLoanNotFound
	}

	return loan, nil
}

func (t *memTx) UnresolvedLoansForMember(_ context.Context, memberID lending.MemberIDString) ([]lending.Loan, error) {
	loans := make([]lending.Loan, 0)

	for _, loan := range t.visibleLoans() {
		if loan.MemberID == memberID && loan.IsUnresolved() {
			loans = append(loans, loan)
		}
	}

	sortLoansByLoanDate(loans)

	return loans, nil
}

func (t *memTx) UnresolvedLoanCountForItem(_ context.Context, itemID lending.ItemIDString) (int, error) {
	count := 0

	for _, loan := range t.visibleLoans() {
		if loan.ItemID == itemID && loan.IsUnresolved() {
			count++
		}
	}

	return count, nil
}

/*** staged writes ***/

func (t *memTx) InsertItem(ctx context.Context, item lending.Item) error {
	if err := t.lock(ctx, lockKeyItemPrefix+item.ID); err != nil {
		return err
	}

	t.items[item.ID] = item
	delete(t.deletedItems, item.ID)

	return nil
}

func (t *memTx) InsertLoan(ctx context.Context, loan lending.Loan) error {
	if err := t.lock(ctx, lockKeyLoanPrefix+loan.ID.String()); err != nil {
		return err
	}

	t.loans[loan.ID] = loan

	return nil
}

func (t *memTx) UpdateLoan(ctx context.Context, loan lending.Loan) error {
	if err := t.lock(ctx, lockKeyLoanPrefix+loan.ID.String()); err != nil {
		return err
	}

	if _, found := t.currentLoan(loan.ID); !found {
		return lending.ErrLoanNotFound
	}

	t.loans[loan.ID] = loan

	return nil
}

func (t *memTx) InsertFine(_ context.Context, fine lending.Fine) error {
	t.fines = append(t.fines, fine)
	return nil
}

func (t *memTx) ReserveCopy(ctx context.Context, itemID lending.ItemIDString) error {
	if err := t.lock(ctx, lockKeyItemPrefix+itemID); err != nil {
		return err
	}

	item, found := t.currentItem(itemID)
	if !found || item.AvailableCopies <= 0 {
		return lending.ErrOutOfStock
	}

	item.AvailableCopies--
	t.items[itemID] = item

	return nil
}

func (t *memTx) ReleaseCopy(ctx context.Context, itemID lending.ItemIDString) error {
	if err := t.lock(ctx, lockKeyItemPrefix+itemID); err != nil {
		return err
	}

	item, found := t.currentItem(itemID)
	if !found || item.AvailableCopies >= item.TotalCopies {
		return lending.ErrOverRelease
	}

	item.AvailableCopies++
	t.items[itemID] = item

	return nil
}

func (t *memTx) RemoveCopy(ctx context.Context, itemID lending.ItemIDString) error {
	if err := t.lock(ctx, lockKeyItemPrefix+itemID); err != nil {
		return err
	}

	item, found := t.currentItem(itemID)
	if !found || item.TotalCopies <= 0 || item.AvailableCopies >= item.TotalCopies {
		return lending.ErrCopyNotRemovable
	}

	item.TotalCopies--
	t.items[itemID] = item

	return nil
}

func (t *memTx) DeleteItem(ctx context.Context, itemID lending.ItemIDString) error {
	if err := t.lock(ctx, lockKeyItemPrefix+itemID); err != nil {
		return err
	}

	if _, found := t.currentItem(itemID); !found {
		return lending.ErrItemNotFound
	}

	delete(t.items, itemID)
	t.deletedItems[itemID] = true

	return nil
}

func (t *memTx) AppendAudit(_ context.Context, entry lending.AuditEntry) error {
	t.audit = append(t.audit, entry)
	return nil
}

/*** overlay views ***/

func (t *memTx) currentItem(itemID lending.ItemIDString) (lending.Item, bool) {
	if t.deletedItems[itemID] {
		return lending.Item{}, false
	}

	if item, staged := t.items[itemID]; staged {
		return item, true
	}

	t.engine.mu.Lock()
	defer t.engine.mu.Unlock()

	item, found := t.engine.items[itemID]

	return item, found
}

func (t *memTx) currentLoan(loanID uuid.UUID) (lending.Loan, bool) {
	if loan, staged := t.loans[loanID]; staged {
		return loan, true
	}

	t.engine.mu.Lock()
	defer t.engine.mu.Unlock()

	loan, found := t.engine.loans[loanID]

	return loan, found
}

// visibleLoans merges committed loans with this unit of work's staged ones.
func (t *memTx) visibleLoans() map[uuid.UUID]lending.Loan {
	t.engine.mu.Lock()

	merged := make(map[uuid.UUID]lending.Loan, len(t.engine.loans)+len(t.loans))
	for id, loan := range t.engine.loans {
		merged[id] = loan
	}

	t.engine.mu.Unlock()

	for id, loan := range t.loans {
		merged[id] = loan
	}

	return merged
}
