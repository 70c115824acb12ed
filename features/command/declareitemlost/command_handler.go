package declareitemlost

import (
	"context"

	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/shell"
)

const (
	copyActionRemoved         = "removed_from_collection"
	copyActionReturnedToStock = "returned_to_stock"
)

// Result carries the outcome of a lost declaration plus execution metadata.
// CopyReturnedToStock reports which ledger disposition the policy chose.
type Result struct {
	CopyReturnedToStock bool

	handlerResult shell.HandlerResult
}

// HandlerOutcome exposes the execution metadata for observability wrappers.
func (r Result) HandlerOutcome() shell.HandlerResult {
	return r.handlerResult
}

// CommandHandler orchestrates the lost-declaration workflow inside one unit
// of work: lock loan -> apply the lost transition -> update loan -> dispose
// of the copy per policy -> audit.
//
// Business Rules:
//
//	GIVEN: A loan with LoanID
//	WHEN: DeclareItemLost command is received
//	THEN: The loan resolves as lost; the copy either leaves the collection
//	      (total copies shrink) or returns to stock, depending on
//	      Policy.LostCopyReturnsToStock
//	ERROR: "loan is already resolved" if the loan was already returned or
//	       declared lost
type CommandHandler struct {
	storage      lending.Storage
	policy       lending.Policy
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(storage lending.Storage, policy lending.Policy, opts ...Option) CommandHandler {
	handler := CommandHandler{
		storage: storage,
		policy:  policy,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the lost-declaration workflow with retry logic for concurrency conflicts.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.executeCommand(retryCtx, command)
	}, h.retryOptions...)

	result := Result{
		CopyReturnedToStock: h.policy.LostCopyReturnsToStock,
		handlerResult:       shell.NewHandlerResult(retryMetrics),
	}

	return result, err
}

// executeCommand contains the core lost-declaration logic that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) error {
	return h.storage.WithinTx(ctx, func(txCtx context.Context, tx lending.TxAccess) error {
		loan, loanErr := tx.LoanForUpdate(txCtx, command.LoanID)
		if loanErr != nil {
			return loanErr
		}

		lost, transitionErr := loan.DeclaredLost(command.OccurredAt)
		if transitionErr != nil {
			return transitionErr
		}

		if updateErr := tx.UpdateLoan(txCtx, lost); updateErr != nil {
			return updateErr
		}

		copyAction := copyActionRemoved

		if h.policy.LostCopyReturnsToStock {
			copyAction = copyActionReturnedToStock

			if releaseErr := tx.ReleaseCopy(txCtx, loan.ItemID); releaseErr != nil {
				return releaseErr
			}
		} else {
			if removeErr := tx.RemoveCopy(txCtx, loan.ItemID); removeErr != nil {
				return removeErr
			}
		}

		lostAudit, lostAuditErr := lending.BuildAuditEntry(
			lending.AuditEntityLoan,
			loan.ID.String(),
			lending.AuditLoanDeclaredLost,
			loanLostPayload{
				ItemID:     loan.ItemID,
				MemberID:   loan.MemberID,
				CopyAction: copyAction,
			},
			command.OccurredAt,
		)
		if lostAuditErr != nil {
			return lostAuditErr
		}

		if appendErr := tx.AppendAudit(txCtx, lostAudit); appendErr != nil {
			return appendErr
		}

		if h.policy.LostCopyReturnsToStock {
			return nil
		}

		// The copy shrinking the collection is an item-level transition and
		// gets its own trail entry next to the loan resolution.
		removedAudit, removedAuditErr := lending.BuildAuditEntry(
			lending.AuditEntityItem,
			loan.ItemID,
			lending.AuditCopyRemoved,
			copyRemovedPayload{LoanID: loan.ID.String()},
			command.OccurredAt,
		)
		if removedAuditErr != nil {
			return removedAuditErr
		}

		return tx.AppendAudit(txCtx, removedAudit)
	})
}

type loanLostPayload struct {
	ItemID     string `json:"item_id"`
	MemberID   string `json:"member_id"`
	CopyAction string `json:"copy_action"`
}

type copyRemovedPayload struct {
	LoanID string `json:"loan_id"`
}
