package borrowitem

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/shell"
)

// Result carries the outcome of a successful borrow plus execution metadata.
type Result struct {
	LoanID  uuid.UUID
	DueDate time.Time

	handlerResult shell.HandlerResult
}

// HandlerOutcome exposes the execution metadata for observability wrappers.
func (r Result) HandlerOutcome() shell.HandlerResult {
	return r.handlerResult
}

// CommandHandler orchestrates the borrow workflow inside one unit of work:
// lock member -> load unresolved loans -> lock item -> decide -> reserve
// copy -> insert loan -> audit. External wrappers handle all observability
// concerns.
//
// Lock order is member before item for every orchestrator that needs both,
// which rules out lock-order deadlocks between concurrent borrows.
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

// Handle executes the borrow workflow with retry logic. Concurrency
// conflicts rerun the whole unit of work against fresh state; policy
// rejections and not-found errors surface immediately.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	var loan lending.Loan

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		executedLoan, execErr := h.executeCommand(retryCtx, command)
		loan = executedLoan

		return execErr
	}, h.retryOptions...)

	result := Result{handlerResult: shell.NewHandlerResult(retryMetrics)}
	if err != nil {
		return result, err
	}

	result.LoanID = loan.ID
	result.DueDate = loan.DueDate

	return result, nil
}

// executeCommand contains the core borrow logic that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (lending.Loan, error) {
	var loan lending.Loan

	err := h.storage.WithinTx(ctx, func(txCtx context.Context, tx lending.TxAccess) error {
		member, memberErr := tx.MemberForUpdate(txCtx, command.MemberID)
		if memberErr != nil {
			return memberErr
		}

		unresolvedLoans, loansErr := tx.UnresolvedLoansForMember(txCtx, command.MemberID)
		if loansErr != nil {
			return loansErr
		}

		item, itemErr := tx.ItemForUpdate(txCtx, command.ItemID)
		if itemErr != nil {
			return itemErr
		}

		if decideErr := Decide(member, unresolvedLoans, item, command.OccurredAt, h.policy); decideErr != nil {
			return decideErr
		}

		if reserveErr := tx.ReserveCopy(txCtx, command.ItemID); reserveErr != nil {
			return reserveErr
		}

		loan = lending.StartLoan(uuid.New(), command.ItemID, command.MemberID, command.OccurredAt, h.policy)

		if insertErr := tx.InsertLoan(txCtx, loan); insertErr != nil {
			return insertErr
		}

		auditEntry, auditErr := lending.BuildAuditEntry(
			lending.AuditEntityLoan,
			loan.ID.String(),
			lending.AuditLoanOpened,
			loanOpenedPayload{
				ItemID:   loan.ItemID,
				MemberID: loan.MemberID,
				DueDate:  loan.DueDate,
			},
			command.OccurredAt,
		)
		if auditErr != nil {
			return auditErr
		}

		return tx.AppendAudit(txCtx, auditEntry)
	})

	return loan, err
}

type loanOpenedPayload struct {
	ItemID   string    `json:"item_id"`
	MemberID string    `json:"member_id"`
	DueDate  time.Time `json:"due_date"`
}
