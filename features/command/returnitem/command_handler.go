package returnitem

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/shell"
)

// Result carries the outcome of a return plus execution metadata. FineID is
// set only when the return was late and a fine was derived.
type Result struct {
	Outcome lending.ReturnOutcome
	FineID  uuid.UUID

	handlerResult shell.HandlerResult
}

// HandlerOutcome exposes the execution metadata for observability wrappers.
func (r Result) HandlerOutcome() shell.HandlerResult {
	return r.handlerResult
}

// CommandHandler orchestrates the return workflow inside one unit of work:
// lock loan -> apply the return transition -> update loan -> release copy ->
// derive fine if late -> audit. The transition itself is a pure function on
// the Loan type.
//
// Business Rules:
//
//	GIVEN: A loan with LoanID
//	WHEN: ReturnItem command is received
//	THEN: The loan resolves as returned (on time) or overdue (late, fine derived)
//	      and the copy goes back to stock
//	ERROR: "loan is already resolved" if a return or lost declaration already
//	       happened - double returns never release a second copy
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

// Handle executes the return workflow with retry logic for concurrency conflicts.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	var outcome lending.ReturnOutcome
	var fineID uuid.UUID

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		executedOutcome, executedFineID, execErr := h.executeCommand(retryCtx, command)
		outcome = executedOutcome
		fineID = executedFineID

		return execErr
	}, h.retryOptions...)

	result := Result{handlerResult: shell.NewHandlerResult(retryMetrics)}
	if err != nil {
		return result, err
	}

	result.Outcome = outcome
	result.FineID = fineID

	return result, nil
}

// executeCommand contains the core return logic that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (lending.ReturnOutcome, uuid.UUID, error) {
	var outcome lending.ReturnOutcome
	var fineID uuid.UUID

	err := h.storage.WithinTx(ctx, func(txCtx context.Context, tx lending.TxAccess) error {
		loan, loanErr := tx.LoanForUpdate(txCtx, command.LoanID)
		if loanErr != nil {
			return loanErr
		}

		returned, returnOutcome, transitionErr := loan.Returned(command.OccurredAt, h.policy)
		if transitionErr != nil {
			return transitionErr
		}

		outcome = returnOutcome

		if updateErr := tx.UpdateLoan(txCtx, returned); updateErr != nil {
			return updateErr
		}

		if releaseErr := tx.ReleaseCopy(txCtx, loan.ItemID); releaseErr != nil {
			return releaseErr
		}

		if returnOutcome.FineIssued {
			fine := lending.BuildFine(uuid.New(), loan.ID, returnOutcome.FineAmount, *returned.ReturnDate)
			fineID = fine.ID

			if fineErr := tx.InsertFine(txCtx, fine); fineErr != nil {
				return fineErr
			}

			fineAudit, fineAuditErr := lending.BuildAuditEntry(
				lending.AuditEntityFine,
				fine.ID.String(),
				lending.AuditFineIssued,
				fineIssuedPayload{
					LoanID:      loan.ID.String(),
					AmountCents: int64(fine.Amount),
					DaysLate:    returnOutcome.DaysLate,
				},
				command.OccurredAt,
			)
			if fineAuditErr != nil {
				return fineAuditErr
			}

			if appendErr := tx.AppendAudit(txCtx, fineAudit); appendErr != nil {
				return appendErr
			}
		}

		loanAudit, loanAuditErr := lending.BuildAuditEntry(
			lending.AuditEntityLoan,
			loan.ID.String(),
			lending.AuditLoanReturned,
			loanReturnedPayload{
				ItemID:     loan.ItemID,
				MemberID:   loan.MemberID,
				Status:     string(returned.Status),
				ReturnDate: *returned.ReturnDate,
				DaysLate:   returnOutcome.DaysLate,
			},
			command.OccurredAt,
		)
		if loanAuditErr != nil {
			return loanAuditErr
		}

		return tx.AppendAudit(txCtx, loanAudit)
	})

	return outcome, fineID, err
}

type loanReturnedPayload struct {
	ItemID     string    `json:"item_id"`
	MemberID   string    `json:"member_id"`
	Status     string    `json:"status"`
	ReturnDate time.Time `json:"return_date"`
	DaysLate   int       `json:"days_late"`
}

type fineIssuedPayload struct {
	LoanID      string `json:"loan_id"`
	AmountCents int64  `json:"amount_cents"`
	DaysLate    int    `json:"days_late"`
}
