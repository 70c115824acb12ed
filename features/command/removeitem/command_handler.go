package removeitem

import (
	"context"

	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/shell"
)

// Result carries the outcome of an item deletion plus execution metadata.
type Result struct {
	handlerResult shell.HandlerResult
}

// HandlerOutcome exposes the execution metadata for observability wrappers.
func (r Result) HandlerOutcome() shell.HandlerResult {
	return r.handlerResult
}

// CommandHandler orchestrates the item deletion workflow inside one unit of
// work: lock item -> count unresolved loans -> delete -> audit. The deletion
// guard and the delete run in the same unit of work, so a borrow that is
// admitted concurrently either sees the item gone or blocks the deletion.
//
// Business Rules:
//
//	GIVEN: An item with ItemID
//	WHEN: RemoveItem command is received
//	THEN: The item row and its ledger are deleted
//	ERROR: "item has active loans" if any loan on the item is unresolved
//	ERROR: "item not found" if the item does not exist
type CommandHandler struct {
	storage      lending.Storage
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
func NewCommandHandler(storage lending.Storage, opts ...Option) CommandHandler {
	handler := CommandHandler{
		storage: storage,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the deletion workflow with retry logic for concurrency conflicts.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.executeCommand(retryCtx, command)
	}, h.retryOptions...)

	return Result{handlerResult: shell.NewHandlerResult(retryMetrics)}, err
}

// executeCommand contains the core deletion logic that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) error {
	return h.storage.WithinTx(ctx, func(txCtx context.Context, tx lending.TxAccess) error {
		item, itemErr := tx.ItemForUpdate(txCtx, command.ItemID)
		if itemErr != nil {
			return itemErr
		}

		unresolvedCount, countErr := tx.UnresolvedLoanCountForItem(txCtx, command.ItemID)
		if countErr != nil {
			return countErr
		}

		if unresolvedCount > 0 {
			return lending.ErrItemHasActiveLoans
		}

		if deleteErr := tx.DeleteItem(txCtx, command.ItemID); deleteErr != nil {
			return deleteErr
		}

		auditEntry, auditErr := lending.BuildAuditEntry(
			lending.AuditEntityItem,
			command.ItemID,
			lending.AuditItemDeleted,
			itemDeletedPayload{
				Title:       item.Title,
				TotalCopies: item.TotalCopies,
			},
			command.OccurredAt,
		)
		if auditErr != nil {
			return auditErr
		}

		return tx.AppendAudit(txCtx, auditEntry)
	})
}

type itemDeletedPayload struct {
	Title       string `json:"title"`
	TotalCopies int    `json:"total_copies"`
}
