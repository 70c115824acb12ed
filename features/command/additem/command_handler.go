package additem

import (
	"context"
	"errors"

	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/shell"
)

// Result carries the outcome of an item addition plus execution metadata.
type Result struct {
	handlerResult shell.HandlerResult
}

// HandlerOutcome exposes the execution metadata for observability wrappers.
func (r Result) HandlerOutcome() shell.HandlerResult {
	return r.handlerResult
}

// CommandHandler orchestrates the item addition workflow inside one unit of
// work: validate -> check absence -> insert -> audit.
//
// Business Rules:
//
//	GIVEN: An item identifier, a title, and a copy count
//	WHEN: AddItem command is received
//	THEN: The item is created with all copies available
//	ERROR: "total copies must be positive" for a non-positive copy count
//	ERROR: "item already exists" if the identifier is taken
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

// Handle executes the addition workflow with retry logic for concurrency conflicts.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	if command.TotalCopies <= 0 {
		return Result{handlerResult: shell.HandlerResult{LastErrorType: shell.ErrorTypePolicyRejection}},
			lending.ErrNonPositiveCopyCount
	}

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.executeCommand(retryCtx, command)
	}, h.retryOptions...)

	return Result{handlerResult: shell.NewHandlerResult(retryMetrics)}, err
}

// executeCommand contains the core addition logic that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) error {
	return h.storage.WithinTx(ctx, func(txCtx context.Context, tx lending.TxAccess) error {
		_, lookupErr := tx.ItemForUpdate(txCtx, command.ItemID)
		if lookupErr == nil {
			return lending.ErrItemAlreadyExists
		}

		if !errors.Is(lookupErr, lending.ErrItemNotFound) {
			return lookupErr
		}

		item := lending.BuildItem(command.ItemID, command.Title, command.TotalCopies)

		if insertErr := tx.InsertItem(txCtx, item); insertErr != nil {
			return insertErr
		}

		auditEntry, auditErr := lending.BuildAuditEntry(
			lending.AuditEntityItem,
			item.ID,
			lending.AuditItemAdded,
			itemAddedPayload{
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

type itemAddedPayload struct {
	Title       string `json:"title"`
	TotalCopies int    `json:"total_copies"`
}
