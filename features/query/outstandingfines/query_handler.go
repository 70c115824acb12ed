package outstandingfines

import (
	"context"

	"github.com/openshelf/lending-engine-go/lending"
)

// QueryHandler serves the outstanding-fines report from committed state.
type QueryHandler struct {
	storage lending.ReadAccess
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(storage lending.ReadAccess) QueryHandler {
	return QueryHandler{storage: storage}
}

// Handle returns every outstanding fine plus the running total.
func (h QueryHandler) Handle(ctx context.Context, _ Query) (Result, error) {
	fines, err := h.storage.FinesWithStatus(ctx, lending.FineStatusOutstanding)
	if err != nil {
		return Result{}, err
	}

	result := Result{Fines: make([]OutstandingFine, 0, len(fines))}

	for _, fine := range fines {
		result.Fines = append(result.Fines, OutstandingFine{
			FineID:    fine.ID,
			LoanID:    fine.LoanID,
			Amount:    fine.Amount,
			IssueDate: fine.IssueDate,
		})
		result.TotalAmount += fine.Amount
	}

	return result, nil
}
