package itemsoverdue

import (
	"context"

	"github.com/openshelf/lending-engine-go/lending"
)

// QueryHandler serves the overdue report from committed state.
type QueryHandler struct {
	storage lending.ReadAccess
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(storage lending.ReadAccess) QueryHandler {
	return QueryHandler{storage: storage}
}

// Handle returns every unresolved loan whose due date lies before the
// query's point in time.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Result, error) {
	loans, err := h.storage.OverdueLoans(ctx, query.AsOf)
	if err != nil {
		return Result{}, err
	}

	items := make([]OverdueItem, 0, len(loans))
	for _, loan := range loans {
		items = append(items, OverdueItem{
			LoanID:      loan.ID,
			ItemID:      loan.ItemID,
			MemberID:    loan.MemberID,
			DueDate:     loan.DueDate,
			DaysOverdue: lending.DaysLate(loan.DueDate, query.AsOf),
		})
	}

	return Result{Items: items}, nil
}
