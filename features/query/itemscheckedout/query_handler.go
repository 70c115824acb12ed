package itemscheckedout

import (
	"context"

	"github.com/openshelf/lending-engine-go/lending"
)

// QueryHandler serves the checked-out report from committed state.
type QueryHandler struct {
	storage lending.ReadAccess
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(storage lending.ReadAccess) QueryHandler {
	return QueryHandler{storage: storage}
}

// Handle returns every unresolved loan as one report row.
func (h QueryHandler) Handle(ctx context.Context, _ Query) (Result, error) {
	loans, err := h.storage.CheckedOutLoans(ctx)
	if err != nil {
		return Result{}, err
	}

	items := make([]CheckedOutItem, 0, len(loans))
	for _, loan := range loans {
		items = append(items, CheckedOutItem{
			LoanID:   loan.ID,
			ItemID:   loan.ItemID,
			MemberID: loan.MemberID,
			LoanDate: loan.LoanDate,
			DueDate:  loan.DueDate,
		})
	}

	return Result{Items: items}, nil
}
