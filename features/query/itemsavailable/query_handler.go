package itemsavailable

import (
	"context"

	"github.com/openshelf/lending-engine-go/lending"
)

// QueryHandler serves the availability report from committed state.
type QueryHandler struct {
	storage lending.ReadAccess
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(storage lending.ReadAccess) QueryHandler {
	return QueryHandler{storage: storage}
}

// Handle returns every item with at least one available copy.
func (h QueryHandler) Handle(ctx context.Context, _ Query) (Result, error) {
	catalogItems, err := h.storage.AvailableItems(ctx)
	if err != nil {
		return Result{}, err
	}

	items := make([]AvailableItem, 0, len(catalogItems))
	for _, item := range catalogItems {
		items = append(items, AvailableItem{
			ItemID:          item.ID,
			Title:           item.Title,
			AvailableCopies: item.AvailableCopies,
			TotalCopies:     item.TotalCopies,
		})
	}

	return Result{Items: items}, nil
}
