package itemsavailable

import (
	"github.com/openshelf/lending-engine-go/lending"
)

const (
	queryType = "ItemsAvailable"
)

// Query requests all items with at least one available copy. It is
// parameter-less; availability always reflects committed state, never a
// cached count.
type Query struct{}

// QueryType returns the type identifier for this query, used for observability and routing.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates a new Query.
func BuildQuery() Query {
	return Query{}
}

// AvailableItem is one row of the report.
type AvailableItem struct {
	ItemID          lending.ItemIDString
	Title           string
	AvailableCopies int
	TotalCopies     int
}

// Result is the report of all borrowable items, ordered by title.
type Result struct {
	Items []AvailableItem
}
