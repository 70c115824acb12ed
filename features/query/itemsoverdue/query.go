package itemsoverdue

import (
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/lending"
)

const (
	queryType = "ItemsOverdue"
)

// Query requests all unresolved loans past their due date as of a point in
// time. AsOf makes the report reproducible; callers pass time.Now() for the
// live view.
type Query struct {
	AsOf time.Time
}

// QueryType returns the type identifier for this query, used for observability and routing.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates a new Query for the given point in time.
func BuildQuery(asOf time.Time) Query {
	return Query{AsOf: lending.ToOccurredAt(asOf)}
}

// OverdueItem is one row of the report: an unresolved loan past its due
// date, with the days overdue counted on whole UTC dates.
type OverdueItem struct {
	LoanID      uuid.UUID
	ItemID      lending.ItemIDString
	MemberID    lending.MemberIDString
	DueDate     time.Time
	DaysOverdue int
}

// Result is the report of all overdue loans, the longest-overdue first.
type Result struct {
	Items []OverdueItem
}
