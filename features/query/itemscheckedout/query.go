package itemscheckedout

import (
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/lending"
)

const (
	queryType = "ItemsCheckedOut"
)

// Query requests all currently unresolved loans. It is parameter-less.
type Query struct{}

// QueryType returns the type identifier for this query, used for observability and routing.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates a new Query.
func BuildQuery() Query {
	return Query{}
}

// CheckedOutItem is one row of the report: an unresolved loan joined with
// its identifiers and dates.
type CheckedOutItem struct {
	LoanID   uuid.UUID
	ItemID   lending.ItemIDString
	MemberID lending.MemberIDString
	LoanDate time.Time
	DueDate  time.Time
}

// Result is the report of all items currently checked out, ordered by loan date.
type Result struct {
	Items []CheckedOutItem
}
