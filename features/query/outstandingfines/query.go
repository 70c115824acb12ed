package outstandingfines

import (
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/lending"
)

const (
	queryType = "OutstandingFines"
)

// Query requests all fines that have been issued but not yet paid or
// waived. It is parameter-less.
type Query struct{}

// QueryType returns the type identifier for this query, used for observability and routing.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates a new Query.
func BuildQuery() Query {
	return Query{}
}

// OutstandingFine is one row of the report.
type OutstandingFine struct {
	FineID    uuid.UUID
	LoanID    uuid.UUID
	Amount    lending.Cents
	IssueDate time.Time
}

// Result is the report of all outstanding fines ordered by issue date,
// with their total.
type Result struct {
	Fines       []OutstandingFine
	TotalAmount lending.Cents
}
