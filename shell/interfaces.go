package shell

import (
	"context"
)

// Command represents the contract for all command types in the lending
// application. Each command encapsulates the intent and parameters of one
// business operation; CommandType enables polymorphic handling and
// observability instrumentation.
type Command interface {
	CommandType() string
}

// Result represents the contract for all command result types. Results
// expose their execution metadata so observability wrappers can record
// retry behavior without knowing the concrete result type.
type Result interface {
	HandlerOutcome() HandlerResult
}

// CoreCommandHandler defines the contract for components that process
// commands: run the unit of work, apply the pure decision logic, and report
// the outcome. Implementations focus on orchestration; observability
// decoration is layered on by wrapping.
type CoreCommandHandler[C Command, R Result] interface {
	Handle(ctx context.Context, command C) (R, error)
}

// Query represents the contract for all query types in the lending
// application. QueryType enables polymorphic handling and observability
// instrumentation.
type Query interface {
	QueryType() string
}

// CoreQueryHandler defines the contract for components that serve reporting
// queries from committed state.
type CoreQueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
