// Package shell contains the infrastructure side of the lending
// application: retry with exponential backoff for concurrency conflicts,
// handler result metadata, observability helpers, and the contracts that
// command and query handlers implement so they can be wrapped with
// observability decorators.
//
// The core/shell split keeps business decisions pure: feature packages hold
// the decide functions, the shell holds everything that talks to
// infrastructure.
package shell
