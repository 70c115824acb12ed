// Package memoryengine provides an in-memory storage engine for the lending
// module.
//
// It fulfills the same contract as the PostgreSQL engine: units of work are
// atomic, snapshot reads hold per-row locks until commit, lock waits are
// bounded and surface as lending.ErrConcurrencyConflict, and ledger
// mutations carry the same guards. That makes it a drop-in engine for tests,
// including concurrency tests that race real goroutines against each other
// without a database.
package memoryengine
