// Package postgresengine provides the PostgreSQL-backed storage engine for
// the lending module.
//
// The engine supports multiple database adapters (pgx pool, database/sql,
// sqlx) behind a thin internal abstraction, so callers pick the driver that
// fits their stack without the engine caring.
//
// Every command runs through WithinTx as a single transaction: snapshot
// reads take row locks (SELECT ... FOR UPDATE) with a bounded lock_timeout,
// ledger mutations are guarded conditional updates, and any failure rolls
// back the whole unit of work. Lock timeouts, serialization failures, and
// deadlocks surface uniformly as lending.ErrConcurrencyConflict so the shell
// can retry the operation from scratch.
package postgresengine
