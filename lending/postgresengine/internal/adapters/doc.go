// Package adapters provides database adapter implementations for the
// PostgreSQL lending engine.
//
// The package implements the adapter pattern to support multiple PostgreSQL
// database libraries: pgxpool.Pool, sql.DB, and sqlx.DB. All adapters
// provide equivalent functionality through a common DBAdapter interface,
// including transaction handles for the engine's units of work, so the
// engine works seamlessly with any supported connection type.
package adapters
