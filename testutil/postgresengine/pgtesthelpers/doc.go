// Package pgtesthelpers provides helpers for testing the engine against a
// real PostgreSQL database.
//
// It contains the schema DDL for the lending tables, cleanup helpers, and a
// wrapper that builds an engine from whichever database adapter the
// ADAPTER_TYPE environment variable selects (pgx.pool, sql.db or sqlx.db),
// so the full integration suite runs once per adapter in CI.
package pgtesthelpers
