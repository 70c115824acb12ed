// Package config provides PostgreSQL database configuration for engine testing.
//
// This package contains factory functions for creating database connections
// using the engine's supported PostgreSQL adapters (pgx.Pool, sql.DB, sqlx.DB)
// with pre-configured test database DSNs.
//
// The DSN can be overridden via the LENDING_TEST_POSTGRES_DSN environment
// variable so the same test suite runs against local Docker and CI databases.
package config
