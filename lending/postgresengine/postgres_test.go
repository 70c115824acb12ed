package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/lending-engine-go/lending"
)

func Test_NewEngineFromPGXPool_Fails_When_Database_Connection_Is_Nil(t *testing.T) {
	// act
	_, err := NewEngineFromPGXPool(nil)

	// assert
	assert.ErrorIs(t, err, lending.ErrNilDatabaseConnection)
}

func Test_NewEngineFromSQLDB_Fails_When_Database_Connection_Is_Nil(t *testing.T) {
	// act
	_, err := NewEngineFromSQLDB(nil)

	// assert
	assert.ErrorIs(t, err, lending.ErrNilDatabaseConnection)
}

func Test_NewEngineFromSQLX_Fails_When_Database_Connection_Is_Nil(t *testing.T) {
	// act
	_, err := NewEngineFromSQLX(nil)

	// assert
	assert.ErrorIs(t, err, lending.ErrNilDatabaseConnection)
}

func Test_NewEngine_Uses_Default_Table_Names_When_Not_Overridden(t *testing.T) {
	// arrange
	db := openNonConnectingDB(t)

	// act
	engine, err := NewEngineFromSQLDB(db)

	// assert
	require.NoError(t, err)
	assert.Equal(t, DefaultTableNames(), engine.tables)
	assert.Equal(t, defaultLockTimeout, engine.lockTimeout)
}

func Test_WithTableNames_Overrides_Defaults(t *testing.T) {
	// arrange
	db := openNonConnectingDB(t)
	custom := TableNames{
		Items:   "catalog_items",
		Members: "patrons",
		Loans:   "checkouts",
		Fines:   "penalties",
		Audit:   "journal",
	}

	// act
	engine, err := NewEngineFromSQLDB(db, WithTableNames(custom))

	// assert
	require.NoError(t, err)
	assert.Equal(t, custom, engine.tables)
}

func Test_WithTableNames_Fails_When_A_Table_Name_Is_Empty(t *testing.T) {
	// arrange
	db := openNonConnectingDB(t)
	incomplete := TableNames{Items: "items", Members: "members", Loans: "loans"}

	// act
	_, err := NewEngineFromSQLDB(db, WithTableNames(incomplete))

	// assert
	assert.ErrorIs(t, err, lending.ErrEmptyTableName)
}

func Test_WithLockTimeout_Fails_When_Timeout_Is_Not_Positive(t *testing.T) {
	testCases := []struct {
		name    string
		timeout time.Duration
	}{
		{name: "zero timeout", timeout: 0},
		{name: "negative timeout", timeout: -time.Second},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			db := openNonConnectingDB(t)

			// act
			_, err := NewEngineFromSQLDB(db, WithLockTimeout(tc.timeout))

			// assert
			assert.ErrorIs(t, err, lending.ErrInvalidLockTimeout)
		})
	}
}

func Test_MapDriverError_Translates_Conflict_Codes_To_ConcurrencyConflict(t *testing.T) {
	testCases := []struct {
		name string
		err  error
	}{
		{name: "pgx lock not available", err: &pgconn.PgError{Code: pgCodeLockNotAvailable}},
		{name: "pgx serialization failure", err: &pgconn.PgError{Code: pgCodeSerializationFailed}},
		{name: "pgx deadlock detected", err: &pgconn.PgError{Code: pgCodeDeadlockDetected}},
		{name: "pq lock not available", err: &pq.Error{Code: pq.ErrorCode(pgCodeLockNotAvailable)}},
		{name: "pq deadlock detected", err: &pq.Error{Code: pq.ErrorCode(pgCodeDeadlockDetected)}},
		{name: "wrapped pgx conflict", err: fmt.Errorf("exec failed: %w", &pgconn.PgError{Code: pgCodeSerializationFailed})},
	}

	engine := Engine{}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			mapped := engine.mapDriverError(context.Background(), tc.err)

			// assert
			assert.ErrorIs(t, mapped, lending.ErrConcurrencyConflict)
			assert.ErrorIs(t, mapped, unwrapTarget(tc.err))
		})
	}
}

func Test_MapDriverError_Passes_Through_Other_Errors_Unchanged(t *testing.T) {
	// arrange
	engine := Engine{}
	uniqueViolation := &pgconn.PgError{Code: pgCodeUniqueViolation}

	// act
	mapped := engine.mapDriverError(context.Background(), uniqueViolation)

	// assert
	assert.NotErrorIs(t, mapped, lending.ErrConcurrencyConflict)
	assert.Equal(t, error(uniqueViolation), mapped)
}

func Test_IsUniqueViolation_Recognizes_Duplicate_Key_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "pgx unique violation", err: &pgconn.PgError{Code: pgCodeUniqueViolation}, expected: true},
		{name: "pq unique violation", err: &pq.Error{Code: pq.ErrorCode(pgCodeUniqueViolation)}, expected: true},
		{name: "wrapped pgx unique violation", err: fmt.Errorf("insert failed: %w", &pgconn.PgError{Code: pgCodeUniqueViolation}), expected: true},
		{name: "pgx lock not available", err: &pgconn.PgError{Code: pgCodeLockNotAvailable}, expected: false},
		{name: "plain error", err: errors.New("boom"), expected: false},
		{name: "nil error", err: nil, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act / assert
			assert.Equal(t, tc.expected, isUniqueViolation(tc.err))
		})
	}
}

func Test_MapDriverError_Returns_Nil_For_Nil(t *testing.T) {
	// arrange
	engine := Engine{}

	// act / assert
	assert.NoError(t, engine.mapDriverError(context.Background(), nil))
}

// openNonConnectingDB returns a sql.DB handle that never dials; factory and
// option tests only need a non-nil handle.
func openNonConnectingDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("postgres", "postgres://localhost:5432/never_dialed?sslmode=disable")
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func unwrapTarget(err error) error {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr
	}

	return err
}
