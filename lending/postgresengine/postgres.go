package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/lending/postgresengine/internal/adapters"
)

const (
	defaultItemsTableName   = "items"
	defaultMembersTableName = "members"
	defaultLoansTableName   = "loans"
	defaultFinesTableName   = "fines"
	defaultAuditTableName   = "audit_log"

	defaultLockTimeout = 3 * time.Second

	logMsgBeginTxFailed      = "failed to begin transaction"
	logMsgCommitFailed       = "failed to commit transaction"
	logMsgRollbackFailed     = "failed to roll back transaction"
	logMsgBuildQueryFailed   = "failed to build sql statement"
	logMsgDBQueryFailed      = "database query execution failed"
	logMsgDBExecFailed       = "database execution failed"
	logMsgCloseRowsFailed    = "failed to close database rows"
	logMsgScanRowFailed      = "failed to scan database row"
	logMsgRowsAffectedFailed = "failed to get rows affected count"
	logMsgTxCompleted        = "unit of work committed"
	logMsgConflictDetected   = "concurrency conflict detected"
	logMsgInvariantViolated  = "ledger invariant violated"
	logMsgSQLExecuted        = "executed sql for: "
	logMsgOperation          = "lending engine operation: "
	logAttrError             = "error"
	logAttrQuery             = "query"
	logAttrItemID            = "item_id"
	logAttrDurationMS        = "duration_ms"

	colID         = "id"
	colTitle      = "title"
	colTotal      = "total_copies"
	colAvailable  = "available_copies"
	colName       = "name"
	colMembership = "membership_status"
	colItemID     = "item_id"
	colMemberID   = "member_id"
	colLoanID     = "loan_id"
	colLoanDate   = "loan_date"
	colDueDate    = "due_date"
	colReturnDate = "return_date"
	colStatus     = "status"
	colAmount     = "amount_cents"
	colIssueDate  = "issue_date"
	colPayDate    = "payment_date"
	colEntityType = "entity_type"
	colEntityID   = "entity_id"
	colAction     = "action"
	colPayload    = "payload"
	colOccurredAt = "occurred_at"

	dialectPostgres = "postgres"

	// SQLSTATE codes the engine inspects: the first three are transient
	// concurrency conflicts, a unique violation is a lost insert race.
	pgCodeLockNotAvailable    = "55P03"
	pgCodeSerializationFailed = "40001"
	pgCodeDeadlockDetected    = "40P01"
	pgCodeUniqueViolation     = "23505"
)

// Engine is a PostgreSQL-backed lending.Storage. It leverages a database
// adapter (pgx pool, sql.DB, or sqlx.DB) and runs every borrow/return unit
// of work as a single transaction with row-level locks and a bounded
// lock_timeout, so no operation can block indefinitely.
type Engine struct {
	db               adapters.DBAdapter
	tables           TableNames
	lockTimeout      time.Duration
	logger           lending.Logger
	contextualLogger lending.ContextualLogger
	metricsCollector lending.MetricsCollector
	tracingCollector lending.TracingCollector
}

// compile-time contract check
var _ lending.Storage = Engine{}

// NewEngineFromPGXPool creates a new Engine using a pgx pool with optional configuration.
func NewEngineFromPGXPool(db *pgxpool.Pool, options ...Option) (Engine, error) {
	if db == nil {
		return Engine{}, lending.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapter(db), options...)
}

// NewEngineFromSQLDB creates a new Engine using a sql.DB with optional configuration.
func NewEngineFromSQLDB(db *sql.DB, options ...Option) (Engine, error) {
	if db == nil {
		return Engine{}, lending.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLAdapter(db), options...)
}

// NewEngineFromSQLX creates a new Engine using a sqlx.DB with optional configuration.
func NewEngineFromSQLX(db *sqlx.DB, options ...Option) (Engine, error) {
	if db == nil {
		return Engine{}, lending.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLXAdapter(db), options...)
}

func newEngine(db adapters.DBAdapter, options ...Option) (Engine, error) {
	e := Engine{
		db:          db,
		tables:      DefaultTableNames(),
		lockTimeout: defaultLockTimeout,
	}

	for _, option := range options {
		if err := option(&e); err != nil {
			return Engine{}, err
		}
	}

	return e, nil
}

// WithinTx runs fn as one atomic unit of work. The transaction gets a local
// lock_timeout so row-lock waits are bounded; lock timeouts, serialization
// failures, and deadlocks surface as lending.ErrConcurrencyConflict. Any
// error from fn rolls back every prior effect of this call.
func (e Engine) WithinTx(ctx context.Context, fn func(ctx context.Context, tx lending.TxAccess) error) error {
	start := time.Now()

	ctx, finishSpan := e.startSpan(ctx, spanNameUnitOfWork)

	dbTx, beginErr := e.db.BeginTx(ctx)
	if beginErr != nil {
		e.logError(ctx, logMsgBeginTxFailed, logAttrError, beginErr.Error())
		mappedErr := e.mapDriverError(ctx, beginErr)
		finishSpan(mappedErr)
		return mappedErr
	}

	if err := e.applyLockTimeout(ctx, dbTx); err != nil {
		e.rollback(ctx, dbTx)
		mappedErr := e.mapDriverError(ctx, err)
		finishSpan(mappedErr)
		return mappedErr
	}

	access := &txAccess{engine: e, tx: dbTx}

	if err := fn(ctx, access); err != nil {
		e.rollback(ctx, dbTx)
		finishSpan(err)
		return err
	}

	if commitErr := dbTx.Commit(ctx); commitErr != nil {
		e.logError(ctx, logMsgCommitFailed, logAttrError, commitErr.Error())
		mappedErr := e.mapDriverError(ctx, commitErr)
		finishSpan(mappedErr)
		return mappedErr
	}

	finishSpan(nil)

	e.logDebug(ctx, logMsgTxCompleted, logAttrDurationMS, durationToMilliseconds(time.Since(start)))
	e.recordTxMetrics(ctx, time.Since(start))

	return nil
}

func (e Engine) applyLockTimeout(ctx context.Context, tx adapters.DBTx) error {
	stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", e.lockTimeout.Milliseconds())

	if _, err := tx.Exec(ctx, stmt); err != nil {
		return err
	}

	return nil
}

func (e Engine) rollback(ctx context.Context, tx adapters.DBTx) {
	if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
		e.logWarn(ctx, logMsgRollbackFailed, logAttrError, rollbackErr.Error())
	}
}

// mapDriverError translates driver-level failures into the engine's error
// taxonomy. Lock waits that exceed lock_timeout, serialization failures, and
// deadlocks become ErrConcurrencyConflict so callers know the whole
// operation is safe to retry.
func (e Engine) mapDriverError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) && isConflictCode(pgxErr.Code) {
		return e.conflictError(ctx, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && isConflictCode(string(pqErr.Code)) {
		return e.conflictError(ctx, err)
	}

	return err
}

func (e Engine) conflictError(ctx context.Context, err error) error {
	e.logInfo(ctx, logMsgConflictDetected, logAttrError, err.Error())

	if e.metricsCollector != nil {
		e.metricsCollector.IncrementCounter(metricConflictTotal, nil)
	}

	return errors.Join(lending.ErrConcurrencyConflict, err)
}

func isConflictCode(code string) bool {
	return code == pgCodeLockNotAvailable ||
		code == pgCodeSerializationFailed ||
		code == pgCodeDeadlockDetected
}

// isUniqueViolation reports whether err carries SQLSTATE 23505, for insert
// paths where a duplicate key is a business outcome rather than a defect.
func isUniqueViolation(err error) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == pgCodeUniqueViolation
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgCodeUniqueViolation
	}

	return false
}

/*** unit-of-work access ***/

// txAccess implements lending.TxAccess on an open transaction.
type txAccess struct {
	engine Engine
	tx     adapters.DBTx
}

func (a *txAccess) ItemForUpdate(ctx context.Context, itemID lending.ItemIDString) (lending.Item, error) {
	stmt := builder().
		From(a.engine.tables.Items).
		Select(colID, colTitle, colTotal, colAvailable).
		Where(goqu.Ex{colID: itemID}).
		ForUpdate(exp.Wait)

	sqlQuery, toSQLErr := toSQL(stmt)
	if toSQLErr != nil {
		return lending.Item{}, a.engine.buildError(ctx, toSQLErr)
	}

	rows, err := a.query(ctx, sqlQuery)
	if err != nil {
		return lending.Item{}, err
	}
	defer a.engine.closeRows(ctx, rows)

	if !rows.Next() {
		return lending.Item{}, lending.ErrItemNotFound
	}

	return a.engine.scanItem(ctx, rows)
}

func (a *txAccess) MemberForUpdate(ctx context.Context, memberID lending.MemberIDString) (lending.Member, error) {
	stmt := builder().
		From(a.engine.tables.Members).
		Select(colID, colName, colMembership).
		Where(goqu.Ex{colID: memberID}).
		ForUpdate(exp.Wait)

	sqlQuery, toSQLErr := toSQL(stmt)
	if toSQLErr != nil {
		return lending.Member{}, a.engine.buildError(ctx, toSQLErr)
	}

	rows, err := a.query(ctx, sqlQuery)
	if err != nil {
		return lending.Member{}, err
	}
	defer a.engine.closeRows(ctx, rows)

	if !rows.Next() {
		return lending.Member{}, lending.ErrMemberNotFound
	}

	var member lending.Member
	var status string

	if scanErr := rows.Scan(&member.ID, &member.Name, &status); scanErr != nil {
		return lending.Member{}, a.engine.scanError(ctx, scanErr)
	}

	member.Status = lending.MembershipStatus(status)

	return member, nil
}

func (a *txAccess) LoanForUpdate(ctx context.Context, loanID lending.LoanID) (lending.Loan, error) {
	stmt := builder().
		From(a.engine.tables.Loans).
		Select(loanColumns()...).
		Where(goqu.Ex{colID: loanID.String()}).
		ForUpdate(exp.Wait)

	sqlQuery, toSQLErr := toSQL(stmt)
	if toSQLErr != nil {
		return lending.Loan{}, a.engine.buildError(ctx, toSQLErr)
	}

	rows, err := a.query(ctx, sqlQuery)
	if err != nil {
		return lending.Loan{}, err
	}
	defer a.engine.closeRows(ctx, rows)

	if !rows.Next() {
		return lending.Loan{}, lending.ErrLoanNotFound
	}

	return a.engine.scanLoan(ctx, rows)
}

func (a *txAccess) UnresolvedLoansForMember(ctx context.Context, memberID lending.MemberIDString) ([]lending.Loan, error) {
	stmt := builder().
		From(a.engine.tables.Loans).
		Select(loanColumns()...).
		Where(goqu.Ex{colMemberID: memberID, colReturnDate: nil}).
		Order(goqu.I(colLoanDate).Asc())

	sqlQuery, toSQLErr := toSQL(stmt)
	if toSQLErr != nil {
		return nil, a.engine.buildError(ctx, toSQLErr)
	}

	rows, err := a.query(ctx, sqlQuery)
	if err != nil {
		return nil, err
	}
	defer a.engine.closeRows(ctx, rows)

	return a.engine.scanLoans(ctx, rows)
}

func (a *txAccess) UnresolvedLoanCountForItem(ctx context.Context, itemID lending.ItemIDString) (int, error) {
	stmt := builder().
		From(a.engine.tables.Loans).
		Select(goqu.COUNT(colID)).
		Where(goqu.Ex{colItemID: itemID, colReturnDate: nil})

	sqlQuery, toSQLErr := toSQL(stmt)
	if toSQLErr != nil {
		return 0, a.engine.buildError(ctx, toSQLErr)
	}

	rows, err := a.query(ctx, sqlQuery)
	if err != nil {
		return 0, err
	}
	defer a.engine.closeRows(ctx, rows)

	count := 0
	if rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			return 0, a.engine.scanError(ctx, scanErr)
		}
	}

	return count, nil
}

func (a *txAccess) InsertItem(ctx context.Context, item lending.Item) error {
	stmt := builder().
		Insert(a.engine.tables.Items).
		Rows(goqu.Record{
			colID:        item.ID,
			colTitle:     item.Title,
			colTotal:     item.TotalCopies,
			colAvailable: item.AvailableCopies,
		})

	err := a.execExpectingRows(ctx, stmt, nil)
	if err != nil && isUniqueViolation(err) {
		// A concurrent insert with the same ID won the race.
		return errors.Join(lending.ErrItemAlreadyExists, err)
	}

	return err
}

func (a *txAccess) InsertLoan(ctx context.Context, loan lending.Loan) error {
	stmt := builder().
		Insert(a.engine.tables.Loans).
		Rows(goqu.Record{
			colID:         loan.ID.String(),
			colItemID:     loan.ItemID,
			colMemberID:   loan.MemberID,
			colLoanDate:   loan.LoanDate,
			colDueDate:    loan.DueDate,
			colReturnDate: nullableTime(loan.ReturnDate),
			colStatus:     string(loan.Status),
		})

	return a.execExpectingRows(ctx, stmt, nil)
}

func (a *txAccess) UpdateLoan(ctx context.Context, loan lending.Loan) error {
	stmt := builder().
		Update(a.engine.tables.Loans).
		Set(goqu.Record{
			colReturnDate: nullableTime(loan.ReturnDate),
			colStatus:     string(loan.Status),
		}).
		Where(goqu.Ex{colID: loan.ID.String()})

	return a.execExpectingRows(ctx, stmt, lending.ErrLoanNotFound)
}

func (a *txAccess) InsertFine(ctx context.Context, fine lending.Fine) error {
	stmt := builder().
		Insert(a.engine.tables.Fines).
		Rows(goqu.Record{
			colID:        fine.ID.String(),
			colLoanID:    fine.LoanID.String(),
			colAmount:    int64(fine.Amount),
			colIssueDate: fine.IssueDate,
			colPayDate:   nullableTime(fine.PaymentDate),
			colStatus:    string(fine.Status),
		})

	return a.execExpectingRows(ctx, stmt, nil)
}

// ReserveCopy is the ledger decrement: one copy out, guarded against going
// below zero. The guard lives in the statement itself so it holds even if a
// caller skips the availability pre-check.
func (a *txAccess) ReserveCopy(ctx context.Context, itemID lending.ItemIDString) error {
	stmt := builder().
		Update(a.engine.tables.Items).
		Set(goqu.Record{colAvailable: goqu.L(colAvailable + " - 1")}).
		Where(goqu.Ex{colID: itemID}, goqu.C(colAvailable).Gt(0))

	return a.execExpectingRows(ctx, stmt, lending.ErrOutOfStock)
}

// ReleaseCopy is the ledger increment: one copy back, guarded against
// exceeding the total. A failed guard is a bookkeeping defect, logged at
// error level and surfaced as ErrOverRelease - never clamped.
func (a *txAccess) ReleaseCopy(ctx context.Context, itemID lending.ItemIDString) error {
	stmt := builder().
		Update(a.engine.tables.Items).
		Set(goqu.Record{colAvailable: goqu.L(colAvailable + " + 1")}).
		Where(goqu.Ex{colID: itemID}, goqu.C(colAvailable).Lt(goqu.C(colTotal)))

	err := a.execExpectingRows(ctx, stmt, lending.ErrOverRelease)
	if errors.Is(err, lending.ErrOverRelease) {
		a.engine.logError(ctx, logMsgInvariantViolated, logAttrItemID, itemID, logAttrError, err.Error())
	}

	return err
}

// RemoveCopy shrinks the total without touching availability - the
// disposition for a lost copy. Requires an outstanding copy to exist.
func (a *txAccess) RemoveCopy(ctx context.Context, itemID lending.ItemIDString) error {
	stmt := builder().
		Update(a.engine.tables.Items).
		Set(goqu.Record{colTotal: goqu.L(colTotal + " - 1")}).
		Where(
			goqu.Ex{colID: itemID},
			goqu.C(colTotal).Gt(0),
			goqu.C(colAvailable).Lt(goqu.C(colTotal)),
		)

	err := a.execExpectingRows(ctx, stmt, lending.ErrCopyNotRemovable)
	if errors.Is(err, lending.ErrCopyNotRemovable) {
		a.engine.logError(ctx, logMsgInvariantViolated, logAttrItemID, itemID, logAttrError, err.Error())
	}

	return err
}

func (a *txAccess) DeleteItem(ctx context.Context, itemID lending.ItemIDString) error {
	stmt := builder().
		Delete(a.engine.tables.Items).
		Where(goqu.Ex{colID: itemID})

	return a.execExpectingRows(ctx, stmt, lending.ErrItemNotFound)
}

func (a *txAccess) AppendAudit(ctx context.Context, entry lending.AuditEntry) error {
	stmt := builder().
		Insert(a.engine.tables.Audit).
		Rows(goqu.Record{
			colID:         entry.ID.String(),
			colEntityType: entry.EntityType,
			colEntityID:   entry.EntityID,
			colAction:     entry.Action,
			colPayload:    string(entry.PayloadJSON),
			colOccurredAt: entry.OccurredAt,
		})

	return a.execExpectingRows(ctx, stmt, nil)
}

func (a *txAccess) query(ctx context.Context, sqlQuery string) (adapters.DBRows, error) {
	start := time.Now()
	rows, queryErr := a.tx.Query(ctx, sqlQuery)
	a.engine.logSQLWithDuration(ctx, sqlQuery, time.Since(start))

	if queryErr != nil {
		a.engine.logError(ctx, logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		return nil, a.engine.mapDriverError(ctx, queryErr)
	}

	return rows, nil
}

// sqlStatement is the slice of the goqu dataset API the engine needs to
// render a mutation.
type sqlStatement interface {
	ToSQL() (string, []any, error)
}

// execExpectingRows executes a mutation and translates "zero rows affected"
// into guardFailure. A nil guardFailure means zero rows is impossible for
// the statement (plain inserts) and is not checked.
func (a *txAccess) execExpectingRows(ctx context.Context, stmt sqlStatement, guardFailure error) error {
	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		return a.engine.buildError(ctx, toSQLErr)
	}

	start := time.Now()
	result, execErr := a.tx.Exec(ctx, sqlQuery)
	a.engine.logSQLWithDuration(ctx, sqlQuery, time.Since(start))

	if execErr != nil {
		a.engine.logError(ctx, logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		return a.engine.mapDriverError(ctx, execErr)
	}

	if guardFailure == nil {
		return nil
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		a.engine.logError(ctx, logMsgRowsAffectedFailed, logAttrError, rowsAffectedErr.Error())
		return rowsAffectedErr
	}

	if rowsAffected == 0 {
		return guardFailure
	}

	return nil
}

/*** shared helpers ***/

func builder() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

func toSQL(stmt *goqu.SelectDataset) (string, error) {
	sqlQuery, _, err := stmt.ToSQL()
	return sqlQuery, err
}

func loanColumns() []any {
	return []any{colID, colItemID, colMemberID, colLoanDate, colDueDate, colReturnDate, colStatus}
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}

	return *t
}

func (e Engine) scanItem(ctx context.Context, rows adapters.DBRows) (lending.Item, error) {
	var item lending.Item

	if err := rows.Scan(&item.ID, &item.Title, &item.TotalCopies, &item.AvailableCopies); err != nil {
		return lending.Item{}, e.scanError(ctx, err)
	}

	return item, nil
}

func (e Engine) scanLoan(ctx context.Context, rows adapters.DBRows) (lending.Loan, error) {
	var loan lending.Loan
	var id string
	var status string
	var returnDate sql.NullTime

	err := rows.Scan(&id, &loan.ItemID, &loan.MemberID, &loan.LoanDate, &loan.DueDate, &returnDate, &status)
	if err != nil {
		return lending.Loan{}, e.scanError(ctx, err)
	}

	loanID, parseErr := uuid.Parse(id)
	if parseErr != nil {
		return lending.Loan{}, e.scanError(ctx, parseErr)
	}

	loan.ID = loanID
	loan.Status = lending.LoanStatus(status)

	if returnDate.Valid {
		t := returnDate.Time
		loan.ReturnDate = &t
	}

	return loan, nil
}

func (e Engine) scanLoans(ctx context.Context, rows adapters.DBRows) ([]lending.Loan, error) {
	loans := make([]lending.Loan, 0)

	for rows.Next() {
		loan, err := e.scanLoan(ctx, rows)
		if err != nil {
			return nil, err
		}

		loans = append(loans, loan)
	}

	return loans, nil
}

func (e Engine) buildError(ctx context.Context, err error) error {
	e.logError(ctx, logMsgBuildQueryFailed, logAttrError, err.Error())
	return err
}

func (e Engine) scanError(ctx context.Context, err error) error {
	e.logError(ctx, logMsgScanRowFailed, logAttrError, err.Error())
	return err
}

func (e Engine) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		e.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}
