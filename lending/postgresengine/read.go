package postgresengine

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/lending/postgresengine/internal/adapters"
)

// Reporting views. These run outside any unit of work and see committed
// state only; availability counts are never cached across requests.

// CheckedOutLoans returns every unresolved loan ordered by loan date.
func (e Engine) CheckedOutLoans(ctx context.Context) ([]lending.Loan, error) {
	stmt := builder().
		From(e.tables.Loans).
		Select(loanColumns()...).
		Where(goqu.Ex{colReturnDate: nil}).
		Order(goqu.I(colLoanDate).Asc(), goqu.I(colID).Asc())

	return e.queryLoans(ctx, stmt)
}

// OverdueLoans returns unresolved loans whose due date lies before asOf,
// ordered by due date so the longest-overdue loans come first. Past due is a
// whole-UTC-date comparison, same as Loan.IsPastDue: a loan due earlier today
// is not overdue yet.
func (e Engine) OverdueLoans(ctx context.Context, asOf time.Time) ([]lending.Loan, error) {
	stmt := builder().
		From(e.tables.Loans).
		Select(loanColumns()...).
		Where(goqu.Ex{colReturnDate: nil}, goqu.C(colDueDate).Lt(lending.ToUTCDate(asOf))).
		Order(goqu.I(colDueDate).Asc(), goqu.I(colID).Asc())

	return e.queryLoans(ctx, stmt)
}

// AvailableItems returns items with at least one available copy, ordered by
// title for stable output.
func (e Engine) AvailableItems(ctx context.Context) ([]lending.Item, error) {
	stmt := builder().
		From(e.tables.Items).
		Select(colID, colTitle, colTotal, colAvailable).
		Where(goqu.C(colAvailable).Gt(0)).
		Order(goqu.I(colTitle).Asc(), goqu.I(colID).Asc())

	rows, err := e.queryRead(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer e.closeRows(ctx, rows)

	items := make([]lending.Item, 0)

	for rows.Next() {
		item, scanErr := e.scanItem(ctx, rows)
		if scanErr != nil {
			return nil, scanErr
		}

		items = append(items, item)
	}

	return items, nil
}

// FinesWithStatus returns fines in the given status ordered by issue date.
func (e Engine) FinesWithStatus(ctx context.Context, status lending.FineStatus) ([]lending.Fine, error) {
	stmt := builder().
		From(e.tables.Fines).
		Select(colID, colLoanID, colAmount, colIssueDate, colPayDate, colStatus).
		Where(goqu.Ex{colStatus: string(status)}).
		Order(goqu.I(colIssueDate).Asc(), goqu.I(colID).Asc())

	rows, err := e.queryRead(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer e.closeRows(ctx, rows)

	fines := make([]lending.Fine, 0)

	for rows.Next() {
		fine, scanErr := e.scanFine(ctx, rows)
		if scanErr != nil {
			return nil, scanErr
		}

		fines = append(fines, fine)
	}

	return fines, nil
}

// LoansForMember returns the member's full loan history, newest first.
func (e Engine) LoansForMember(ctx context.Context, memberID lending.MemberIDString) ([]lending.Loan, error) {
	stmt := builder().
		From(e.tables.Loans).
		Select(loanColumns()...).
		Where(goqu.Ex{colMemberID: memberID}).
		Order(goqu.I(colLoanDate).Desc(), goqu.I(colID).Asc())

	return e.queryLoans(ctx, stmt)
}

// LoansForItem returns the item's full loan history, newest first.
func (e Engine) LoansForItem(ctx context.Context, itemID lending.ItemIDString) ([]lending.Loan, error) {
	stmt := builder().
		From(e.tables.Loans).
		Select(loanColumns()...).
		Where(goqu.Ex{colItemID: itemID}).
		Order(goqu.I(colLoanDate).Desc(), goqu.I(colID).Asc())

	return e.queryLoans(ctx, stmt)
}

func (e Engine) queryLoans(ctx context.Context, stmt *goqu.SelectDataset) ([]lending.Loan, error) {
	rows, err := e.queryRead(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer e.closeRows(ctx, rows)

	return e.scanLoans(ctx, rows)
}

func (e Engine) queryRead(ctx context.Context, stmt *goqu.SelectDataset) (adapters.DBRows, error) {
	sqlQuery, toSQLErr := toSQL(stmt)
	if toSQLErr != nil {
		return nil, e.buildError(ctx, toSQLErr)
	}

	start := time.Now()
	rows, queryErr := e.db.Query(ctx, sqlQuery)
	e.logSQLWithDuration(ctx, sqlQuery, time.Since(start))

	if queryErr != nil {
		e.logError(ctx, logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		return nil, e.mapDriverError(ctx, queryErr)
	}

	return rows, nil
}

func (e Engine) scanFine(ctx context.Context, rows adapters.DBRows) (lending.Fine, error) {
	var fine lending.Fine
	var id, loanID, status string
	var amount int64
	var paymentDate sql.NullTime

	err := rows.Scan(&id, &loanID, &amount, &fine.IssueDate, &paymentDate, &status)
	if err != nil {
		return lending.Fine{}, e.scanError(ctx, err)
	}

	fineID, parseErr := uuid.Parse(id)
	if parseErr != nil {
		return lending.Fine{}, e.scanError(ctx, parseErr)
	}

	fineLoanID, parseErr := uuid.Parse(loanID)
	if parseErr != nil {
		return lending.Fine{}, e.scanError(ctx, parseErr)
	}

	fine.ID = fineID
	fine.LoanID = fineLoanID
	fine.Amount = lending.Cents(amount)
	fine.Status = lending.FineStatus(status)

	if paymentDate.Valid {
		t := paymentDate.Time
		fine.PaymentDate = &t
	}

	return fine, nil
}
