package outstandingfines_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/lending-engine-go/features/command/borrowitem"
	"github.com/openshelf/lending-engine-go/features/command/returnitem"
	"github.com/openshelf/lending-engine-go/features/query/outstandingfines"
	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/lending/memoryengine"
)

func Test_QueryHandler_Reports_Outstanding_Fines_With_Total(t *testing.T) {
	// arrange - two late returns deriving fines of different sizes
	engine, err := memoryengine.NewEngine()
	require.NoError(t, err)

	engine.PutItem(lending.BuildItem("item-1", "First", 1))
	engine.PutItem(lending.BuildItem("item-2", "Second", 1))
	engine.PutMember(lending.Member{ID: "member-1", Name: "Sam Carter", Status: lending.MembershipActive})

	policy := lending.DefaultPolicy()
	borrowHandler := borrowitem.NewCommandHandler(engine, policy)
	returnHandler := returnitem.NewCommandHandler(engine, policy)
	day := time.Date(2025, time.January, 10, 10, 0, 0, 0, time.UTC)

	firstLoan, err := borrowHandler.Handle(context.Background(), borrowitem.BuildCommand("item-1", "member-1", day))
	require.NoError(t, err)

	secondLoan, err := borrowHandler.Handle(context.Background(), borrowitem.BuildCommand("item-2", "member-1", day))
	require.NoError(t, err)

	// first: 2 days late -> 1.00; second: 6 days late -> 3.00
	_, err = returnHandler.Handle(context.Background(), returnitem.BuildCommand(firstLoan.LoanID, day.AddDate(0, 0, 16)))
	require.NoError(t, err)

	_, err = returnHandler.Handle(context.Background(), returnitem.BuildCommand(secondLoan.LoanID, day.AddDate(0, 0, 20)))
	require.NoError(t, err)

	handler := outstandingfines.NewQueryHandler(engine)

	// act
	result, err := handler.Handle(context.Background(), outstandingfines.BuildQuery())

	// assert
	require.NoError(t, err)
	require.Len(t, result.Fines, 2)
	assert.Equal(t, lending.Cents(400), result.TotalAmount)
	assert.Equal(t, "4.00", result.TotalAmount.String())

	amounts := []lending.Cents{result.Fines[0].Amount, result.Fines[1].Amount}
	assert.Contains(t, amounts, lending.Cents(100))
	assert.Contains(t, amounts, lending.Cents(300))
}
