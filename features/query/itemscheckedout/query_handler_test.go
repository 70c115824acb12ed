package itemscheckedout_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/lending-engine-go/features/command/borrowitem"
	"github.com/openshelf/lending-engine-go/features/command/returnitem"
	"github.com/openshelf/lending-engine-go/features/query/itemscheckedout"
	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/lending/memoryengine"
)

func Test_QueryHandler_Returns_Only_Unresolved_Loans_In_Loan_Date_Order(t *testing.T) {
	// arrange - two open loans and one returned loan
	engine, err := memoryengine.NewEngine()
	require.NoError(t, err)

	engine.PutItem(lending.BuildItem("item-1", "First", 1))
	engine.PutItem(lending.BuildItem("item-2", "Second", 1))
	engine.PutItem(lending.BuildItem("item-3", "Third", 1))
	engine.PutMember(lending.Member{ID: "member-1", Name: "Sam Carter", Status: lending.MembershipActive})

	policy := lending.DefaultPolicy()
	borrowHandler := borrowitem.NewCommandHandler(engine, policy)
	day := time.Date(2025, time.May, 1, 10, 0, 0, 0, time.UTC)

	first, err := borrowHandler.Handle(context.Background(), borrowitem.BuildCommand("item-1", "member-1", day))
	require.NoError(t, err)

	second, err := borrowHandler.Handle(context.Background(), borrowitem.BuildCommand("item-2", "member-1", day.AddDate(0, 0, 1)))
	require.NoError(t, err)

	returned, err := borrowHandler.Handle(context.Background(), borrowitem.BuildCommand("item-3", "member-1", day.AddDate(0, 0, 2)))
	require.NoError(t, err)

	returnHandler := returnitem.NewCommandHandler(engine, policy)
	_, err = returnHandler.Handle(context.Background(), returnitem.BuildCommand(returned.LoanID, day.AddDate(0, 0, 3)))
	require.NoError(t, err)

	handler := itemscheckedout.NewQueryHandler(engine)

	// act
	result, err := handler.Handle(context.Background(), itemscheckedout.BuildQuery())

	// assert
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, first.LoanID, result.Items[0].LoanID)
	assert.Equal(t, second.LoanID, result.Items[1].LoanID)
	assert.Equal(t, "item-1", result.Items[0].ItemID)
	assert.Equal(t, "member-1", result.Items[0].MemberID)
}
