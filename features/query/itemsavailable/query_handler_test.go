package itemsavailable_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/lending-engine-go/features/query/itemsavailable"
	"github.com/openshelf/lending-engine-go/lending"
	"github.com/openshelf/lending-engine-go/lending/memoryengine"
)

func Test_QueryHandler_Reports_Only_Items_With_Available_Copies_Ordered_By_Title(t *testing.T) {
	// arrange
	engine, err := memoryengine.NewEngine()
	require.NoError(t, err)

	engine.PutItem(lending.BuildItem("item-1", "Zebra Stripes", 2))
	engine.PutItem(lending.BuildItem("item-2", "Aardvark Tales", 1))
	engine.PutItem(lending.Item{ID: "item-3", Title: "All Out", TotalCopies: 1, AvailableCopies: 0})

	handler := itemsavailable.NewQueryHandler(engine)

	// act
	result, err := handler.Handle(context.Background(), itemsavailable.BuildQuery())

	// assert
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Aardvark Tales", result.Items[0].Title)
	assert.Equal(t, "Zebra Stripes", result.Items[1].Title)
	assert.Equal(t, 2, result.Items[1].AvailableCopies)
}
