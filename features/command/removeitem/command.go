package removeitem

import (
	"time"

	"github.com/openshelf/lending-engine-go/lending"
)

const (
	commandType = "RemoveItem"
)

// Command represents the intent to delete an item from the collection.
type Command struct {
	ItemID     lending.ItemIDString
	OccurredAt time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(itemID lending.ItemIDString, occurredAt time.Time) Command {
	return Command{
		ItemID:     itemID,
		OccurredAt: lending.ToOccurredAt(occurredAt),
	}
}
