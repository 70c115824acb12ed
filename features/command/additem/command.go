package additem

import (
	"time"

	"github.com/openshelf/lending-engine-go/lending"
)

const (
	commandType = "AddItem"
)

// Command represents the intent to add an item to the collection with a
// number of copies, all of them available.
type Command struct {
	ItemID      lending.ItemIDString
	Title       string
	TotalCopies int
	OccurredAt  time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(itemID lending.ItemIDString, title string, totalCopies int, occurredAt time.Time) Command {
	return Command{
		ItemID:      itemID,
		Title:       title,
		TotalCopies: totalCopies,
		OccurredAt:  lending.ToOccurredAt(occurredAt),
	}
}
