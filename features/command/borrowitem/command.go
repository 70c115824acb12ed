package borrowitem

import (
	"time"

	"github.com/openshelf/lending-engine-go/lending"
)

const (
	commandType = "BorrowItem"
)

// Command represents the intent of a member to borrow one copy of an item.
// It encapsulates all the information required to execute the borrow use case.
type Command struct {
	ItemID     lending.ItemIDString
	MemberID   lending.MemberIDString
	OccurredAt time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(itemID lending.ItemIDString, memberID lending.MemberIDString, occurredAt time.Time) Command {
	return Command{
		ItemID:     itemID,
		MemberID:   memberID,
		OccurredAt: lending.ToOccurredAt(occurredAt),
	}
}
