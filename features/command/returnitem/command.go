package returnitem

import (
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/lending"
)

const (
	commandType = "ReturnItem"
)

// Command represents the intent to return a borrowed copy.
type Command struct {
	LoanID     uuid.UUID
	OccurredAt time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(loanID uuid.UUID, occurredAt time.Time) Command {
	return Command{
		LoanID:     loanID,
		OccurredAt: lending.ToOccurredAt(occurredAt),
	}
}
