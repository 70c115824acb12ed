package declareitemlost

import (
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/lending-engine-go/lending"
)

const (
	commandType = "DeclareItemLost"
)

// Command represents the out-of-band declaration that a borrowed copy is lost.
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
