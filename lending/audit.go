package lending

import (
	"errors"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// Audit actions recorded by the orchestrators. ReservationPromoted exists as
// a stub for the out-of-scope reservation workflow: promoting a reservation
// is reported to the engine as a plain borrow plus this marker entry.
const (
	AuditLoanOpened          = "LoanOpened"
	AuditLoanReturned        = "LoanReturned"
	AuditLoanDeclaredLost    = "LoanDeclaredLost"
	AuditFineIssued          = "FineIssued"
	AuditItemAdded           = "ItemAdded"
	AuditItemDeleted         = "ItemDeleted"
	AuditCopyRemoved         = "CopyRemoved"
	AuditReservationPromoted = "ReservationPromoted"
)

// Audited entity kinds.
const (
	AuditEntityLoan = "loan"
	AuditEntityFine = "fine"
	AuditEntityItem = "item"
)

// ErrInvalidAuditPayload is returned when an audit payload does not
// serialize to valid JSON.
var ErrInvalidAuditPayload = errors.New("audit payload is not valid json")

// AuditEntry is an append-only record of a state transition. Terminal loans
// and fines stay immutable; the audit trail is the only thing that keeps
// growing for them.
type AuditEntry struct {
	ID          uuid.UUID
	EntityType  string
	EntityID    string
	Action      string
	PayloadJSON []byte
	OccurredAt  time.Time
}

// BuildAuditEntry marshals the payload and validates the result.
func BuildAuditEntry(entityType string, entityID string, action string, payload any, occurredAt time.Time) (AuditEntry, error) {
	payloadJSON, marshalErr := jsoniter.ConfigFastest.Marshal(payload)
	if marshalErr != nil {
		return AuditEntry{}, errors.Join(ErrInvalidAuditPayload, marshalErr)
	}

	if !jsoniter.ConfigFastest.Valid(payloadJSON) {
		return AuditEntry{}, ErrInvalidAuditPayload
	}

	return AuditEntry{
		ID:          uuid.New(),
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		PayloadJSON: payloadJSON,
		OccurredAt:  ToOccurredAt(occurredAt),
	}, nil
}
