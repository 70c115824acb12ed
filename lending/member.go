package lending

// MembershipStatus is the status of a member record as maintained by the
// external member-management collaborator.
type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "active"
	MembershipExpired   MembershipStatus = "expired"
	MembershipSuspended MembershipStatus = "suspended"
)

// Member is a read-only view of a member record. The engine never writes
// member rows; it only reads them to evaluate eligibility.
type Member struct {
	ID     MemberIDString
	Name   string
	Status MembershipStatus
}

// IsActive reports whether the member may currently borrow at all.
func (m Member) IsActive() bool {
	return m.Status == MembershipActive
}
