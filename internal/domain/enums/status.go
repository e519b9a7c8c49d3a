package enums

// Status is shared by submissions and suggestions. Only pending records
// may change, and only once.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

type SuspensionKind string

const SuspensionKindRejectionBan SuspensionKind = "rejection_ban"
