package constants

// Status is the canonical work-order status.
type Status string

// Stable values (store these exact strings in DB).
const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
	StatusOnHold     Status = "OnHold"
)

var allStatuses = []Status{
	StatusPending,
	StatusInProgress,
	StatusCompleted,
	StatusOnHold,
}

// IsStatus reports whether s is one of the canonical status values.
func IsStatus(s string) bool {
	for _, st := range allStatuses {
		if string(st) == s {
			return true
		}
	}
	return false
}

// BoardLabel maps a canonical status to the label the board's status
// column understands. Unknown or empty statuses map to the board default.
func BoardLabel(s Status) string {
	switch s {
	case StatusCompleted:
		return "Done"
	case StatusOnHold:
		return "Stuck"
	default:
		return "Working on it"
	}
}
