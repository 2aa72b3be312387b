package campaign

// Status is the persisted lifecycle label of a campaign.
type Status uint8

const (
	StatusUnspecified Status = iota
	StatusOpen
	StatusSuccessful
	StatusFailed
	StatusClosed
)

// String returns the lowercase label of the status.
func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusSuccessful:
		return "successful"
	case StatusFailed:
		return "failed"
	case StatusClosed:
		return "closed"
	default:
		return "unspecified"
	}
}

// Valid reports whether s is a known persisted status.
func (s Status) Valid() bool {
	return s >= StatusOpen && s <= StatusClosed
}

// isTransitionAllowed enforces the monotone lifecycle.
func isTransitionAllowed(from, to Status) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusOpen:
		return to == StatusSuccessful || to == StatusFailed
	case StatusSuccessful, StatusFailed:
		return to == StatusClosed
	default:
		return false
	}
}
