package campaign

import (
	"github.com/gagliardetto/solana-go"
)

const (
	// MaxNameLen bounds the campaign name in bytes.
	MaxNameLen = 100
	// MaxDescriptionLen bounds the campaign description in bytes.
	MaxDescriptionLen = 500
)

// State is one decoded Campaign record.
type State struct {
	Owner            solana.PublicKey
	Nonce            uint64
	GoalAmount       uint64
	Deadline         int64
	TotalRaised      uint64
	TotalRefunded    uint64
	ContributorCount uint32
	Status           Status
	Bump             uint8
	EscrowBump       uint8
	// CreatedSlot marks the generation of the campaign address. Contributions
	// copy it so a record left over from an earlier campaign at the same
	// address is never mistaken for a live one.
	CreatedSlot uint64
	Name        string
	Description string
}

// Outstanding returns the raised amount not yet refunded.
func (s State) Outstanding() uint64 {
	if s.TotalRefunded >= s.TotalRaised {
		return 0
	}
	return s.TotalRaised - s.TotalRefunded
}
