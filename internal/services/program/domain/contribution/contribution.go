// Package contribution models one contributor's stake in a campaign.
package contribution

import (
	"github.com/gagliardetto/solana-go"

	apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/checked"
)

var (
	// ErrAlreadyRefunded indicates a second refund of the same stake.
	ErrAlreadyRefunded = apperrors.New(apperrors.CodeAlreadyRefunded, "contribution already refunded")
	// ErrSettled indicates a deposit into a refunded or claimed record.
	ErrSettled = apperrors.New(apperrors.CodeCampaignClosed, "contribution is already settled")
	// ErrNotSettled indicates closing a record that still carries a live stake.
	ErrNotSettled = apperrors.New(apperrors.CodeInvalidAccount, "contribution is not settled")
	// ErrInvalidRecord indicates bytes that do not decode as a contribution.
	ErrInvalidRecord = apperrors.New(apperrors.CodeInvalidAccount, "invalid contribution record")
)

// State is one decoded Contribution record.
type State struct {
	Campaign    solana.PublicKey
	Contributor solana.PublicKey
	Amount      uint64
	Refunded    bool
	Claimed     bool
	// CampaignSlot is the CreatedSlot of the campaign generation this stake
	// belongs to.
	CampaignSlot uint64
	Bump         uint8
}

// New returns an empty record for the first deposit.
func New(campaign, contributor solana.PublicKey, campaignSlot uint64, bump uint8) State {
	return State{
		Campaign:     campaign,
		Contributor:  contributor,
		CampaignSlot: campaignSlot,
		Bump:         bump,
	}
}

// Settled reports whether the stake reached its terminal transition.
func (s State) Settled() bool {
	return s.Refunded || s.Claimed
}

// BelongsTo reports whether the record was written for the campaign
// generation created at slot.
func (s State) BelongsTo(campaignSlot uint64) bool {
	return s.CampaignSlot == campaignSlot
}

// Deposit returns s with amount added.
func (s State) Deposit(amount uint64) (State, error) {
	if s.Settled() {
		return State{}, ErrSettled
	}
	total, err := checked.Add(s.Amount, amount)
	if err != nil {
		return State{}, err
	}
	s.Amount = total
	return s, nil
}

// Refund returns s marked refunded.
func (s State) Refund() (State, error) {
	if s.Refunded {
		return State{}, ErrAlreadyRefunded
	}
	if s.Claimed {
		return State{}, ErrSettled
	}
	s.Refunded = true
	return s, nil
}

// Claim returns s marked claimed by a successful campaign.
func (s State) Claim() (State, error) {
	if s.Refunded {
		return State{}, ErrAlreadyRefunded
	}
	s.Claimed = true
	return s, nil
}
