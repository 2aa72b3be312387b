package campaign

import (
	"strings"
	"unicode/utf8"

	"github.com/gagliardetto/solana-go"

	"github.com/louisbranch/crowdfund/internal/services/program/domain/checked"
)

// CreateParams are the caller-supplied creation arguments.
type CreateParams struct {
	Nonce       uint64
	GoalAmount  uint64
	Deadline    int64
	Name        string
	Description string
}

// Resolve returns the effective status of s at clock.
//
// Persisted Open campaigns past their deadline resolve to Successful when the
// goal is met (inclusive) and Failed otherwise. Every other status is final
// as stored.
func Resolve(s State, clock checked.Clock) Status {
	if s.Status != StatusOpen {
		return s.Status
	}
	if !clock.Reached(s.Deadline) {
		return StatusOpen
	}
	if s.TotalRaised >= s.GoalAmount {
		return StatusSuccessful
	}
	return StatusFailed
}

// ValidateCreate checks creation arguments against clock.
func ValidateCreate(p CreateParams, clock checked.Clock) error {
	if p.GoalAmount == 0 {
		return ErrInvalidParameters
	}
	if !clock.Before(p.Deadline) {
		return ErrInvalidParameters
	}
	if strings.TrimSpace(p.Name) == "" || len(p.Name) > MaxNameLen || !utf8.ValidString(p.Name) {
		return ErrInvalidParameters
	}
	if len(p.Description) > MaxDescriptionLen || !utf8.ValidString(p.Description) {
		return ErrInvalidParameters
	}
	return nil
}

// Create returns the initial Open state for a validated campaign.
func Create(owner solana.PublicKey, bump, escrowBump uint8, p CreateParams, clock checked.Clock) (State, error) {
	if err := ValidateCreate(p, clock); err != nil {
		return State{}, err
	}
	return State{
		Owner:       owner,
		Nonce:       p.Nonce,
		GoalAmount:  p.GoalAmount,
		Deadline:    p.Deadline,
		Status:      StatusOpen,
		Bump:        bump,
		EscrowBump:  escrowBump,
		CreatedSlot: clock.Slot,
		Name:        p.Name,
		Description: p.Description,
	}, nil
}

// Deposit returns s with amount added to the raised total. newContributor
// bumps the contributor count.
func (s State) Deposit(clock checked.Clock, amount uint64, newContributor bool) (State, error) {
	if s.Status != StatusOpen {
		return State{}, ErrCampaignClosed
	}
	if !clock.Before(s.Deadline) {
		return State{}, ErrDeadlinePassed
	}
	if amount == 0 {
		return State{}, ErrInvalidAmount
	}
	raised, err := checked.Add(s.TotalRaised, amount)
	if err != nil {
		return State{}, err
	}
	s.TotalRaised = raised
	if newContributor {
		count, err := checked.Increment(s.ContributorCount)
		if err != nil {
			return State{}, err
		}
		s.ContributorCount = count
	}
	return s, nil
}

// Withdraw returns s marked Closed after the owner drains the escrow. A
// campaign that closed by refunding everything never succeeded, so the owner
// gets CampaignNotSuccessful rather than AlreadyClosed.
func (s State) Withdraw(clock checked.Clock) (State, error) {
	switch Resolve(s, clock) {
	case StatusClosed:
		if s.closedBySuccess() {
			return State{}, ErrAlreadyClosed
		}
		return State{}, ErrCampaignNotSuccessful
	case StatusSuccessful:
		return s.transition(StatusClosed)
	default:
		return State{}, ErrCampaignNotSuccessful
	}
}

// RecordRefund returns s with amount added to the refunded total. The
// campaign closes once every raised lamport has been returned.
func (s State) RecordRefund(clock checked.Clock, amount uint64) (State, error) {
	if Resolve(s, clock) != StatusFailed {
		return State{}, ErrCampaignNotFailed
	}
	refunded, err := checked.Add(s.TotalRefunded, amount)
	if err != nil {
		return State{}, err
	}
	if refunded > s.TotalRaised {
		return State{}, checked.ErrInsufficientFunds
	}
	s.TotalRefunded = refunded
	next := StatusFailed
	if s.TotalRefunded == s.TotalRaised {
		next = StatusClosed
	}
	return s.transition(next)
}

// Settle persists the lazy resolution. A failed campaign with nothing left
// to refund closes immediately.
func (s State) Settle(clock checked.Clock) (State, error) {
	resolved := Resolve(s, clock)
	if resolved == StatusOpen {
		return State{}, ErrCampaignStillOpen
	}
	if resolved == StatusFailed && s.Outstanding() == 0 {
		resolved = StatusClosed
	}
	return s.transition(resolved)
}

func (s State) closedBySuccess() bool {
	return s.TotalRefunded == 0 && s.TotalRaised >= s.GoalAmount
}

func (s State) transition(to Status) (State, error) {
	if s.Status == StatusOpen && to == StatusClosed {
		// lazy resolution folded into the same write
		s.Status = StatusFailed
		if s.TotalRaised >= s.GoalAmount {
			s.Status = StatusSuccessful
		}
	}
	if !isTransitionAllowed(s.Status, to) {
		return State{}, ErrInvalidTransition
	}
	s.Status = to
	return s, nil
}
