// Package address derives the program-controlled account addresses of a
// campaign and checks that callers supplied the right ones.
//
// Addresses are program-derived: sha256 over (seeds, bump, program id) pushed
// off the ed25519 curve, so no private key exists for them and only this
// program can sign for them. The bump found at creation time is stored in the
// owning record and reused on every later check.
package address

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"
)

// Role seeds bound into each derived address.
const (
	SeedCampaign     = "campaign"
	SeedEscrow       = "escrow"
	SeedContribution = "contribution"
)

// ErrAddressMismatch indicates a supplied account is not the derived one.
var ErrAddressMismatch = apperrors.New(apperrors.CodeAddressMismatch, "account address does not match derivation")

// CampaignSeeds returns the seeds of the campaign keyed by (owner, nonce).
func CampaignSeeds(owner solana.PublicKey, nonce uint64) [][]byte {
	var nonceLE [8]byte
	binary.LittleEndian.PutUint64(nonceLE[:], nonce)
	return [][]byte{[]byte(SeedCampaign), owner.Bytes(), nonceLE[:]}
}

// EscrowSeeds returns the seeds of the escrow holding a campaign's funds.
func EscrowSeeds(campaign solana.PublicKey) [][]byte {
	return [][]byte{[]byte(SeedEscrow), campaign.Bytes()}
}

// ContributionSeeds returns the seeds of one contributor's record.
func ContributionSeeds(campaign, contributor solana.PublicKey) [][]byte {
	return [][]byte{[]byte(SeedContribution), campaign.Bytes(), contributor.Bytes()}
}

// Find returns the canonical address and bump for seeds.
func Find(programID solana.PublicKey, seeds [][]byte) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(seeds, programID)
}

// FindCampaign derives the campaign address.
func FindCampaign(programID, owner solana.PublicKey, nonce uint64) (solana.PublicKey, uint8, error) {
	return Find(programID, CampaignSeeds(owner, nonce))
}

// FindEscrow derives the escrow address.
func FindEscrow(programID, campaign solana.PublicKey) (solana.PublicKey, uint8, error) {
	return Find(programID, EscrowSeeds(campaign))
}

// FindContribution derives the contribution address.
func FindContribution(programID, campaign, contributor solana.PublicKey) (solana.PublicKey, uint8, error) {
	return Find(programID, ContributionSeeds(campaign, contributor))
}

// WithBump appends the bump seed, producing a signer seed list.
func WithBump(seeds [][]byte, bump uint8) [][]byte {
	out := make([][]byte, 0, len(seeds)+1)
	out = append(out, seeds...)
	return append(out, []byte{bump})
}

// Verify checks that supplied is the address for seeds with a stored bump.
func Verify(programID solana.PublicKey, seeds [][]byte, bump uint8, supplied solana.PublicKey) error {
	expected, err := solana.CreateProgramAddress(WithBump(seeds, bump), programID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeAddressMismatch, "derive address", err)
	}
	if !expected.Equals(supplied) {
		return mismatch(expected, supplied)
	}
	return nil
}

// VerifyCanonical derives the canonical address for seeds and checks supplied
// against it, returning the bump for storage.
func VerifyCanonical(programID solana.PublicKey, seeds [][]byte, supplied solana.PublicKey) (uint8, error) {
	expected, bump, err := Find(programID, seeds)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeAddressMismatch, "derive address", err)
	}
	if !expected.Equals(supplied) {
		return 0, mismatch(expected, supplied)
	}
	return bump, nil
}

func mismatch(expected, supplied solana.PublicKey) error {
	return apperrors.WithMetadata(apperrors.CodeAddressMismatch, "account address does not match derivation", map[string]string{
		"expected": expected.String(),
		"supplied": supplied.String(),
	})
}
