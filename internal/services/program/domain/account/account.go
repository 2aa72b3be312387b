// Package account models the account view a program receives for one
// instruction, plus the capability checks every handler runs before it reads
// or writes state.
package account

import (
	"bytes"

	"github.com/gagliardetto/solana-go"

	apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"
)

var (
	// ErrNotAuthorized indicates a missing signer or an identity mismatch.
	ErrNotAuthorized = apperrors.New(apperrors.CodeNotAuthorized, "signer is not authorized")
	// ErrInvalidAccount indicates an account with the wrong owner, layout, or access.
	ErrInvalidAccount = apperrors.New(apperrors.CodeInvalidAccount, "invalid account")
	// ErrNotEnoughAccounts indicates an instruction listed fewer accounts than required.
	ErrNotEnoughAccounts = apperrors.New(apperrors.CodeInvalidInstruction, "not enough account keys")
)

// Info is the mutable view of one account during an instruction.
//
// The host hands the program clones; whatever the program leaves in Lamports,
// Data, and Owner is committed only if the whole transaction succeeds.
type Info struct {
	Key        solana.PublicKey
	Owner      solana.PublicKey
	Lamports   uint64
	Data       []byte
	IsSigner   bool
	IsWritable bool
	Executable bool
}

// IsUninitialized reports whether the account has never been allocated: no
// lamports, no data, and owned by the system program.
func (a *Info) IsUninitialized() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && a.Owner.Equals(solana.SystemProgramID)
}

// IsUnallocated reports whether the account holds no data and belongs to the
// system program. It may still hold lamports someone sent to its address.
func (a *Info) IsUnallocated() bool {
	return len(a.Data) == 0 && a.Owner.Equals(solana.SystemProgramID)
}

// Clear zeroes the account so the host releases it on commit. The caller is
// responsible for moving the lamports out first.
func (a *Info) Clear() {
	a.Data = nil
	a.Owner = solana.SystemProgramID
}

// RequireSigner verifies the signer bit.
func RequireSigner(a *Info) error {
	if a == nil || !a.IsSigner {
		return ErrNotAuthorized
	}
	return nil
}

// RequireIdentity verifies that a signed account is the expected identity.
func RequireIdentity(a *Info, want solana.PublicKey) error {
	if err := RequireSigner(a); err != nil {
		return err
	}
	if !a.Key.Equals(want) {
		return ErrNotAuthorized
	}
	return nil
}

// RequireWritable verifies the writable bit.
func RequireWritable(a *Info) error {
	if a == nil || !a.IsWritable {
		return apperrors.WithMetadata(apperrors.CodeInvalidAccount, "account must be writable", keyMetadata(a))
	}
	return nil
}

// RequireOwnedBy verifies the owning program and, when discriminator is set,
// that the data starts with it.
func RequireOwnedBy(a *Info, programID solana.PublicKey, discriminator []byte) error {
	if a == nil || !a.Owner.Equals(programID) {
		return apperrors.WithMetadata(apperrors.CodeInvalidAccount, "account is not owned by the program", keyMetadata(a))
	}
	if len(discriminator) > 0 && !bytes.HasPrefix(a.Data, discriminator) {
		return apperrors.WithMetadata(apperrors.CodeInvalidAccount, "account discriminator mismatch", keyMetadata(a))
	}
	return nil
}

// Take returns the first n accounts or ErrNotEnoughAccounts.
func Take(accounts []*Info, n int) ([]*Info, error) {
	if len(accounts) < n {
		return nil, ErrNotEnoughAccounts
	}
	for _, a := range accounts[:n] {
		if a == nil {
			return nil, ErrNotEnoughAccounts
		}
	}
	return accounts[:n], nil
}

func keyMetadata(a *Info) map[string]string {
	if a == nil {
		return nil
	}
	return map[string]string{"account": a.Key.String()}
}
