package runtime

import (
	"bytes"

	"github.com/gagliardetto/solana-go"

	apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/account"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/checked"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/entrypoint"
)

// MaxAccountSize bounds the data of a single account.
const MaxAccountSize = 10 * 1024 * 1024

// Invocation tracks one instruction's view of its accounts.
type Invocation struct {
	programID solana.PublicKey
	accounts  []*account.Info
	baseline  []account.Info
}

// NewInvocation snapshots accounts for programID. Accounts must be unique.
func NewInvocation(programID solana.PublicKey, accounts []*account.Info) *Invocation {
	inv := &Invocation{programID: programID, accounts: accounts}
	inv.checkpoint()
	return inv
}

var _ entrypoint.System = (*Invocation)(nil)

func (inv *Invocation) checkpoint() {
	inv.baseline = make([]account.Info, len(inv.accounts))
	for i, a := range inv.accounts {
		inv.baseline[i] = *a
		inv.baseline[i].Data = append([]byte(nil), a.Data...)
	}
}

// Verify checks every change made since the last checkpoint.
func (inv *Invocation) Verify() error {
	var before, after uint64
	for i, post := range inv.accounts {
		pre := inv.baseline[i]
		var err error
		if before, err = checked.Add(before, pre.Lamports); err != nil {
			return err
		}
		if after, err = checked.Add(after, post.Lamports); err != nil {
			return err
		}
		if err := inv.verifyAccount(pre, post); err != nil {
			return err
		}
	}
	if before != after {
		return ErrUnbalanced
	}
	return nil
}

func (inv *Invocation) verifyAccount(pre account.Info, post *account.Info) error {
	lamportsChanged := pre.Lamports != post.Lamports
	dataChanged := !bytes.Equal(pre.Data, post.Data)
	ownerChanged := !pre.Owner.Equals(post.Owner)
	if !lamportsChanged && !dataChanged && !ownerChanged && pre.Executable == post.Executable {
		return nil
	}
	meta := map[string]string{"account": post.Key.String()}
	if !post.IsWritable {
		return apperrors.WithMetadata(apperrors.CodeReadonlyAccountChange, ErrReadonlyAccountChange.Message, meta)
	}
	if pre.Executable != post.Executable {
		return apperrors.WithMetadata(apperrors.CodeExternalAccountChange, "executable flag changed", meta)
	}
	owned := pre.Owner.Equals(inv.programID)
	if post.Lamports < pre.Lamports && !owned {
		return apperrors.WithMetadata(apperrors.CodeExternalAccountChange, "debited an account the program does not own", meta)
	}
	if dataChanged && !owned {
		return apperrors.WithMetadata(apperrors.CodeExternalAccountChange, "modified data of an account the program does not own", meta)
	}
	if ownerChanged && (!owned || len(post.Data) != 0) {
		return apperrors.WithMetadata(apperrors.CodeExternalAccountChange, "reassigned an account without releasing it", meta)
	}
	if len(post.Data) > MaxAccountSize {
		return apperrors.WithMetadata(apperrors.CodeInvalidAccount, "account data too large", meta)
	}
	return nil
}

// signs reports whether a holds a transaction signature or is a
// program-derived address of the invoking program for one of signerSeeds.
func (inv *Invocation) signs(a *account.Info, signerSeeds [][][]byte) bool {
	if a.IsSigner {
		return true
	}
	for _, seeds := range signerSeeds {
		derived, err := solana.CreateProgramAddress(seeds, inv.programID)
		if err == nil && derived.Equals(a.Key) {
			return true
		}
	}
	return false
}

func (inv *Invocation) member(a *account.Info) bool {
	for _, known := range inv.accounts {
		if known == a {
			return true
		}
	}
	return false
}

// Transfer moves lamports out of a system-owned account.
func (inv *Invocation) Transfer(from, to *account.Info, lamports uint64, signerSeeds ...[][]byte) error {
	if err := inv.Verify(); err != nil {
		return err
	}
	if !inv.member(from) || !inv.member(to) {
		return account.ErrNotEnoughAccounts
	}
	if !inv.signs(from, signerSeeds) {
		return ErrMissingSigner
	}
	if err := account.RequireWritable(from); err != nil {
		return err
	}
	if err := account.RequireWritable(to); err != nil {
		return err
	}
	if !from.Owner.Equals(solana.SystemProgramID) || len(from.Data) != 0 {
		return apperrors.WithMetadata(apperrors.CodeInvalidAccount, "transfer source must be a system account", map[string]string{
			"account": from.Key.String(),
		})
	}
	if from == to {
		inv.checkpoint()
		return nil
	}
	debited, err := checked.Sub(from.Lamports, lamports)
	if err != nil {
		return err
	}
	credited, err := checked.Add(to.Lamports, lamports)
	if err != nil {
		return err
	}
	from.Lamports, to.Lamports = debited, credited
	inv.checkpoint()
	return nil
}

// CreateAccount allocates and assigns target and brings it to at least
// lamports. A target that already holds lamports but no data is accepted;
// the payer covers only the shortfall.
func (inv *Invocation) CreateAccount(payer, target *account.Info, lamports uint64, space uint64, owner solana.PublicKey, signerSeeds ...[][]byte) error {
	if err := inv.Verify(); err != nil {
		return err
	}
	if !inv.member(payer) || !inv.member(target) {
		return account.ErrNotEnoughAccounts
	}
	if !inv.signs(payer, signerSeeds) || !inv.signs(target, signerSeeds) {
		return ErrMissingSigner
	}
	if err := account.RequireWritable(payer); err != nil {
		return err
	}
	if err := account.RequireWritable(target); err != nil {
		return err
	}
	if !target.IsUnallocated() {
		return apperrors.WithMetadata(apperrors.CodeAccountInUse, ErrAccountInUse.Message, map[string]string{
			"account": target.Key.String(),
		})
	}
	if space > MaxAccountSize {
		return apperrors.New(apperrors.CodeInvalidParameters, "requested account size too large")
	}
	if !payer.Owner.Equals(solana.SystemProgramID) || len(payer.Data) != 0 {
		return apperrors.New(apperrors.CodeInvalidAccount, "payer must be a system account")
	}
	var topUp uint64
	if lamports > target.Lamports {
		topUp = lamports - target.Lamports
	}
	debited, err := checked.Sub(payer.Lamports, topUp)
	if err != nil {
		return err
	}
	payer.Lamports = debited
	target.Lamports += topUp
	target.Data = make([]byte, space)
	target.Owner = owner
	inv.checkpoint()
	return nil
}
