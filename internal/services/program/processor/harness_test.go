package processor

import (
	"bytes"
	"testing"

	"github.com/gagliardetto/solana-go"

	apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/account"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/campaign"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/checked"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/contribution"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/entrypoint"
)

const (
	deadline int64  = 1_700_000_000
	sol      uint64 = 1_000_000_000
)

// harness runs one instruction at a time against an in-memory account set,
// committing writable accounts only when the program succeeds.
type harness struct {
	t         *testing.T
	programID solana.PublicKey
	accounts  map[solana.PublicKey]*account.Info
	clock     checked.Clock
	logs      []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		t:         t,
		programID: solana.NewWallet().PublicKey(),
		accounts:  make(map[solana.PublicKey]*account.Info),
		clock:     checked.Clock{Slot: 1, UnixTimestamp: deadline - 1000},
	}
}

func (h *harness) wallet(lamports uint64) solana.PublicKey {
	key := solana.NewWallet().PublicKey()
	h.accounts[key] = &account.Info{Key: key, Owner: solana.SystemProgramID, Lamports: lamports}
	return key
}

func (h *harness) at(offset int64) {
	h.clock.Slot++
	h.clock.UnixTimestamp = deadline + offset
}

func (h *harness) lamports(key solana.PublicKey) uint64 {
	if a, ok := h.accounts[key]; ok {
		return a.Lamports
	}
	return 0
}

func (h *harness) load(ix entrypoint.Instruction) []*account.Info {
	infos := make([]*account.Info, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		base, ok := h.accounts[meta.PublicKey]
		if !ok {
			base = &account.Info{Key: meta.PublicKey, Owner: solana.SystemProgramID}
		}
		clone := *base
		clone.Data = append([]byte(nil), base.Data...)
		clone.IsSigner = meta.IsSigner
		clone.IsWritable = meta.IsWritable
		infos[i] = &clone
	}
	return infos
}

func (h *harness) context() entrypoint.Context {
	return entrypoint.Context{
		ProgramID: h.programID,
		Clock:     h.clock,
		Rent:      account.DefaultRent,
		System:    fakeSystem{programID: h.programID},
		Log:       func(m string) { h.logs = append(h.logs, m) },
	}
}

func (h *harness) run(ix entrypoint.Instruction) error {
	infos := h.load(ix)
	if err := New().Process(h.context(), infos, ix.Data); err != nil {
		return err
	}
	for _, info := range infos {
		if !info.IsWritable {
			continue
		}
		committed := *info
		committed.IsSigner, committed.IsWritable = false, false
		h.accounts[info.Key] = &committed
	}
	return nil
}

func (h *harness) mustRun(ix entrypoint.Instruction, err error) {
	h.t.Helper()
	if err != nil {
		h.t.Fatalf("build instruction: %v", err)
	}
	if err := h.run(ix); err != nil {
		h.t.Fatalf("run instruction: %v", err)
	}
}

func (h *harness) campaignState(key solana.PublicKey) campaign.State {
	h.t.Helper()
	a, ok := h.accounts[key]
	if !ok {
		h.t.Fatalf("campaign %s not found", key)
	}
	state, err := campaign.Decode(a.Data)
	if err != nil {
		h.t.Fatalf("decode campaign: %v", err)
	}
	return state
}

func (h *harness) contributionState(key solana.PublicKey) contribution.State {
	h.t.Helper()
	a, ok := h.accounts[key]
	if !ok {
		h.t.Fatalf("contribution %s not found", key)
	}
	rec, err := contribution.Decode(a.Data)
	if err != nil {
		h.t.Fatalf("decode contribution: %v", err)
	}
	return rec
}

// fakeSystem is a minimal system program: signer-checked transfers and
// account creation for signers or program-derived addresses.
type fakeSystem struct {
	programID solana.PublicKey
}

func (s fakeSystem) Transfer(from, to *account.Info, lamports uint64, signerSeeds ...[][]byte) error {
	if !from.IsSigner && !s.signs(from.Key, signerSeeds) {
		return account.ErrNotAuthorized
	}
	if from.Lamports < lamports {
		return checked.ErrInsufficientFunds
	}
	from.Lamports -= lamports
	to.Lamports += lamports
	return nil
}

func (s fakeSystem) CreateAccount(payer, target *account.Info, lamports uint64, space uint64, owner solana.PublicKey, signerSeeds ...[][]byte) error {
	if !target.IsUnallocated() {
		return apperrors.New(apperrors.CodeAccountInUse, "account in use")
	}
	if !payer.IsSigner || (!target.IsSigner && !s.signs(target.Key, signerSeeds)) {
		return account.ErrNotAuthorized
	}
	topUp := lamports - min(lamports, target.Lamports)
	if payer.Lamports < topUp {
		return checked.ErrInsufficientFunds
	}
	payer.Lamports -= topUp
	target.Lamports += topUp
	target.Data = make([]byte, space)
	target.Owner = owner
	return nil
}

func (s fakeSystem) signs(key solana.PublicKey, signerSeeds [][][]byte) bool {
	for _, seeds := range signerSeeds {
		derived, err := solana.CreateProgramAddress(seeds, s.programID)
		if err == nil && derived.Equals(key) {
			return true
		}
	}
	return false
}

func snapshot(infos []*account.Info) []account.Info {
	out := make([]account.Info, len(infos))
	for i, info := range infos {
		out[i] = *info
		out[i].Data = append([]byte(nil), info.Data...)
	}
	return out
}

func sameAccounts(a []account.Info, b []*account.Info) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Lamports != b[i].Lamports || !a[i].Owner.Equals(b[i].Owner) || !bytes.Equal(a[i].Data, b[i].Data) {
			return false
		}
	}
	return true
}
