// Package entrypoint defines the contract between an on-ledger program and
// the host that runs it.
//
// A program sees exactly one instruction at a time: the accounts it declared,
// its instruction data, and a Context with the sysvars read once for that
// instruction. It may mutate the accounts it owns and call into the system
// program through Context.System. The host decides whether the mutations are
// committed.
package entrypoint

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/louisbranch/crowdfund/internal/services/program/domain/account"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/checked"
)

// Instruction is one program invocation inside a transaction.
type Instruction struct {
	ProgramID solana.PublicKey
	Accounts  []solana.AccountMeta
	Data      []byte
}

// System exposes the system program to a running instruction.
//
// signerSeeds lets the caller sign for program-derived addresses: each entry
// is the seed list (bump included) of one address the calling program
// controls.
type System interface {
	// Transfer moves lamports out of a system-owned account.
	Transfer(from, to *account.Info, lamports uint64, signerSeeds ...[][]byte) error
	// CreateAccount allocates and assigns an account without data, topping its
	// balance up to lamports from payer.
	CreateAccount(payer, target *account.Info, lamports uint64, space uint64, owner solana.PublicKey, signerSeeds ...[][]byte) error
}

// Context carries what a program may observe about the outside world.
type Context struct {
	ProgramID solana.PublicKey
	Clock     checked.Clock
	Rent      account.Rent
	System    System
	Log       func(message string)
}

// Logf formats and records a program log line.
func (c Context) Logf(format string, args ...any) {
	if c.Log == nil {
		return
	}
	c.Log(fmt.Sprintf(format, args...))
}

// Program processes instructions addressed to its program id.
type Program interface {
	Process(ctx Context, accounts []*account.Info, data []byte) error
}

// ProgramFunc adapts a function to Program.
type ProgramFunc func(ctx Context, accounts []*account.Info, data []byte) error

// Process satisfies Program.
func (fn ProgramFunc) Process(ctx Context, accounts []*account.Info, data []byte) error {
	return fn(ctx, accounts, data)
}
