// Package processor is the crowdfund program: it decodes each instruction,
// runs the capability checks, applies the campaign and contribution
// transitions, and writes the records back to the accounts it was given.
//
// Every handler follows the same shape. Signer bits are checked first, then
// addresses and ownership, then the pure state transition. Accounts are only
// written after all of that succeeds, so a rejected instruction leaves its
// accounts exactly as it found them.
package processor

import (
	"github.com/louisbranch/crowdfund/internal/services/program/domain/account"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/entrypoint"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/instruction"
)

type handler func(ctx entrypoint.Context, accounts []*account.Info, args []byte) error

// Processor dispatches instructions to their handlers.
type Processor struct {
	handlers map[instruction.Kind]handler
}

// New returns the crowdfund program.
func New() *Processor {
	return &Processor{
		handlers: map[instruction.Kind]handler{
			instruction.KindCreateCampaign:    createCampaign,
			instruction.KindContribute:        contribute,
			instruction.KindWithdraw:          withdraw,
			instruction.KindRefund:            refund,
			instruction.KindResolve:           resolve,
			instruction.KindCloseContribution: closeContribution,
			instruction.KindCloseCampaign:     closeCampaign,
		},
	}
}

// Process satisfies entrypoint.Program.
func (p *Processor) Process(ctx entrypoint.Context, accounts []*account.Info, data []byte) error {
	kind, args, err := instruction.Parse(data)
	if err != nil {
		return err
	}
	h, ok := p.handlers[kind]
	if !ok {
		return instruction.ErrInvalidInstruction
	}
	ctx.Logf("Instruction: %s", kind)
	return h(ctx, accounts, args)
}
