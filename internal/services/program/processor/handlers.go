package processor

import (
	"github.com/louisbranch/crowdfund/internal/services/program/domain/account"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/address"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/campaign"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/checked"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/contribution"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/entrypoint"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/instruction"
)

func createCampaign(ctx entrypoint.Context, accounts []*account.Info, args []byte) error {
	accs, err := account.Take(accounts, instruction.CreateCampaignAccounts)
	if err != nil {
		return err
	}
	campaignAcc, escrowAcc, owner := accs[0], accs[1], accs[2]
	if err := account.RequireSigner(owner); err != nil {
		return err
	}
	if err := requireWritable(campaignAcc, escrowAcc, owner); err != nil {
		return err
	}

	in, err := instruction.DecodeCreateCampaign(args)
	if err != nil {
		return err
	}
	campaignSeeds := address.CampaignSeeds(owner.Key, in.Nonce)
	bump, err := address.VerifyCanonical(ctx.ProgramID, campaignSeeds, campaignAcc.Key)
	if err != nil {
		return err
	}
	escrowSeeds := address.EscrowSeeds(campaignAcc.Key)
	escrowBump, err := address.VerifyCanonical(ctx.ProgramID, escrowSeeds, escrowAcc.Key)
	if err != nil {
		return err
	}
	state, err := campaign.Create(owner.Key, bump, escrowBump, in.Params(), ctx.Clock)
	if err != nil {
		return err
	}
	data, err := campaign.Encode(state)
	if err != nil {
		return err
	}

	if err := ctx.System.CreateAccount(owner, campaignAcc, ctx.Rent.MinimumBalance(campaign.Size), uint64(campaign.Size), ctx.ProgramID,
		address.WithBump(campaignSeeds, bump)); err != nil {
		return err
	}
	if err := ctx.System.CreateAccount(owner, escrowAcc, ctx.Rent.MinimumBalance(0), 0, ctx.ProgramID,
		address.WithBump(escrowSeeds, escrowBump)); err != nil {
		return err
	}
	if err := store(campaignAcc, data); err != nil {
		return err
	}
	ctx.Logf("campaign %s created: goal %d deadline %d", campaignAcc.Key, state.GoalAmount, state.Deadline)
	return nil
}

func contribute(ctx entrypoint.Context, accounts []*account.Info, args []byte) error {
	accs, err := account.Take(accounts, instruction.ContributeAccounts)
	if err != nil {
		return err
	}
	campaignAcc, escrowAcc, contributionAcc, contributor := accs[0], accs[1], accs[2], accs[3]
	if err := account.RequireSigner(contributor); err != nil {
		return err
	}
	if err := requireWritable(campaignAcc, escrowAcc, contributionAcc, contributor); err != nil {
		return err
	}
	in, err := instruction.DecodeContribute(args)
	if err != nil {
		return err
	}

	state, err := loadCampaign(ctx, campaignAcc)
	if err != nil {
		return err
	}
	if err := verifyEscrow(ctx, campaignAcc.Key, state, escrowAcc); err != nil {
		return err
	}

	var (
		rec          contribution.State
		firstDeposit = contributionAcc.IsUnallocated()
		seeds        = address.ContributionSeeds(campaignAcc.Key, contributor.Key)
	)
	if firstDeposit {
		bump, err := address.VerifyCanonical(ctx.ProgramID, seeds, contributionAcc.Key)
		if err != nil {
			return err
		}
		rec = contribution.New(campaignAcc.Key, contributor.Key, state.CreatedSlot, bump)
	} else {
		rec, err = loadContribution(ctx, campaignAcc.Key, contributionAcc)
		if err != nil {
			return err
		}
		if err := account.RequireIdentity(contributor, rec.Contributor); err != nil {
			return err
		}
		if !rec.BelongsTo(state.CreatedSlot) {
			return errStaleContribution
		}
	}

	nextCampaign, err := state.Deposit(ctx.Clock, in.Amount, firstDeposit)
	if err != nil {
		return err
	}
	nextRec, err := rec.Deposit(in.Amount)
	if err != nil {
		return err
	}
	campaignData, err := campaign.Encode(nextCampaign)
	if err != nil {
		return err
	}
	recData, err := contribution.Encode(nextRec)
	if err != nil {
		return err
	}

	if firstDeposit {
		if err := ctx.System.CreateAccount(contributor, contributionAcc, ctx.Rent.MinimumBalance(contribution.Size), contribution.Size, ctx.ProgramID,
			address.WithBump(seeds, rec.Bump)); err != nil {
			return err
		}
	}
	if err := ctx.System.Transfer(contributor, escrowAcc, in.Amount); err != nil {
		return err
	}
	if err := store(campaignAcc, campaignData); err != nil {
		return err
	}
	if err := store(contributionAcc, recData); err != nil {
		return err
	}
	ctx.Logf("contributed %d to %s: raised %d of %d", in.Amount, campaignAcc.Key, nextCampaign.TotalRaised, nextCampaign.GoalAmount)
	return nil
}

func withdraw(ctx entrypoint.Context, accounts []*account.Info, args []byte) error {
	accs, err := account.Take(accounts, instruction.WithdrawAccounts)
	if err != nil {
		return err
	}
	campaignAcc, escrowAcc, owner := accs[0], accs[1], accs[2]
	if err := account.RequireSigner(owner); err != nil {
		return err
	}
	if err := requireWritable(campaignAcc, escrowAcc, owner); err != nil {
		return err
	}
	if err := instruction.RequireEmpty(args); err != nil {
		return err
	}

	state, err := loadCampaign(ctx, campaignAcc)
	if err != nil {
		return err
	}
	if err := account.RequireIdentity(owner, state.Owner); err != nil {
		return err
	}
	if err := verifyEscrow(ctx, campaignAcc.Key, state, escrowAcc); err != nil {
		return err
	}
	next, err := state.Withdraw(ctx.Clock)
	if err != nil {
		return err
	}
	amount := spendable(ctx, escrowAcc)
	if amount < state.TotalRaised {
		return checked.ErrInsufficientFunds
	}

	if err := move(escrowAcc, owner, amount); err != nil {
		return err
	}
	if err := storeCampaign(campaignAcc, next); err != nil {
		return err
	}
	ctx.Logf("withdrew %d from %s", amount, campaignAcc.Key)
	return nil
}

func refund(ctx entrypoint.Context, accounts []*account.Info, args []byte) error {
	accs, err := account.Take(accounts, instruction.RefundAccounts)
	if err != nil {
		return err
	}
	campaignAcc, escrowAcc, contributionAcc, contributor := accs[0], accs[1], accs[2], accs[3]
	if err := account.RequireSigner(contributor); err != nil {
		return err
	}
	if err := requireWritable(campaignAcc, escrowAcc, contributionAcc, contributor); err != nil {
		return err
	}
	if err := instruction.RequireEmpty(args); err != nil {
		return err
	}

	state, err := loadCampaign(ctx, campaignAcc)
	if err != nil {
		return err
	}
	if err := verifyEscrow(ctx, campaignAcc.Key, state, escrowAcc); err != nil {
		return err
	}
	rec, err := loadContribution(ctx, campaignAcc.Key, contributionAcc)
	if err != nil {
		return err
	}
	if err := account.RequireIdentity(contributor, rec.Contributor); err != nil {
		return err
	}
	if !rec.BelongsTo(state.CreatedSlot) {
		return errStaleContribution
	}
	nextRec, err := rec.Refund()
	if err != nil {
		return err
	}
	nextCampaign, err := state.RecordRefund(ctx.Clock, rec.Amount)
	if err != nil {
		return err
	}
	if spendable(ctx, escrowAcc) < rec.Amount {
		return checked.ErrInsufficientFunds
	}

	if err := move(escrowAcc, contributor, rec.Amount); err != nil {
		return err
	}
	if err := storeCampaign(campaignAcc, nextCampaign); err != nil {
		return err
	}
	if err := storeContribution(contributionAcc, nextRec); err != nil {
		return err
	}
	ctx.Logf("refunded %d to %s", rec.Amount, contributor.Key)
	return nil
}

func resolve(ctx entrypoint.Context, accounts []*account.Info, args []byte) error {
	accs, err := account.Take(accounts, instruction.ResolveAccounts)
	if err != nil {
		return err
	}
	campaignAcc := accs[0]
	if err := requireWritable(campaignAcc); err != nil {
		return err
	}
	if err := instruction.RequireEmpty(args); err != nil {
		return err
	}
	state, err := loadCampaign(ctx, campaignAcc)
	if err != nil {
		return err
	}
	next, err := state.Settle(ctx.Clock)
	if err != nil {
		return err
	}
	if err := storeCampaign(campaignAcc, next); err != nil {
		return err
	}
	ctx.Logf("campaign %s resolved %s", campaignAcc.Key, next.Status)
	return nil
}

func closeContribution(ctx entrypoint.Context, accounts []*account.Info, args []byte) error {
	accs, err := account.Take(accounts, instruction.CloseContributionAccounts)
	if err != nil {
		return err
	}
	campaignAcc, contributionAcc, contributor := accs[0], accs[1], accs[2]
	if err := account.RequireSigner(contributor); err != nil {
		return err
	}
	if err := requireWritable(contributionAcc, contributor); err != nil {
		return err
	}
	if err := instruction.RequireEmpty(args); err != nil {
		return err
	}

	rec, err := loadContribution(ctx, campaignAcc.Key, contributionAcc)
	if err != nil {
		return err
	}
	if err := account.RequireIdentity(contributor, rec.Contributor); err != nil {
		return err
	}
	settled, err := settleForClose(ctx, campaignAcc, rec)
	if err != nil {
		return err
	}

	if err := release(contributionAcc, contributor); err != nil {
		return err
	}
	ctx.Logf("contribution %s closed: amount %d refunded %t claimed %t", contributionAcc.Key, settled.Amount, settled.Refunded, settled.Claimed)
	return nil
}

// settleForClose decides whether rec may be released and returns its
// terminal form.
func settleForClose(ctx entrypoint.Context, campaignAcc *account.Info, rec contribution.State) (contribution.State, error) {
	if rec.Settled() {
		return rec, nil
	}
	if !campaignAcc.Owner.Equals(ctx.ProgramID) || len(campaignAcc.Data) == 0 {
		// campaign already reclaimed
		return rec, nil
	}
	state, err := loadCampaign(ctx, campaignAcc)
	if err != nil {
		return contribution.State{}, err
	}
	if !rec.BelongsTo(state.CreatedSlot) {
		return rec, nil
	}
	switch campaign.Resolve(state, ctx.Clock) {
	case campaign.StatusSuccessful, campaign.StatusClosed:
		return rec.Claim()
	default:
		return contribution.State{}, contribution.ErrNotSettled
	}
}

func closeCampaign(ctx entrypoint.Context, accounts []*account.Info, args []byte) error {
	accs, err := account.Take(accounts, instruction.CloseCampaignAccounts)
	if err != nil {
		return err
	}
	campaignAcc, escrowAcc, owner := accs[0], accs[1], accs[2]
	if err := account.RequireSigner(owner); err != nil {
		return err
	}
	if err := requireWritable(campaignAcc, escrowAcc, owner); err != nil {
		return err
	}
	if err := instruction.RequireEmpty(args); err != nil {
		return err
	}

	state, err := loadCampaign(ctx, campaignAcc)
	if err != nil {
		return err
	}
	if err := account.RequireIdentity(owner, state.Owner); err != nil {
		return err
	}
	if err := verifyEscrow(ctx, campaignAcc.Key, state, escrowAcc); err != nil {
		return err
	}
	if state.Status != campaign.StatusClosed {
		return campaign.ErrNotClosed
	}

	if err := release(escrowAcc, owner); err != nil {
		return err
	}
	if err := release(campaignAcc, owner); err != nil {
		return err
	}
	ctx.Logf("campaign %s reclaimed", campaignAcc.Key)
	return nil
}
