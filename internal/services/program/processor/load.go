package processor

import (
	"github.com/gagliardetto/solana-go"

	apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/account"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/address"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/campaign"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/checked"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/contribution"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/entrypoint"
)

var errStaleContribution = apperrors.New(apperrors.CodeAddressMismatch, "contribution belongs to an earlier campaign")

func requireWritable(accounts ...*account.Info) error {
	for _, a := range accounts {
		if err := account.RequireWritable(a); err != nil {
			return err
		}
	}
	return nil
}

// loadCampaign decodes a campaign record and checks it sits at its own
// derived address.
func loadCampaign(ctx entrypoint.Context, acc *account.Info) (campaign.State, error) {
	if err := account.RequireOwnedBy(acc, ctx.ProgramID, campaign.Discriminator.Bytes()); err != nil {
		return campaign.State{}, err
	}
	state, err := campaign.Decode(acc.Data)
	if err != nil {
		return campaign.State{}, err
	}
	seeds := address.CampaignSeeds(state.Owner, state.Nonce)
	if err := address.Verify(ctx.ProgramID, seeds, state.Bump, acc.Key); err != nil {
		return campaign.State{}, err
	}
	return state, nil
}

func verifyEscrow(ctx entrypoint.Context, campaignKey solana.PublicKey, state campaign.State, escrow *account.Info) error {
	if err := address.Verify(ctx.ProgramID, address.EscrowSeeds(campaignKey), state.EscrowBump, escrow.Key); err != nil {
		return err
	}
	return account.RequireOwnedBy(escrow, ctx.ProgramID, nil)
}

// loadContribution decodes a contribution record of campaignKey.
func loadContribution(ctx entrypoint.Context, campaignKey solana.PublicKey, acc *account.Info) (contribution.State, error) {
	if err := account.RequireOwnedBy(acc, ctx.ProgramID, contribution.Discriminator.Bytes()); err != nil {
		return contribution.State{}, err
	}
	rec, err := contribution.Decode(acc.Data)
	if err != nil {
		return contribution.State{}, err
	}
	if !rec.Campaign.Equals(campaignKey) {
		return contribution.State{}, address.ErrAddressMismatch
	}
	seeds := address.ContributionSeeds(rec.Campaign, rec.Contributor)
	if err := address.Verify(ctx.ProgramID, seeds, rec.Bump, acc.Key); err != nil {
		return contribution.State{}, err
	}
	return rec, nil
}

func storeCampaign(acc *account.Info, state campaign.State) error {
	data, err := campaign.Encode(state)
	if err != nil {
		return err
	}
	return store(acc, data)
}

func storeContribution(acc *account.Info, rec contribution.State) error {
	data, err := contribution.Encode(rec)
	if err != nil {
		return err
	}
	return store(acc, data)
}

func store(acc *account.Info, data []byte) error {
	if len(acc.Data) != len(data) {
		return apperrors.WithMetadata(apperrors.CodeInvalidAccount, "account data size mismatch", map[string]string{
			"account": acc.Key.String(),
		})
	}
	copy(acc.Data, data)
	return nil
}

// spendable returns the lamports a program-owned account can release while
// staying rent exempt.
func spendable(ctx entrypoint.Context, acc *account.Info) uint64 {
	minimum := ctx.Rent.MinimumBalance(len(acc.Data))
	if acc.Lamports <= minimum {
		return 0
	}
	return acc.Lamports - minimum
}

// move debits a program-owned account and credits to.
func move(from, to *account.Info, lamports uint64) error {
	debited, err := checked.Sub(from.Lamports, lamports)
	if err != nil {
		return err
	}
	credited, err := checked.Add(to.Lamports, lamports)
	if err != nil {
		return err
	}
	from.Lamports = debited
	to.Lamports = credited
	return nil
}

// release moves every lamport of acc to recipient and clears it.
func release(acc, recipient *account.Info) error {
	if err := move(acc, recipient, acc.Lamports); err != nil {
		return err
	}
	acc.Clear()
	return nil
}
