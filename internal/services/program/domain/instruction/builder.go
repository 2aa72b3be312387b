package instruction

import (
	"github.com/gagliardetto/solana-go"

	"github.com/louisbranch/crowdfund/internal/services/program/domain/address"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/entrypoint"
)

// Account positions shared by the handlers and the builders below.
const (
	CreateCampaignAccounts    = 3 // campaign, escrow, owner
	ContributeAccounts        = 4 // campaign, escrow, contribution, contributor
	WithdrawAccounts          = 3 // campaign, escrow, owner
	RefundAccounts            = 4 // campaign, escrow, contribution, contributor
	ResolveAccounts           = 1 // campaign
	CloseContributionAccounts = 3 // campaign, contribution, contributor
	CloseCampaignAccounts     = 3 // campaign, escrow, owner
)

// CreateCampaign builds create_campaign for owner.
func CreateCampaign(programID, owner solana.PublicKey, args CreateCampaignArgs) (entrypoint.Instruction, error) {
	campaignKey, _, err := address.FindCampaign(programID, owner, args.Nonce)
	if err != nil {
		return entrypoint.Instruction{}, err
	}
	escrowKey, _, err := address.FindEscrow(programID, campaignKey)
	if err != nil {
		return entrypoint.Instruction{}, err
	}
	data, err := EncodeCreateCampaign(args)
	if err != nil {
		return entrypoint.Instruction{}, err
	}
	return entrypoint.Instruction{
		ProgramID: programID,
		Accounts: []solana.AccountMeta{
			{PublicKey: campaignKey, IsWritable: true},
			{PublicKey: escrowKey, IsWritable: true},
			{PublicKey: owner, IsWritable: true, IsSigner: true},
		},
		Data: data,
	}, nil
}

// Contribute builds contribute from contributor into campaign.
func Contribute(programID, campaignKey, contributor solana.PublicKey, amount uint64) (entrypoint.Instruction, error) {
	escrowKey, contributionKey, err := stakeKeys(programID, campaignKey, contributor)
	if err != nil {
		return entrypoint.Instruction{}, err
	}
	data, err := EncodeContribute(ContributeArgs{Amount: amount})
	if err != nil {
		return entrypoint.Instruction{}, err
	}
	return entrypoint.Instruction{
		ProgramID: programID,
		Accounts: []solana.AccountMeta{
			{PublicKey: campaignKey, IsWritable: true},
			{PublicKey: escrowKey, IsWritable: true},
			{PublicKey: contributionKey, IsWritable: true},
			{PublicKey: contributor, IsWritable: true, IsSigner: true},
		},
		Data: data,
	}, nil
}

// Withdraw builds withdraw for the campaign owner.
func Withdraw(programID, campaignKey, owner solana.PublicKey) (entrypoint.Instruction, error) {
	return ownerInstruction(programID, campaignKey, owner, KindWithdraw)
}

// CloseCampaign builds close_campaign for the campaign owner.
func CloseCampaign(programID, campaignKey, owner solana.PublicKey) (entrypoint.Instruction, error) {
	return ownerInstruction(programID, campaignKey, owner, KindCloseCampaign)
}

// Refund builds refund for contributor.
func Refund(programID, campaignKey, contributor solana.PublicKey) (entrypoint.Instruction, error) {
	escrowKey, contributionKey, err := stakeKeys(programID, campaignKey, contributor)
	if err != nil {
		return entrypoint.Instruction{}, err
	}
	return entrypoint.Instruction{
		ProgramID: programID,
		Accounts: []solana.AccountMeta{
			{PublicKey: campaignKey, IsWritable: true},
			{PublicKey: escrowKey, IsWritable: true},
			{PublicKey: contributionKey, IsWritable: true},
			{PublicKey: contributor, IsWritable: true, IsSigner: true},
		},
		Data: EncodeEmpty(KindRefund),
	}, nil
}

// Resolve builds the permissionless resolve instruction.
func Resolve(programID, campaignKey solana.PublicKey) entrypoint.Instruction {
	return entrypoint.Instruction{
		ProgramID: programID,
		Accounts: []solana.AccountMeta{
			{PublicKey: campaignKey, IsWritable: true},
		},
		Data: EncodeEmpty(KindResolve),
	}
}

// CloseContribution builds close_contribution for contributor.
func CloseContribution(programID, campaignKey, contributor solana.PublicKey) (entrypoint.Instruction, error) {
	contributionKey, _, err := address.FindContribution(programID, campaignKey, contributor)
	if err != nil {
		return entrypoint.Instruction{}, err
	}
	return entrypoint.Instruction{
		ProgramID: programID,
		Accounts: []solana.AccountMeta{
			{PublicKey: campaignKey},
			{PublicKey: contributionKey, IsWritable: true},
			{PublicKey: contributor, IsWritable: true, IsSigner: true},
		},
		Data: EncodeEmpty(KindCloseContribution),
	}, nil
}

func ownerInstruction(programID, campaignKey, owner solana.PublicKey, kind Kind) (entrypoint.Instruction, error) {
	escrowKey, _, err := address.FindEscrow(programID, campaignKey)
	if err != nil {
		return entrypoint.Instruction{}, err
	}
	return entrypoint.Instruction{
		ProgramID: programID,
		Accounts: []solana.AccountMeta{
			{PublicKey: campaignKey, IsWritable: true},
			{PublicKey: escrowKey, IsWritable: true},
			{PublicKey: owner, IsWritable: true, IsSigner: true},
		},
		Data: EncodeEmpty(kind),
	}, nil
}

func stakeKeys(programID, campaignKey, contributor solana.PublicKey) (escrow, contribution solana.PublicKey, err error) {
	escrow, _, err = address.FindEscrow(programID, campaignKey)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	contribution, _, err = address.FindContribution(programID, campaignKey, contributor)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	return escrow, contribution, nil
}
