package domain

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/crowdfund/internal/platform/grpc/pagination"
	"github.com/louisbranch/crowdfund/internal/services/ledger/storage"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/address"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/campaign"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/checked"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/contribution"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/entrypoint"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/instruction"
)

var (
	campaignPageSize = pagination.PageSizeConfig{Default: 20, Max: 100}
	campaignOrderBy  = pagination.OrderByConfig{
		Default: "address",
		Allowed: []string{"address", "deadline", "created_slot"},
	}
)

// CampaignCreateTool defines the MCP tool schema for creating campaigns.
func CampaignCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "create_campaign",
		Description: "Creates a campaign with a lamport goal and deadline. The owner pays rent for the campaign and escrow accounts.",
	}
}

// CampaignCreateHandler executes create_campaign.
func CampaignCreateHandler(env *Env) mcp.ToolHandlerFor[CampaignCreateInput, CampaignCreateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CampaignCreateInput) (*mcp.CallToolResult, CampaignCreateResult, error) {
		owner, err := parseSecret("owner_secret", input.OwnerSecret)
		if err != nil {
			return nil, CampaignCreateResult{}, err
		}
		deadline, err := time.Parse(time.RFC3339, strings.TrimSpace(input.Deadline))
		if err != nil {
			return nil, CampaignCreateResult{}, fmt.Errorf("deadline must be RFC3339: %w", err)
		}
		ix, err := instruction.CreateCampaign(env.ProgramID, owner.PublicKey(), instruction.CreateCampaignArgs{
			Nonce:       input.Nonce,
			GoalAmount:  input.GoalLamports,
			Deadline:    deadline.Unix(),
			Name:        input.Name,
			Description: input.Description,
		})
		if err != nil {
			return nil, CampaignCreateResult{}, toolError("create_campaign", err)
		}
		tx, err := env.submit(ctx, "create_campaign", []entrypoint.Instruction{ix}, owner)
		if err != nil {
			return nil, CampaignCreateResult{}, err
		}
		return nil, CampaignCreateResult{
			Campaign:    ix.Accounts[0].PublicKey.String(),
			Escrow:      ix.Accounts[1].PublicKey.String(),
			Transaction: tx,
		}, nil
	}
}

// ContributeTool defines the MCP tool schema for contributing.
func ContributeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "contribute",
		Description: "Moves lamports from a contributor into a campaign escrow while the campaign is open.",
	}
}

// ContributeHandler executes contribute.
func ContributeHandler(env *Env) mcp.ToolHandlerFor[ContributeInput, ActionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ContributeInput) (*mcp.CallToolResult, ActionResult, error) {
		campaignKey, err := parsePublicKey("campaign", input.Campaign)
		if err != nil {
			return nil, ActionResult{}, err
		}
		contributor, err := parseSecret("contributor_secret", input.ContributorSecret)
		if err != nil {
			return nil, ActionResult{}, err
		}
		ix, err := instruction.Contribute(env.ProgramID, campaignKey, contributor.PublicKey(), input.AmountLamports)
		if err != nil {
			return nil, ActionResult{}, toolError("contribute", err)
		}
		tx, err := env.submit(ctx, "contribute", []entrypoint.Instruction{ix}, contributor)
		if err != nil {
			return nil, ActionResult{}, err
		}
		return nil, ActionResult{Campaign: campaignKey.String(), Transaction: tx}, nil
	}
}

// WithdrawTool defines the MCP tool schema for withdrawing.
func WithdrawTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "withdraw",
		Description: "Sends the raised funds of a successful campaign to its owner. Allowed once.",
	}
}

// WithdrawHandler executes withdraw.
func WithdrawHandler(env *Env) mcp.ToolHandlerFor[OwnerActionInput, ActionResult] {
	return ownerAction(env, "withdraw", instruction.Withdraw)
}

// CampaignCloseTool defines the MCP tool schema for reclaiming a campaign.
func CampaignCloseTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "close_campaign",
		Description: "Reclaims the rent of a closed campaign and its escrow for the owner.",
	}
}

// CampaignCloseHandler executes close_campaign.
func CampaignCloseHandler(env *Env) mcp.ToolHandlerFor[OwnerActionInput, ActionResult] {
	return ownerAction(env, "close_campaign", instruction.CloseCampaign)
}

func ownerAction(env *Env, op string, build func(programID, campaignKey, owner solana.PublicKey) (entrypoint.Instruction, error)) mcp.ToolHandlerFor[OwnerActionInput, ActionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input OwnerActionInput) (*mcp.CallToolResult, ActionResult, error) {
		campaignKey, err := parsePublicKey("campaign", input.Campaign)
		if err != nil {
			return nil, ActionResult{}, err
		}
		owner, err := parseSecret("owner_secret", input.OwnerSecret)
		if err != nil {
			return nil, ActionResult{}, err
		}
		ix, err := build(env.ProgramID, campaignKey, owner.PublicKey())
		if err != nil {
			return nil, ActionResult{}, toolError(op, err)
		}
		tx, err := env.submit(ctx, op, []entrypoint.Instruction{ix}, owner)
		if err != nil {
			return nil, ActionResult{}, err
		}
		return nil, ActionResult{Campaign: campaignKey.String(), Transaction: tx}, nil
	}
}

// RefundTool defines the MCP tool schema for refunds.
func RefundTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "refund",
		Description: "Returns a contributor's full stake from a failed campaign. Allowed once per contribution.",
	}
}

// RefundHandler executes refund.
func RefundHandler(env *Env) mcp.ToolHandlerFor[ContributionActionInput, ActionResult] {
	return contributorAction(env, "refund", instruction.Refund)
}

// ContributionCloseTool defines the MCP tool schema for reclaiming a contribution record.
func ContributionCloseTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "close_contribution",
		Description: "Reclaims the rent of a settled contribution record for its contributor.",
	}
}

// ContributionCloseHandler executes close_contribution.
func ContributionCloseHandler(env *Env) mcp.ToolHandlerFor[ContributionActionInput, ActionResult] {
	return contributorAction(env, "close_contribution", instruction.CloseContribution)
}

func contributorAction(env *Env, op string, build func(programID, campaignKey, contributor solana.PublicKey) (entrypoint.Instruction, error)) mcp.ToolHandlerFor[ContributionActionInput, ActionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ContributionActionInput) (*mcp.CallToolResult, ActionResult, error) {
		campaignKey, err := parsePublicKey("campaign", input.Campaign)
		if err != nil {
			return nil, ActionResult{}, err
		}
		contributor, err := parseSecret("contributor_secret", input.ContributorSecret)
		if err != nil {
			return nil, ActionResult{}, err
		}
		ix, err := build(env.ProgramID, campaignKey, contributor.PublicKey())
		if err != nil {
			return nil, ActionResult{}, toolError(op, err)
		}
		tx, err := env.submit(ctx, op, []entrypoint.Instruction{ix}, contributor)
		if err != nil {
			return nil, ActionResult{}, err
		}
		return nil, ActionResult{Campaign: campaignKey.String(), Transaction: tx}, nil
	}
}

// ResolveTool defines the MCP tool schema for persisting a campaign resolution.
func ResolveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "resolve_campaign",
		Description: "Persists the Successful or Failed status of a campaign whose deadline has passed. Anyone may call it.",
	}
}

// ResolveHandler executes resolve.
func ResolveHandler(env *Env) mcp.ToolHandlerFor[ResolveInput, ActionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ResolveInput) (*mcp.CallToolResult, ActionResult, error) {
		campaignKey, err := parsePublicKey("campaign", input.Campaign)
		if err != nil {
			return nil, ActionResult{}, err
		}
		payer, err := parseSecret("payer_secret", input.PayerSecret)
		if err != nil {
			return nil, ActionResult{}, err
		}
		ix := instruction.Resolve(env.ProgramID, campaignKey)
		tx, err := env.submit(ctx, "resolve_campaign", []entrypoint.Instruction{ix}, payer)
		if err != nil {
			return nil, ActionResult{}, err
		}
		return nil, ActionResult{Campaign: campaignKey.String(), Transaction: tx}, nil
	}
}

// CampaignGetTool defines the MCP tool schema for reading a campaign.
func CampaignGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_campaign",
		Description: "Returns a campaign record with its status resolved against the current time.",
	}
}

// CampaignGetHandler reads one campaign.
func CampaignGetHandler(env *Env) mcp.ToolHandlerFor[CampaignGetInput, CampaignResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CampaignGetInput) (*mcp.CallToolResult, CampaignResult, error) {
		campaignKey, err := parsePublicKey("campaign", input.Campaign)
		if err != nil {
			return nil, CampaignResult{}, err
		}
		acc, err := env.Ledger.Account(ctx, campaignKey)
		if err != nil {
			return nil, CampaignResult{}, toolError("get_campaign", err)
		}
		result, err := env.campaignResult(ctx, acc)
		if err != nil {
			return nil, CampaignResult{}, toolError("get_campaign", err)
		}
		return nil, result, nil
	}
}

// CampaignListTool defines the MCP tool schema for listing campaigns.
func CampaignListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_campaigns",
		Description: "Lists campaigns, optionally filtered by owner and ordered by address, deadline, or creation slot.",
	}
}

// CampaignListHandler lists campaigns owned by the program.
func CampaignListHandler(env *Env) mcp.ToolHandlerFor[CampaignListInput, CampaignListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CampaignListInput) (*mcp.CallToolResult, CampaignListResult, error) {
		var owner *solana.PublicKey
		if strings.TrimSpace(input.Owner) != "" {
			key, err := parsePublicKey("owner", input.Owner)
			if err != nil {
				return nil, CampaignListResult{}, err
			}
			owner = &key
		}
		limit := pagination.ClampPageSize(input.PageSize, campaignPageSize)
		orderBy, err := pagination.NormalizeOrderBy(strings.TrimSpace(input.OrderBy), campaignOrderBy)
		if err != nil {
			return nil, CampaignListResult{}, err
		}

		accounts, err := env.Ledger.ProgramAccounts(ctx, env.ProgramID)
		if err != nil {
			return nil, CampaignListResult{}, toolError("list_campaigns", err)
		}
		campaigns := []CampaignResult{}
		prefix := campaign.Discriminator.Bytes()
		for _, acc := range accounts {
			if !bytes.HasPrefix(acc.Data, prefix) {
				continue
			}
			entry, err := env.campaignResult(ctx, acc)
			if err != nil {
				return nil, CampaignListResult{}, toolError("list_campaigns", err)
			}
			if owner != nil && entry.Owner != owner.String() {
				continue
			}
			campaigns = append(campaigns, entry)
		}
		switch orderBy {
		case "deadline":
			slices.SortStableFunc(campaigns, func(a, b CampaignResult) int {
				return strings.Compare(a.Deadline, b.Deadline)
			})
		case "created_slot":
			slices.SortStableFunc(campaigns, func(a, b CampaignResult) int {
				return cmp.Compare(a.CreatedSlot, b.CreatedSlot)
			})
		}
		if len(campaigns) > limit {
			campaigns = campaigns[:limit]
		}
		return nil, CampaignListResult{Campaigns: campaigns}, nil
	}
}

func (e *Env) campaignResult(ctx context.Context, acc storage.Account) (CampaignResult, error) {
	if !acc.Owner.Equals(e.ProgramID) {
		return CampaignResult{}, fmt.Errorf("account %s is not owned by the crowdfund program", acc.Key)
	}
	state, err := campaign.Decode(acc.Data)
	if err != nil {
		return CampaignResult{}, err
	}
	escrowKey, _, err := address.FindEscrow(e.ProgramID, acc.Key)
	if err != nil {
		return CampaignResult{}, err
	}
	escrowLamports, err := e.Ledger.Balance(ctx, escrowKey)
	if err != nil {
		return CampaignResult{}, err
	}
	clock := checked.ClockAt(0, e.now())
	return CampaignResult{
		Address:          acc.Key.String(),
		Owner:            state.Owner.String(),
		Nonce:            state.Nonce,
		Escrow:           escrowKey.String(),
		EscrowLamports:   escrowLamports,
		GoalLamports:     state.GoalAmount,
		TotalRaised:      state.TotalRaised,
		TotalRefunded:    state.TotalRefunded,
		ContributorCount: state.ContributorCount,
		Deadline:         formatUnix(state.Deadline),
		Status:           state.Status.String(),
		EffectiveStatus:  campaign.Resolve(state, clock).String(),
		CreatedSlot:      state.CreatedSlot,
		Name:             state.Name,
		Description:      state.Description,
	}, nil
}

// ContributionGetTool defines the MCP tool schema for reading a contribution.
func ContributionGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_contribution",
		Description: "Returns the contribution record of one contributor to one campaign.",
	}
}

// ContributionGetHandler reads one contribution.
func ContributionGetHandler(env *Env) mcp.ToolHandlerFor[ContributionGetInput, ContributionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ContributionGetInput) (*mcp.CallToolResult, ContributionResult, error) {
		campaignKey, err := parsePublicKey("campaign", input.Campaign)
		if err != nil {
			return nil, ContributionResult{}, err
		}
		contributor, err := parsePublicKey("contributor", input.Contributor)
		if err != nil {
			return nil, ContributionResult{}, err
		}
		key, _, err := address.FindContribution(env.ProgramID, campaignKey, contributor)
		if err != nil {
			return nil, ContributionResult{}, toolError("get_contribution", err)
		}
		acc, err := env.Ledger.Account(ctx, key)
		if err != nil {
			return nil, ContributionResult{}, toolError("get_contribution", err)
		}
		if !acc.Owner.Equals(env.ProgramID) {
			return nil, ContributionResult{}, fmt.Errorf("account %s is not owned by the crowdfund program", key)
		}
		rec, err := contribution.Decode(acc.Data)
		if err != nil {
			return nil, ContributionResult{}, toolError("get_contribution", err)
		}
		return nil, ContributionResult{
			Address:      key.String(),
			Campaign:     rec.Campaign.String(),
			Contributor:  rec.Contributor.String(),
			Amount:       rec.Amount,
			Refunded:     rec.Refunded,
			Claimed:      rec.Claimed,
			CampaignSlot: rec.CampaignSlot,
		}, nil
	}
}
