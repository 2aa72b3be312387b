package domain

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/louisbranch/crowdfund/internal/services/ledger"
	"github.com/louisbranch/crowdfund/internal/services/ledger/storage/memory"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/entrypoint"
	"github.com/louisbranch/crowdfund/internal/services/program/processor"
)

const sol uint64 = 1_000_000_000

var start = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestEnv(t *testing.T) (*Env, *testClock) {
	t.Helper()
	clock := &testClock{now: start}
	programID := solana.NewWallet().PublicKey()
	bank, err := ledger.New(context.Background(), memory.New(), map[solana.PublicKey]entrypoint.Program{
		programID: processor.New(),
	}, ledger.WithNow(clock.Now))
	if err != nil {
		t.Fatalf("new bank: %v", err)
	}
	env := NewEnv(bank, programID)
	env.Now = clock.Now
	return env, clock
}

func fundedKeypair(t *testing.T, env *Env, lamports uint64) KeypairResult {
	t.Helper()
	_, kp, err := KeypairHandler()(context.Background(), nil, KeypairInput{})
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	_, result, err := AirdropHandler(env)(context.Background(), nil, AirdropInput{Address: kp.Address, Lamports: lamports})
	if err != nil {
		t.Fatalf("airdrop: %v", err)
	}
	if result.Lamports != lamports {
		t.Fatalf("airdrop balance = %d, want %d", result.Lamports, lamports)
	}
	return kp
}

func createCampaign(t *testing.T, env *Env, owner KeypairResult, goal uint64, deadline time.Time) string {
	t.Helper()
	_, result, err := CampaignCreateHandler(env)(context.Background(), nil, CampaignCreateInput{
		OwnerSecret:  owner.Secret,
		Nonce:        1,
		GoalLamports: goal,
		Deadline:     deadline.Format(time.RFC3339),
		Name:         "Tool library",
		Description:  "Shared tools for the block.",
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	if result.Transaction.Status != "succeeded" {
		t.Fatalf("create status = %q, want succeeded", result.Transaction.Status)
	}
	return result.Campaign
}

func TestCampaignToolsSuccessfulFlow(t *testing.T) {
	env, clock := newTestEnv(t)
	deadline := start.Add(time.Hour)
	owner := fundedKeypair(t, env, sol)
	alice := fundedKeypair(t, env, 80*sol)
	bob := fundedKeypair(t, env, 50*sol)
	campaignAddr := createCampaign(t, env, owner, 100*sol, deadline)

	contribute := ContributeHandler(env)
	for _, c := range []struct {
		who    KeypairResult
		amount uint64
	}{{alice, 60 * sol}, {bob, 40 * sol}} {
		if _, _, err := contribute(context.Background(), nil, ContributeInput{
			Campaign:          campaignAddr,
			ContributorSecret: c.who.Secret,
			AmountLamports:    c.amount,
		}); err != nil {
			t.Fatalf("contribute %d: %v", c.amount, err)
		}
	}

	get := CampaignGetHandler(env)
	_, got, err := get(context.Background(), nil, CampaignGetInput{Campaign: campaignAddr})
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if got.Owner != owner.Address || got.TotalRaised != 100*sol || got.ContributorCount != 2 {
		t.Fatalf("campaign = %+v, want 100 SOL from 2 contributors", got)
	}
	if got.EffectiveStatus != "open" {
		t.Fatalf("effective status = %q, want open", got.EffectiveStatus)
	}

	clock.Set(deadline.Add(time.Second))
	_, got, err = get(context.Background(), nil, CampaignGetInput{Campaign: campaignAddr})
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if got.Status != "open" || got.EffectiveStatus != "successful" {
		t.Fatalf("status = %q/%q, want open/successful", got.Status, got.EffectiveStatus)
	}

	_, before, err := BalanceHandler(env)(context.Background(), nil, BalanceInput{Address: owner.Address})
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	withdraw := WithdrawHandler(env)
	_, result, err := withdraw(context.Background(), nil, OwnerActionInput{Campaign: campaignAddr, OwnerSecret: owner.Secret})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if result.Transaction.Status != "succeeded" {
		t.Fatalf("withdraw status = %q, want succeeded", result.Transaction.Status)
	}
	_, after, err := BalanceHandler(env)(context.Background(), nil, BalanceInput{Address: owner.Address})
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if after.Lamports-before.Lamports != 100*sol {
		t.Fatalf("owner received %d, want %d", after.Lamports-before.Lamports, 100*sol)
	}
	if _, _, err := withdraw(context.Background(), nil, OwnerActionInput{Campaign: campaignAddr, OwnerSecret: owner.Secret}); err == nil || !strings.Contains(err.Error(), "ALREADY_CLOSED") {
		t.Fatalf("second withdraw error = %v, want ALREADY_CLOSED", err)
	}
}

func TestCampaignToolsFailedFlow(t *testing.T) {
	env, clock := newTestEnv(t)
	deadline := start.Add(time.Hour)
	owner := fundedKeypair(t, env, sol)
	alice := fundedKeypair(t, env, 50*sol)
	campaignAddr := createCampaign(t, env, owner, 100*sol, deadline)

	if _, _, err := ContributeHandler(env)(context.Background(), nil, ContributeInput{
		Campaign:          campaignAddr,
		ContributorSecret: alice.Secret,
		AmountLamports:    30 * sol,
	}); err != nil {
		t.Fatalf("contribute: %v", err)
	}

	_, contribution, err := ContributionGetHandler(env)(context.Background(), nil, ContributionGetInput{
		Campaign:    campaignAddr,
		Contributor: alice.Address,
	})
	if err != nil {
		t.Fatalf("get contribution: %v", err)
	}
	if contribution.Amount != 30*sol || contribution.Refunded {
		t.Fatalf("contribution = %+v, want 30 SOL unrefunded", contribution)
	}

	clock.Set(deadline.Add(time.Second))
	if _, _, err := WithdrawHandler(env)(context.Background(), nil, OwnerActionInput{
		Campaign:    campaignAddr,
		OwnerSecret: owner.Secret,
	}); err == nil || !strings.Contains(err.Error(), "CAMPAIGN_NOT_SUCCESSFUL") {
		t.Fatalf("withdraw error = %v, want CAMPAIGN_NOT_SUCCESSFUL", err)
	}

	_, before, err := BalanceHandler(env)(context.Background(), nil, BalanceInput{Address: alice.Address})
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	refund := RefundHandler(env)
	if _, _, err := refund(context.Background(), nil, ContributionActionInput{
		Campaign:          campaignAddr,
		ContributorSecret: alice.Secret,
	}); err != nil {
		t.Fatalf("refund: %v", err)
	}
	_, after, err := BalanceHandler(env)(context.Background(), nil, BalanceInput{Address: alice.Address})
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if after.Lamports-before.Lamports != 30*sol {
		t.Fatalf("refunded %d, want %d", after.Lamports-before.Lamports, 30*sol)
	}
	if _, _, err := refund(context.Background(), nil, ContributionActionInput{
		Campaign:          campaignAddr,
		ContributorSecret: alice.Secret,
	}); err == nil || !strings.Contains(err.Error(), "ALREADY_REFUNDED") {
		t.Fatalf("second refund error = %v, want ALREADY_REFUNDED", err)
	}

	if _, _, err := ContributionCloseHandler(env)(context.Background(), nil, ContributionActionInput{
		Campaign:          campaignAddr,
		ContributorSecret: alice.Secret,
	}); err != nil {
		t.Fatalf("close contribution: %v", err)
	}
	_, closeResult, err := CampaignCloseHandler(env)(context.Background(), nil, OwnerActionInput{
		Campaign:    campaignAddr,
		OwnerSecret: owner.Secret,
	})
	if err != nil {
		t.Fatalf("close campaign: %v", err)
	}

	_, rec, err := TransactionGetHandler(env)(context.Background(), nil, TransactionGetInput{Signature: closeResult.Transaction.Signature})
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if rec.Status != "succeeded" || len(rec.Logs) == 0 {
		t.Fatalf("journal = %+v, want succeeded with logs", rec)
	}
	if _, _, err := CampaignGetHandler(env)(context.Background(), nil, CampaignGetInput{Campaign: campaignAddr}); err == nil {
		t.Fatal("expected reclaimed campaign to be gone")
	}
}

func TestResolveTool(t *testing.T) {
	env, clock := newTestEnv(t)
	deadline := start.Add(time.Hour)
	owner := fundedKeypair(t, env, sol)
	campaignAddr := createCampaign(t, env, owner, 100*sol, deadline)
	resolve := ResolveHandler(env)

	if _, _, err := resolve(context.Background(), nil, ResolveInput{Campaign: campaignAddr, PayerSecret: owner.Secret}); err == nil || !strings.Contains(err.Error(), "CAMPAIGN_STILL_OPEN") {
		t.Fatalf("early resolve error = %v, want CAMPAIGN_STILL_OPEN", err)
	}
	clock.Set(deadline)
	if _, _, err := resolve(context.Background(), nil, ResolveInput{Campaign: campaignAddr, PayerSecret: owner.Secret}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	_, got, err := CampaignGetHandler(env)(context.Background(), nil, CampaignGetInput{Campaign: campaignAddr})
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	// nothing raised and nothing outstanding settles straight to closed
	if got.Status != "closed" {
		t.Fatalf("status = %q, want closed", got.Status)
	}
}

func TestCampaignListTool(t *testing.T) {
	env, _ := newTestEnv(t)
	deadline := start.Add(time.Hour)
	alice := fundedKeypair(t, env, sol)
	bob := fundedKeypair(t, env, sol)
	createCampaign(t, env, alice, sol, deadline)
	createCampaign(t, env, bob, sol, deadline)

	list := CampaignListHandler(env)
	_, all, err := list(context.Background(), nil, CampaignListInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all.Campaigns) != 2 {
		t.Fatalf("campaigns = %d, want 2", len(all.Campaigns))
	}
	_, mine, err := list(context.Background(), nil, CampaignListInput{Owner: alice.Address})
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(mine.Campaigns) != 1 || mine.Campaigns[0].Owner != alice.Address {
		t.Fatalf("campaigns = %+v, want one owned by alice", mine.Campaigns)
	}
	_, page, err := list(context.Background(), nil, CampaignListInput{PageSize: 1})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page.Campaigns) != 1 {
		t.Fatalf("page = %d, want 1", len(page.Campaigns))
	}
	_, bySlot, err := list(context.Background(), nil, CampaignListInput{OrderBy: "created_slot"})
	if err != nil {
		t.Fatalf("list by slot: %v", err)
	}
	if len(bySlot.Campaigns) != 2 || bySlot.Campaigns[0].Owner != alice.Address {
		t.Fatalf("campaigns = %+v, want alice first", bySlot.Campaigns)
	}
	if bySlot.Campaigns[0].CreatedSlot >= bySlot.Campaigns[1].CreatedSlot {
		t.Fatalf("created slots = %d, %d, want increasing", bySlot.Campaigns[0].CreatedSlot, bySlot.Campaigns[1].CreatedSlot)
	}
	if _, _, err := list(context.Background(), nil, CampaignListInput{OrderBy: "goal"}); err == nil {
		t.Fatal("expected unknown order_by to be rejected")
	}
}

func TestToolInputValidation(t *testing.T) {
	env, _ := newTestEnv(t)

	tests := []struct {
		name string
		call func() error
	}{
		{
			name: "missing owner secret",
			call: func() error {
				_, _, err := CampaignCreateHandler(env)(context.Background(), nil, CampaignCreateInput{Deadline: start.Format(time.RFC3339)})
				return err
			},
		},
		{
			name: "bad deadline",
			call: func() error {
				key := solana.NewWallet().PrivateKey
				_, _, err := CampaignCreateHandler(env)(context.Background(), nil, CampaignCreateInput{OwnerSecret: key.String(), Deadline: "tomorrow"})
				return err
			},
		},
		{
			name: "bad campaign address",
			call: func() error {
				_, _, err := ContributeHandler(env)(context.Background(), nil, ContributeInput{Campaign: "not-base58!"})
				return err
			},
		},
		{
			name: "short secret",
			call: func() error {
				_, _, err := RefundHandler(env)(context.Background(), nil, ContributionActionInput{
					Campaign:          solana.NewWallet().PublicKey().String(),
					ContributorSecret: solana.NewWallet().PublicKey().String(),
				})
				return err
			},
		},
		{
			name: "bad signature",
			call: func() error {
				_, _, err := TransactionGetHandler(env)(context.Background(), nil, TransactionGetInput{Signature: "xyz"})
				return err
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestBalanceOfUnknownAddressIsZero(t *testing.T) {
	env, _ := newTestEnv(t)
	_, got, err := BalanceHandler(env)(context.Background(), nil, BalanceInput{Address: solana.NewWallet().PublicKey().String()})
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if got.Lamports != 0 {
		t.Fatalf("lamports = %d, want 0", got.Lamports)
	}
}

func TestAirdropRejectsZero(t *testing.T) {
	env, _ := newTestEnv(t)
	_, _, err := AirdropHandler(env)(context.Background(), nil, AirdropInput{Address: solana.NewWallet().PublicKey().String()})
	if err == nil || !strings.Contains(err.Error(), "INVALID_AMOUNT") {
		t.Fatalf("airdrop error = %v, want INVALID_AMOUNT", err)
	}
}
