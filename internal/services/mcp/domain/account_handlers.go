package domain

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AirdropTool defines the MCP tool schema for the dev faucet.
func AirdropTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "airdrop",
		Description: "Credits lamports to an address from the node faucet. New accounts need at least the rent-exempt minimum.",
	}
}

// AirdropHandler funds an address.
func AirdropHandler(env *Env) mcp.ToolHandlerFor[AirdropInput, AirdropResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AirdropInput) (*mcp.CallToolResult, AirdropResult, error) {
		key, err := parsePublicKey("address", input.Address)
		if err != nil {
			return nil, AirdropResult{}, err
		}
		receipt, err := env.Ledger.Airdrop(ctx, key, input.Lamports)
		if err != nil {
			return nil, AirdropResult{}, toolError("airdrop", err)
		}
		balance, err := env.Ledger.Balance(ctx, key)
		if err != nil {
			return nil, AirdropResult{}, toolError("airdrop", err)
		}
		return nil, AirdropResult{
			Address:     key.String(),
			Lamports:    balance,
			Transaction: transactionResultFromReceipt(receipt),
		}, nil
	}
}

// BalanceTool defines the MCP tool schema for reading balances.
func BalanceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_balance",
		Description: "Returns the lamports held by an address. Unknown addresses hold zero.",
	}
}

// BalanceHandler reads a balance.
func BalanceHandler(env *Env) mcp.ToolHandlerFor[BalanceInput, BalanceResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input BalanceInput) (*mcp.CallToolResult, BalanceResult, error) {
		key, err := parsePublicKey("address", input.Address)
		if err != nil {
			return nil, BalanceResult{}, err
		}
		lamports, err := env.Ledger.Balance(ctx, key)
		if err != nil {
			return nil, BalanceResult{}, toolError("get_balance", err)
		}
		return nil, BalanceResult{Address: key.String(), Lamports: lamports}, nil
	}
}

// TransactionGetTool defines the MCP tool schema for journal lookups.
func TransactionGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_transaction",
		Description: "Returns the journal entry of a transaction, including program logs and the failure code.",
	}
}

// TransactionGetHandler reads one journal entry.
func TransactionGetHandler(env *Env) mcp.ToolHandlerFor[TransactionGetInput, TransactionRecordResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TransactionGetInput) (*mcp.CallToolResult, TransactionRecordResult, error) {
		signature, err := solana.SignatureFromBase58(input.Signature)
		if err != nil {
			return nil, TransactionRecordResult{}, err
		}
		rec, err := env.Ledger.Transaction(ctx, signature)
		if err != nil {
			return nil, TransactionRecordResult{}, toolError("get_transaction", err)
		}
		return nil, TransactionRecordResult{
			Signature:    rec.Signature.String(),
			Slot:         rec.Slot,
			Timestamp:    formatUnix(rec.UnixTimestamp),
			Status:       string(rec.Status),
			ErrorCode:    rec.ErrorCode,
			ErrorMessage: rec.ErrorMessage,
			Logs:         rec.Logs,
		}, nil
	}
}

// KeypairTool defines the MCP tool schema for generating keys.
func KeypairTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "generate_keypair",
		Description: "Generates a fresh ed25519 keypair for use as an owner or contributor.",
	}
}

// KeypairHandler generates a keypair.
func KeypairHandler() mcp.ToolHandlerFor[KeypairInput, KeypairResult] {
	return func(context.Context, *mcp.CallToolRequest, KeypairInput) (*mcp.CallToolResult, KeypairResult, error) {
		key, err := solana.NewRandomPrivateKey()
		if err != nil {
			return nil, KeypairResult{}, err
		}
		return nil, KeypairResult{Address: key.PublicKey().String(), Secret: key.String()}, nil
	}
}
