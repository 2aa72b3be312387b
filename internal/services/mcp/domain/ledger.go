package domain

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"

	apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"
	"github.com/louisbranch/crowdfund/internal/platform/timeouts"
	"github.com/louisbranch/crowdfund/internal/services/ledger"
	"github.com/louisbranch/crowdfund/internal/services/ledger/storage"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/entrypoint"
)

// Ledger is the part of the bank the tools drive.
type Ledger interface {
	Execute(ctx context.Context, tx ledger.Transaction) (ledger.Receipt, error)
	Airdrop(ctx context.Context, key solana.PublicKey, lamports uint64) (ledger.Receipt, error)
	Account(ctx context.Context, key solana.PublicKey) (storage.Account, error)
	Balance(ctx context.Context, key solana.PublicKey) (uint64, error)
	ProgramAccounts(ctx context.Context, programID solana.PublicKey) ([]storage.Account, error)
	Transaction(ctx context.Context, signature solana.Signature) (storage.TransactionRecord, error)
}

// Env carries what every handler needs.
type Env struct {
	Ledger    Ledger
	ProgramID solana.PublicKey
	// Now reports wall time for read-side status resolution.
	Now func() time.Time

	nonce atomic.Uint64
}

// NewEnv returns an Env for programID backed by l.
func NewEnv(l Ledger, programID solana.PublicKey) *Env {
	env := &Env{Ledger: l, ProgramID: programID, Now: time.Now}
	env.nonce.Store(uint64(time.Now().UnixNano()))
	return env
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// TransactionResult reports an executed transaction.
type TransactionResult struct {
	Signature string   `json:"signature" jsonschema:"transaction signature (base58)"`
	Slot      uint64   `json:"slot" jsonschema:"slot the transaction executed in"`
	Status    string   `json:"status" jsonschema:"succeeded or failed"`
	ErrorCode string   `json:"error_code,omitempty" jsonschema:"error code when the transaction failed"`
	Logs      []string `json:"logs,omitempty" jsonschema:"program logs"`
}

func transactionResultFromReceipt(r ledger.Receipt) TransactionResult {
	result := TransactionResult{
		Signature: r.Signature.String(),
		Slot:      r.Slot,
		Status:    string(r.Status),
		Logs:      r.Logs,
	}
	if r.Err != nil {
		result.ErrorCode = string(apperrors.CodeOf(r.Err))
	}
	return result
}

// submit signs and executes instructions. A failed transaction is reported as
// a handler error carrying its code.
func (e *Env) submit(ctx context.Context, op string, instructions []entrypoint.Instruction, signers ...solana.PrivateKey) (TransactionResult, error) {
	tx, err := ledger.NewTransaction(ledger.Message{
		Nonce:        e.nonce.Add(1),
		Instructions: instructions,
	}, signers...)
	if err != nil {
		return TransactionResult{}, fmt.Errorf("%s: build transaction: %w", op, err)
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Transaction)
	defer cancel()
	receipt, err := e.Ledger.Execute(ctx, tx)
	if err != nil {
		return TransactionResult{}, toolError(op, err)
	}
	return transactionResultFromReceipt(receipt), nil
}

func toolError(op string, err error) error {
	return fmt.Errorf("%s failed (%s): %w", op, apperrors.CodeOf(err), err)
}

func parsePublicKey(field, value string) (solana.PublicKey, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return solana.PublicKey{}, fmt.Errorf("%s is required", field)
	}
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%s is not a valid address: %w", field, err)
	}
	return key, nil
}

// parseSecret decodes a base58 ed25519 secret key (64 bytes).
func parseSecret(field, value string) (solana.PrivateKey, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("%s is required", field)
	}
	key, err := solana.PrivateKeyFromBase58(value)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid secret key: %w", field, err)
	}
	if len(key) != 64 {
		return nil, fmt.Errorf("%s must encode 64 bytes, got %d", field, len(key))
	}
	return key, nil
}

func formatUnix(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}
