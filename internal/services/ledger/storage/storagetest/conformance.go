// Package storagetest provides a conformance suite every ledger store
// implementation runs from its own tests.
package storagetest

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/louisbranch/crowdfund/internal/services/ledger/storage"
)

// Opener returns a fresh, empty store for one subtest.
type Opener func(t *testing.T) storage.Store

// RunConformance exercises the storage.Store contract.
func RunConformance(t *testing.T, open Opener) {
	t.Helper()

	t.Run("missing records", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		if _, err := store.GetAccount(ctx, solana.NewWallet().PublicKey()); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("get account error = %v, want %v", err, storage.ErrNotFound)
		}
		if _, err := store.GetTransaction(ctx, solana.Signature{1}); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("get transaction error = %v, want %v", err, storage.ErrNotFound)
		}
		slot, err := store.LatestSlot(ctx)
		if err != nil || slot != 0 {
			t.Fatalf("latest slot = %d, %v; want 0, nil", slot, err)
		}
	})

	t.Run("apply round trip", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		program := solana.NewWallet().PublicKey()
		acct := storage.Account{
			Key:      solana.NewWallet().PublicKey(),
			Owner:    program,
			Lamports: math.MaxUint64 - 1,
			Data:     []byte{1, 2, 3},
		}
		rec := storage.TransactionRecord{
			Signature:     solana.Signature{7},
			Slot:          12,
			UnixTimestamp: 1_700_000_000,
			Status:        storage.StatusSucceeded,
			Logs:          []string{"Program log: hello"},
			CreatedAt:     time.Date(2026, time.October, 1, 12, 0, 0, 0, time.UTC),
		}
		if err := store.Apply(ctx, storage.Commit{Accounts: []storage.Account{acct}, Transaction: rec}); err != nil {
			t.Fatalf("apply: %v", err)
		}

		got, err := store.GetAccount(ctx, acct.Key)
		if err != nil {
			t.Fatalf("get account: %v", err)
		}
		if !got.Owner.Equals(program) || got.Lamports != acct.Lamports || !bytes.Equal(got.Data, acct.Data) {
			t.Fatalf("account = %+v, want %+v", got, acct)
		}

		gotRec, err := store.GetTransaction(ctx, rec.Signature)
		if err != nil {
			t.Fatalf("get transaction: %v", err)
		}
		if gotRec.Slot != 12 || gotRec.Status != storage.StatusSucceeded || len(gotRec.Logs) != 1 || gotRec.Logs[0] != rec.Logs[0] {
			t.Fatalf("transaction = %+v, want %+v", gotRec, rec)
		}
		if !gotRec.CreatedAt.Equal(rec.CreatedAt) {
			t.Fatalf("created_at = %v, want %v", gotRec.CreatedAt, rec.CreatedAt)
		}

		slot, err := store.LatestSlot(ctx)
		if err != nil || slot != 12 {
			t.Fatalf("latest slot = %d, %v; want 12, nil", slot, err)
		}

		owned, err := store.ListAccountsByOwner(ctx, program)
		if err != nil {
			t.Fatalf("list by owner: %v", err)
		}
		if len(owned) != 1 || !owned[0].Key.Equals(acct.Key) {
			t.Fatalf("owned accounts = %+v", owned)
		}
	})

	t.Run("duplicate signature leaves accounts untouched", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		key := solana.NewWallet().PublicKey()
		first := storage.Commit{
			Accounts:    []storage.Account{{Key: key, Owner: solana.SystemProgramID, Lamports: 10}},
			Transaction: storage.TransactionRecord{Signature: solana.Signature{9}, Slot: 1, Status: storage.StatusSucceeded},
		}
		if err := store.Apply(ctx, first); err != nil {
			t.Fatalf("apply first: %v", err)
		}
		replay := first
		replay.Accounts = []storage.Account{{Key: key, Owner: solana.SystemProgramID, Lamports: 99}}
		if err := store.Apply(ctx, replay); !errors.Is(err, storage.ErrAlreadyExists) {
			t.Fatalf("replay error = %v, want %v", err, storage.ErrAlreadyExists)
		}
		got, err := store.GetAccount(ctx, key)
		if err != nil {
			t.Fatalf("get account: %v", err)
		}
		if got.Lamports != 10 {
			t.Fatalf("lamports = %d, want 10", got.Lamports)
		}
	})

	t.Run("zero lamports deletes", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		key := solana.NewWallet().PublicKey()
		if err := store.Apply(ctx, storage.Commit{
			Accounts:    []storage.Account{{Key: key, Owner: solana.SystemProgramID, Lamports: 5}},
			Transaction: storage.TransactionRecord{Signature: solana.Signature{1}, Slot: 1, Status: storage.StatusSucceeded},
		}); err != nil {
			t.Fatalf("apply create: %v", err)
		}
		if err := store.Apply(ctx, storage.Commit{
			Accounts:    []storage.Account{{Key: key, Owner: solana.SystemProgramID}},
			Transaction: storage.TransactionRecord{Signature: solana.Signature{2}, Slot: 2, Status: storage.StatusSucceeded},
		}); err != nil {
			t.Fatalf("apply delete: %v", err)
		}
		if _, err := store.GetAccount(ctx, key); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("get deleted account error = %v, want %v", err, storage.ErrNotFound)
		}
	})

	t.Run("returned data is a copy", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		key := solana.NewWallet().PublicKey()
		data := []byte{1, 2}
		if err := store.Apply(ctx, storage.Commit{
			Accounts:    []storage.Account{{Key: key, Owner: solana.SystemProgramID, Lamports: 5, Data: data}},
			Transaction: storage.TransactionRecord{Signature: solana.Signature{3}, Slot: 1, Status: storage.StatusSucceeded},
		}); err != nil {
			t.Fatalf("apply: %v", err)
		}
		data[0] = 9
		got, err := store.GetAccount(ctx, key)
		if err != nil {
			t.Fatalf("get account: %v", err)
		}
		got.Data[1] = 9
		again, err := store.GetAccount(ctx, key)
		if err != nil {
			t.Fatalf("get account again: %v", err)
		}
		if !bytes.Equal(again.Data, []byte{1, 2}) {
			t.Fatalf("data = %v, want [1 2]", again.Data)
		}
	})
}
