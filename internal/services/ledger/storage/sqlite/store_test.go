package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/louisbranch/crowdfund/internal/services/ledger/storage"
	"github.com/louisbranch/crowdfund/internal/services/ledger/storage/storagetest"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestConformance(t *testing.T) {
	storagetest.RunConformance(t, func(t *testing.T) storage.Store {
		return openTempStore(t)
	})
}

func TestReopenKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	key := solana.NewWallet().PublicKey()
	if err := store.Apply(context.Background(), storage.Commit{
		Accounts:    []storage.Account{{Key: key, Owner: solana.SystemProgramID, Lamports: 42}},
		Transaction: storage.TransactionRecord{Signature: solana.Signature{4}, Slot: 3, Status: storage.StatusSucceeded},
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.GetAccount(context.Background(), key)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.Lamports != 42 {
		t.Fatalf("lamports = %d, want 42", got.Lamports)
	}
	slot, err := reopened.LatestSlot(context.Background())
	if err != nil || slot != 3 {
		t.Fatalf("latest slot = %d, %v; want 3, nil", slot, err)
	}
}
