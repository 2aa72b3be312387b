// Package storage defines persistence contracts for ledger accounts and the
// transaction journal.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a transaction signature was already journaled.
	ErrAlreadyExists = errors.New("record already exists")
)

// Account is one persisted ledger account.
type Account struct {
	Key        solana.PublicKey
	Owner      solana.PublicKey
	Lamports   uint64
	Data       []byte
	Executable bool
}

// Clone returns a deep copy of a.
func (a Account) Clone() Account {
	a.Data = append([]byte(nil), a.Data...)
	return a
}

// Status is the journaled outcome of a transaction.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// TransactionRecord is one journal entry.
type TransactionRecord struct {
	Signature     solana.Signature
	Slot          uint64
	UnixTimestamp int64
	Status        Status
	ErrorCode     string
	ErrorMessage  string
	Logs          []string
	CreatedAt     time.Time
}

// Commit is the atomic unit written after a transaction executes. Accounts
// with zero lamports are deleted.
type Commit struct {
	Accounts    []Account
	Transaction TransactionRecord
}

// AccountStore reads ledger accounts.
type AccountStore interface {
	GetAccount(ctx context.Context, key solana.PublicKey) (Account, error)
	// ListAccountsByOwner returns the accounts owned by owner ordered by key.
	ListAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]Account, error)
}

// JournalStore reads the transaction journal.
type JournalStore interface {
	GetTransaction(ctx context.Context, signature solana.Signature) (TransactionRecord, error)
	LatestSlot(ctx context.Context) (uint64, error)
}

// Store persists ledger state.
type Store interface {
	AccountStore
	JournalStore
	// Apply writes c atomically. It returns ErrAlreadyExists when the
	// signature is already journaled, leaving accounts untouched.
	Apply(ctx context.Context, c Commit) error
	Close() error
}
