// Package memory provides an in-process ledger store for tests and
// ephemeral nodes.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/louisbranch/crowdfund/internal/services/ledger/storage"
)

// Store keeps ledger state in maps guarded by a mutex.
type Store struct {
	mu           sync.RWMutex
	accounts     map[solana.PublicKey]storage.Account
	transactions map[solana.Signature]storage.TransactionRecord
	latestSlot   uint64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		accounts:     make(map[solana.PublicKey]storage.Account),
		transactions: make(map[solana.Signature]storage.TransactionRecord),
	}
}

// GetAccount returns a copy of one account.
func (s *Store) GetAccount(ctx context.Context, key solana.PublicKey) (storage.Account, error) {
	if err := ctx.Err(); err != nil {
		return storage.Account{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[key]
	if !ok {
		return storage.Account{}, storage.ErrNotFound
	}
	return a.Clone(), nil
}

// ListAccountsByOwner returns copies of the accounts owned by owner.
func (s *Store) ListAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]storage.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []storage.Account
	for _, a := range s.accounts {
		if a.Owner.Equals(owner) {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.String() < out[j].Key.String()
	})
	return out, nil
}

// GetTransaction returns one journal entry.
func (s *Store) GetTransaction(ctx context.Context, signature solana.Signature) (storage.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.TransactionRecord{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.transactions[signature]
	if !ok {
		return storage.TransactionRecord{}, storage.ErrNotFound
	}
	rec.Logs = append([]string(nil), rec.Logs...)
	return rec, nil
}

// LatestSlot returns the highest journaled slot.
func (s *Store) LatestSlot(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestSlot, nil
}

// Apply writes accounts and the journal entry together.
func (s *Store) Apply(ctx context.Context, c storage.Commit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.transactions[c.Transaction.Signature]; exists {
		return storage.ErrAlreadyExists
	}
	for _, a := range c.Accounts {
		if a.Lamports == 0 {
			delete(s.accounts, a.Key)
			continue
		}
		s.accounts[a.Key] = a.Clone()
	}
	rec := c.Transaction
	rec.Logs = append([]string(nil), rec.Logs...)
	s.transactions[rec.Signature] = rec
	if rec.Slot > s.latestSlot {
		s.latestSlot = rec.Slot
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

var _ storage.Store = (*Store)(nil)
