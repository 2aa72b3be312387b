package ledger

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"

	apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"
)

type keyLock struct {
	ch   chan struct{}
	refs int
}

// lockTable hands out exclusive per-account locks. Callers acquire keys in
// sorted order so two transactions never wait on each other in a cycle.
type lockTable struct {
	mu    sync.Mutex
	locks map[solana.PublicKey]*keyLock
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[solana.PublicKey]*keyLock)}
}

func (l *lockTable) ref(key solana.PublicKey) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	return kl
}

func (l *lockTable) unref(key solana.PublicKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl, ok := l.locks[key]
	if !ok {
		return
	}
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// acquire locks every key or none. keys must be sorted and unique.
func (l *lockTable) acquire(ctx context.Context, keys []solana.PublicKey) (func(), error) {
	held := make([]solana.PublicKey, 0, len(keys))
	releaseHeld := func() {
		for i := len(held) - 1; i >= 0; i-- {
			key := held[i]
			l.mu.Lock()
			kl := l.locks[key]
			l.mu.Unlock()
			<-kl.ch
			l.unref(key)
		}
	}
	for _, key := range keys {
		kl := l.ref(key)
		select {
		case kl.ch <- struct{}{}:
			held = append(held, key)
		case <-ctx.Done():
			l.unref(key)
			releaseHeld()
			return nil, apperrors.WithMetadata(apperrors.CodeAccountLocked, ErrAccountLocked.Message, map[string]string{
				"account": key.String(),
				"cause":   ctx.Err().Error(),
			})
		}
	}
	var once sync.Once
	return func() { once.Do(releaseHeld) }, nil
}
