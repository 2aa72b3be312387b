package ledger

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"
	"github.com/louisbranch/crowdfund/internal/services/ledger/runtime"
	"github.com/louisbranch/crowdfund/internal/services/ledger/storage"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/account"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/checked"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/entrypoint"
)

const tracerName = "github.com/louisbranch/crowdfund/internal/services/ledger"

// Receipt reports the outcome of one transaction.
type Receipt struct {
	Signature     solana.Signature
	Slot          uint64
	UnixTimestamp int64
	Status        storage.Status
	Logs          []string
	// Err is the error that failed the transaction, nil on success.
	Err error
}

// Option configures a Bank.
type Option func(*Bank)

// WithNow overrides the wall clock used to stamp each transaction.
func WithNow(now func() time.Time) Option {
	return func(b *Bank) {
		if now != nil {
			b.now = now
		}
	}
}

// WithRent overrides the rent policy.
func WithRent(rent account.Rent) Option {
	return func(b *Bank) {
		b.rent = rent
	}
}

// WithFaucet sets the key that signs airdrop journal entries.
func WithFaucet(key solana.PrivateKey) Option {
	return func(b *Bank) {
		b.faucet = key
	}
}

// Bank executes transactions against a Store.
type Bank struct {
	store    storage.Store
	programs map[solana.PublicKey]entrypoint.Program
	rent     account.Rent
	now      func() time.Time
	faucet   solana.PrivateKey
	locks    *lockTable
	tracer   trace.Tracer

	clockMu  sync.Mutex
	slot     uint64
	lastUnix int64
}

// New returns a Bank that resumes slot numbering after the journal's latest
// entry.
func New(ctx context.Context, store storage.Store, programs map[solana.PublicKey]entrypoint.Program, opts ...Option) (*Bank, error) {
	if store == nil {
		return nil, errors.New("ledger store is required")
	}
	b := &Bank{
		store:    store,
		programs: make(map[solana.PublicKey]entrypoint.Program, len(programs)),
		rent:     account.DefaultRent,
		now:      time.Now,
		locks:    newLockTable(),
		tracer:   otel.Tracer(tracerName),
	}
	for id, program := range programs {
		if program == nil {
			return nil, fmt.Errorf("program %s is nil", id)
		}
		b.programs[id] = program
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.faucet == nil {
		key, err := solana.NewRandomPrivateKey()
		if err != nil {
			return nil, fmt.Errorf("generate faucet key: %w", err)
		}
		b.faucet = key
	}
	slot, err := store.LatestSlot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load latest slot: %w", err)
	}
	b.slot = slot
	return b, nil
}

// Rent returns the rent policy of the bank.
func (b *Bank) Rent() account.Rent {
	return b.rent
}

// nextClock assigns the next slot and a non-decreasing timestamp.
func (b *Bank) nextClock() checked.Clock {
	b.clockMu.Lock()
	defer b.clockMu.Unlock()
	b.slot++
	clock := checked.ClockAt(b.slot, b.now())
	if clock.UnixTimestamp < b.lastUnix {
		clock.UnixTimestamp = b.lastUnix
	}
	b.lastUnix = clock.UnixTimestamp
	return clock
}

// Execute runs tx and commits its effects if every instruction succeeds.
//
// The returned error is either a rejection that kept tx out of the journal
// (bad signatures, replays, lock timeouts, storage failures) or the error
// that failed execution, in which case the receipt is journaled with status
// failed and Receipt.Err holds the same error.
func (b *Bank) Execute(ctx context.Context, tx Transaction) (Receipt, error) {
	ctx, span := b.tracer.Start(ctx, "ledger.Execute")
	defer span.End()

	receipt, err := b.execute(ctx, tx)
	span.SetAttributes(
		attribute.String("crowdfund.tx.signature", tx.ID().String()),
		attribute.Int64("crowdfund.tx.slot", int64(receipt.Slot)),
		attribute.String("crowdfund.tx.status", string(receipt.Status)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, string(apperrors.CodeOf(err)))
	}
	return receipt, err
}

func (b *Bank) execute(ctx context.Context, tx Transaction) (Receipt, error) {
	if err := tx.Verify(); err != nil {
		return Receipt{}, err
	}
	signature := tx.ID()
	if err := b.ensureUnprocessed(ctx, signature); err != nil {
		return Receipt{}, err
	}

	keys := tx.Message.AccountKeys()
	release, err := b.locks.acquire(ctx, keys)
	if err != nil {
		return Receipt{}, err
	}
	defer release()
	// a concurrent copy of tx may have committed while we waited
	if err := b.ensureUnprocessed(ctx, signature); err != nil {
		return Receipt{}, err
	}

	initial, err := b.load(ctx, keys)
	if err != nil {
		return Receipt{}, err
	}
	clock := b.nextClock()
	receipt := Receipt{
		Signature:     signature,
		Slot:          clock.Slot,
		UnixTimestamp: clock.UnixTimestamp,
		Status:        storage.StatusSucceeded,
	}

	final, logs, execErr := b.run(tx.Message, clock, initial)
	receipt.Logs = logs
	commit := storage.Commit{Transaction: storage.TransactionRecord{
		Signature:     signature,
		Slot:          clock.Slot,
		UnixTimestamp: clock.UnixTimestamp,
		Status:        storage.StatusSucceeded,
		Logs:          logs,
		CreatedAt:     b.now(),
	}}
	if execErr != nil {
		receipt.Status = storage.StatusFailed
		receipt.Err = execErr
		commit.Transaction.Status = storage.StatusFailed
		commit.Transaction.ErrorCode = string(apperrors.CodeOf(execErr))
		commit.Transaction.ErrorMessage = execErr.Error()
	} else {
		commit.Accounts = changedAccounts(keys, initial, final)
	}

	if err := b.store.Apply(ctx, commit); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return Receipt{}, ErrAlreadyProcessed
		}
		return Receipt{}, fmt.Errorf("commit transaction: %w", err)
	}
	if execErr != nil {
		log.Printf("transaction %s failed at slot %d: %v", signature, clock.Slot, execErr)
		return receipt, execErr
	}
	return receipt, nil
}

func (b *Bank) ensureUnprocessed(ctx context.Context, signature solana.Signature) error {
	_, err := b.store.GetTransaction(ctx, signature)
	if err == nil {
		return apperrors.WithMetadata(apperrors.CodeAlreadyProcessed, ErrAlreadyProcessed.Message, map[string]string{
			"signature": signature.String(),
		})
	}
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("check journal: %w", err)
}

// load reads keys from the store. Missing accounts start empty and owned by
// the system program.
func (b *Bank) load(ctx context.Context, keys []solana.PublicKey) (map[solana.PublicKey]account.Info, error) {
	out := make(map[solana.PublicKey]account.Info, len(keys))
	for _, key := range keys {
		stored, err := b.store.GetAccount(ctx, key)
		switch {
		case err == nil:
			out[key] = account.Info{
				Key:        key,
				Owner:      stored.Owner,
				Lamports:   stored.Lamports,
				Data:       stored.Data,
				Executable: stored.Executable,
			}
		case errors.Is(err, storage.ErrNotFound):
			out[key] = account.Info{Key: key, Owner: solana.SystemProgramID}
		default:
			return nil, fmt.Errorf("load account %s: %w", key, err)
		}
		if _, ok := b.programs[key]; ok {
			info := out[key]
			info.Executable = true
			out[key] = info
		}
	}
	return out, nil
}

// run executes every instruction of msg against a working copy of initial.
func (b *Bank) run(msg Message, clock checked.Clock, initial map[solana.PublicKey]account.Info) (map[solana.PublicKey]account.Info, []string, error) {
	working := make(map[solana.PublicKey]account.Info, len(initial))
	for key, a := range initial {
		working[key] = cloneInfo(a)
	}
	var logs []string

	for i, ix := range msg.Instructions {
		program, ok := b.programs[ix.ProgramID]
		if !ok {
			logs = append(logs, fmt.Sprintf("Program %s not found", ix.ProgramID))
			return nil, logs, apperrors.WithMetadata(apperrors.CodeProgramNotFound, ErrProgramNotFound.Message, map[string]string{
				"program":     ix.ProgramID.String(),
				"instruction": fmt.Sprint(i),
			})
		}
		infos, unique, err := instructionAccounts(ix, working)
		if err != nil {
			return nil, logs, err
		}

		inv := runtime.NewInvocation(ix.ProgramID, unique)
		ctx := entrypoint.Context{
			ProgramID: ix.ProgramID,
			Clock:     clock,
			Rent:      b.rent,
			System:    inv,
			Log: func(message string) {
				logs = append(logs, "Program log: "+message)
			},
		}
		logs = append(logs, fmt.Sprintf("Program %s invoke [1]", ix.ProgramID))
		err = program.Process(ctx, infos, ix.Data)
		if err == nil {
			err = inv.Verify()
		}
		if err != nil {
			logs = append(logs, fmt.Sprintf("Program %s failed: %s", ix.ProgramID, describe(err)))
			return nil, logs, err
		}
		logs = append(logs, fmt.Sprintf("Program %s success", ix.ProgramID))

		for _, info := range unique {
			committed := cloneInfo(*info)
			committed.IsSigner, committed.IsWritable = false, false
			working[info.Key] = committed
		}
	}

	for key, final := range working {
		if err := runtime.CheckRent(b.rent, initial[key], final); err != nil {
			return nil, logs, err
		}
	}
	return working, logs, nil
}

// instructionAccounts builds the account list for ix. A key listed twice
// maps to the same Info, with signer and writable bits merged.
func instructionAccounts(ix entrypoint.Instruction, working map[solana.PublicKey]account.Info) ([]*account.Info, []*account.Info, error) {
	byKey := make(map[solana.PublicKey]*account.Info, len(ix.Accounts))
	infos := make([]*account.Info, 0, len(ix.Accounts))
	var unique []*account.Info
	for _, meta := range ix.Accounts {
		info, ok := byKey[meta.PublicKey]
		if !ok {
			clone := cloneInfo(working[meta.PublicKey])
			info = &clone
			byKey[meta.PublicKey] = info
			unique = append(unique, info)
		}
		info.IsSigner = info.IsSigner || meta.IsSigner
		info.IsWritable = info.IsWritable || meta.IsWritable
		if info.IsWritable && info.Executable {
			return nil, nil, apperrors.WithMetadata(apperrors.CodeInvalidAccount, "program accounts cannot be writable", map[string]string{
				"account": meta.PublicKey.String(),
			})
		}
		infos = append(infos, info)
	}
	return infos, unique, nil
}

func changedAccounts(keys []solana.PublicKey, initial, final map[solana.PublicKey]account.Info) []storage.Account {
	var out []storage.Account
	for _, key := range keys {
		pre, post := initial[key], final[key]
		if pre.Lamports == post.Lamports && pre.Owner.Equals(post.Owner) && bytes.Equal(pre.Data, post.Data) {
			continue
		}
		out = append(out, storage.Account{
			Key:        key,
			Owner:      post.Owner,
			Lamports:   post.Lamports,
			Data:       post.Data,
			Executable: post.Executable,
		})
	}
	return out
}

func cloneInfo(a account.Info) account.Info {
	a.Data = append([]byte(nil), a.Data...)
	return a
}

func describe(err error) string {
	code := apperrors.CodeOf(err)
	if n, ok := code.CustomErrorNumber(); ok {
		return fmt.Sprintf("custom program error: %d (%s)", n, code)
	}
	return string(code) + ": " + err.Error()
}

// Airdrop credits lamports to key from the dev faucet.
func (b *Bank) Airdrop(ctx context.Context, key solana.PublicKey, lamports uint64) (Receipt, error) {
	ctx, span := b.tracer.Start(ctx, "ledger.Airdrop")
	defer span.End()

	if lamports == 0 {
		return Receipt{}, apperrors.New(apperrors.CodeInvalidAmount, "airdrop amount must be greater than zero")
	}
	release, err := b.locks.acquire(ctx, []solana.PublicKey{key})
	if err != nil {
		return Receipt{}, err
	}
	defer release()

	loaded, err := b.load(ctx, []solana.PublicKey{key})
	if err != nil {
		return Receipt{}, err
	}
	pre := loaded[key]
	credited, err := checked.Add(pre.Lamports, lamports)
	if err != nil {
		return Receipt{}, err
	}
	post := cloneInfo(pre)
	post.Lamports = credited
	if err := runtime.CheckRent(b.rent, pre, post); err != nil {
		return Receipt{}, err
	}

	clock := b.nextClock()
	var payload [32 + 8 + 8]byte
	copy(payload[:32], key.Bytes())
	binary.LittleEndian.PutUint64(payload[32:40], lamports)
	binary.LittleEndian.PutUint64(payload[40:], clock.Slot)
	signature, err := b.faucet.Sign(payload[:])
	if err != nil {
		return Receipt{}, fmt.Errorf("sign airdrop: %w", err)
	}
	logs := []string{fmt.Sprintf("Airdrop %d lamports to %s", lamports, key)}
	if err := b.store.Apply(ctx, storage.Commit{
		Accounts: []storage.Account{{Key: key, Owner: post.Owner, Lamports: post.Lamports, Data: post.Data, Executable: post.Executable}},
		Transaction: storage.TransactionRecord{
			Signature:     signature,
			Slot:          clock.Slot,
			UnixTimestamp: clock.UnixTimestamp,
			Status:        storage.StatusSucceeded,
			Logs:          logs,
			CreatedAt:     b.now(),
		},
	}); err != nil {
		return Receipt{}, fmt.Errorf("commit airdrop: %w", err)
	}
	span.SetAttributes(attribute.String("crowdfund.tx.signature", signature.String()))
	return Receipt{
		Signature:     signature,
		Slot:          clock.Slot,
		UnixTimestamp: clock.UnixTimestamp,
		Status:        storage.StatusSucceeded,
		Logs:          logs,
	}, nil
}

// Account returns the committed state of key.
func (b *Bank) Account(ctx context.Context, key solana.PublicKey) (storage.Account, error) {
	a, err := b.store.GetAccount(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Account{}, apperrors.WithMetadata(apperrors.CodeNotFound, ErrAccountNotFound.Message, map[string]string{
			"account": key.String(),
		})
	}
	return a, err
}

// Balance returns the lamports held by key, zero when it does not exist.
func (b *Bank) Balance(ctx context.Context, key solana.PublicKey) (uint64, error) {
	a, err := b.store.GetAccount(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return a.Lamports, nil
}

// ProgramAccounts returns the accounts owned by programID.
func (b *Bank) ProgramAccounts(ctx context.Context, programID solana.PublicKey) ([]storage.Account, error) {
	return b.store.ListAccountsByOwner(ctx, programID)
}

// Transaction returns the journal entry for signature.
func (b *Bank) Transaction(ctx context.Context, signature solana.Signature) (storage.TransactionRecord, error) {
	rec, err := b.store.GetTransaction(ctx, signature)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.TransactionRecord{}, apperrors.WithMetadata(apperrors.CodeNotFound, ErrTransactionNotFound.Message, map[string]string{
			"signature": signature.String(),
		})
	}
	return rec, err
}
