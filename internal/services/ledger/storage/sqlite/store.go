// Package sqlite provides a SQLite-backed ledger store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	sqlitemigrate "github.com/louisbranch/crowdfund/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/crowdfund/internal/services/ledger/storage"
	"github.com/louisbranch/crowdfund/internal/services/ledger/storage/sqlite/migrations"
)

// Store persists ledger state in SQLite.
//
// Lamports are stored in INTEGER columns as the two's-complement image of
// the uint64 value.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite ledger store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	applied, err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	for _, name := range applied {
		log.Printf("ledger migration %s applied", name)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// GetAccount returns one account by key.
func (s *Store) GetAccount(ctx context.Context, key solana.PublicKey) (storage.Account, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Account{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT pubkey, owner, lamports, data, executable FROM accounts WHERE pubkey = ?`,
		key.String(),
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Account{}, storage.ErrNotFound
		}
		return storage.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// ListAccountsByOwner returns the accounts owned by owner ordered by key.
func (s *Store) ListAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]storage.Account, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT pubkey, owner, lamports, data, executable FROM accounts WHERE owner = ? ORDER BY pubkey`,
		owner.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []storage.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (storage.Account, error) {
	var (
		key, owner string
		lamports   int64
		data       []byte
		executable bool
	)
	if err := row.Scan(&key, &owner, &lamports, &data, &executable); err != nil {
		return storage.Account{}, err
	}
	pk, err := solana.PublicKeyFromBase58(key)
	if err != nil {
		return storage.Account{}, fmt.Errorf("parse account key: %w", err)
	}
	ownerKey, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return storage.Account{}, fmt.Errorf("parse owner key: %w", err)
	}
	return storage.Account{
		Key:        pk,
		Owner:      ownerKey,
		Lamports:   uint64(lamports),
		Data:       data,
		Executable: executable,
	}, nil
}

// GetTransaction returns one journal entry.
func (s *Store) GetTransaction(ctx context.Context, signature solana.Signature) (storage.TransactionRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.TransactionRecord{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT slot, unix_timestamp, status, error_code, error_message, logs_json, created_at
		 FROM transactions WHERE signature = ?`,
		signature.String(),
	)
	var (
		rec       storage.TransactionRecord
		slot      int64
		status    string
		logsJSON  string
		createdAt int64
	)
	if err := row.Scan(&slot, &rec.UnixTimestamp, &status, &rec.ErrorCode, &rec.ErrorMessage, &logsJSON, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.TransactionRecord{}, storage.ErrNotFound
		}
		return storage.TransactionRecord{}, fmt.Errorf("get transaction: %w", err)
	}
	if err := json.Unmarshal([]byte(logsJSON), &rec.Logs); err != nil {
		return storage.TransactionRecord{}, fmt.Errorf("decode transaction logs: %w", err)
	}
	rec.Signature = signature
	rec.Slot = uint64(slot)
	rec.Status = storage.Status(status)
	rec.CreatedAt = fromMillis(createdAt)
	return rec, nil
}

// LatestSlot returns the highest journaled slot, or zero.
func (s *Store) LatestSlot(ctx context.Context) (uint64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var slot int64
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COALESCE(MAX(slot), 0) FROM transactions`).Scan(&slot); err != nil {
		return 0, fmt.Errorf("latest slot: %w", err)
	}
	return uint64(slot), nil
}

// Apply writes accounts and the journal entry in one SQL transaction.
func (s *Store) Apply(ctx context.Context, c storage.Commit) (err error) {
	if err := s.ready(ctx); err != nil {
		return err
	}
	logsJSON, err := json.Marshal(nonNilLogs(c.Transaction.Logs))
	if err != nil {
		return fmt.Errorf("encode transaction logs: %w", err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rec := c.Transaction
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (
		   signature,
		   slot,
		   unix_timestamp,
		   status,
		   error_code,
		   error_message,
		   logs_json,
		   created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Signature.String(),
		int64(rec.Slot),
		rec.UnixTimestamp,
		string(rec.Status),
		rec.ErrorCode,
		rec.ErrorMessage,
		string(logsJSON),
		toMillis(createdAt),
	); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("journal transaction: %w", err)
	}

	for _, a := range c.Accounts {
		if a.Lamports == 0 {
			if _, err = tx.ExecContext(ctx, `DELETE FROM accounts WHERE pubkey = ?`, a.Key.String()); err != nil {
				return fmt.Errorf("delete account %s: %w", a.Key, err)
			}
			continue
		}
		data := a.Data
		if data == nil {
			data = []byte{}
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO accounts (pubkey, owner, lamports, data, executable, updated_slot)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(pubkey) DO UPDATE SET
			   owner = excluded.owner,
			   lamports = excluded.lamports,
			   data = excluded.data,
			   executable = excluded.executable,
			   updated_slot = excluded.updated_slot`,
			a.Key.String(),
			a.Owner.String(),
			int64(a.Lamports),
			data,
			a.Executable,
			int64(rec.Slot),
		); err != nil {
			return fmt.Errorf("upsert account %s: %w", a.Key, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func nonNilLogs(logs []string) []string {
	if logs == nil {
		return []string{}
	}
	return logs
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ storage.Store = (*Store)(nil)
