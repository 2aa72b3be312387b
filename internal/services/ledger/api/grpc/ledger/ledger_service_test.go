package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"google.golang.org/protobuf/types/known/wrapperspb"

	apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"
	"github.com/louisbranch/crowdfund/internal/services/ledger/storage"
)

type fakeReader struct {
	accounts     map[solana.PublicKey]storage.Account
	transactions map[solana.Signature]storage.TransactionRecord
}

func (f fakeReader) Account(_ context.Context, key solana.PublicKey) (storage.Account, error) {
	acc, ok := f.accounts[key]
	if !ok {
		return storage.Account{}, apperrors.New(apperrors.CodeNotFound, "account not found")
	}
	return acc, nil
}

func (f fakeReader) Transaction(_ context.Context, sig solana.Signature) (storage.TransactionRecord, error) {
	rec, ok := f.transactions[sig]
	if !ok {
		return storage.TransactionRecord{}, apperrors.New(apperrors.CodeNotFound, "transaction not found")
	}
	return rec, nil
}

func TestGetAccount(t *testing.T) {
	key := solana.NewWallet().PublicKey()
	svc := NewLedgerService(fakeReader{accounts: map[solana.PublicKey]storage.Account{
		key: {Key: key, Owner: solana.SystemProgramID, Lamports: 18_446_744_073_709_551_615, Data: []byte{1, 2}},
	}})

	got, err := svc.GetAccount(context.Background(), wrapperspb.String(" "+key.String()+" "))
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	fields := got.GetFields()
	if v := fields["lamports"].GetStringValue(); v != "18446744073709551615" {
		t.Fatalf("lamports = %q, want %q", v, "18446744073709551615")
	}
	if v := fields["owner"].GetStringValue(); v != solana.SystemProgramID.String() {
		t.Fatalf("owner = %q, want %q", v, solana.SystemProgramID)
	}
	if v := fields["data"].GetStringValue(); v != "AQI=" {
		t.Fatalf("data = %q, want %q", v, "AQI=")
	}
}

func TestGetAccountErrors(t *testing.T) {
	svc := NewLedgerService(fakeReader{})
	tests := []struct {
		name  string
		input string
		want  apperrors.Code
	}{
		{name: "empty", input: "  ", want: apperrors.CodeInvalidParameters},
		{name: "bad base58", input: "not-an-address", want: apperrors.CodeInvalidParameters},
		{name: "missing", input: solana.NewWallet().PublicKey().String(), want: apperrors.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetAccount(context.Background(), wrapperspb.String(tt.input))
			if got := apperrors.CodeOf(err); got != tt.want {
				t.Fatalf("code = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGetTransaction(t *testing.T) {
	sig := solana.Signature{7}
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewLedgerService(fakeReader{transactions: map[solana.Signature]storage.TransactionRecord{
		sig: {
			Signature:     sig,
			Slot:          42,
			UnixTimestamp: created.Unix(),
			Status:        storage.StatusFailed,
			ErrorCode:     string(apperrors.CodeDeadlinePassed),
			ErrorMessage:  "deadline passed",
			Logs:          []string{"Program log: Instruction: Contribute"},
			CreatedAt:     created,
		},
	}})

	got, err := svc.GetTransaction(context.Background(), wrapperspb.String(sig.String()))
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	fields := got.GetFields()
	if v := fields["slot"].GetStringValue(); v != "42" {
		t.Fatalf("slot = %q, want %q", v, "42")
	}
	if v := fields["status"].GetStringValue(); v != string(storage.StatusFailed) {
		t.Fatalf("status = %q, want %q", v, storage.StatusFailed)
	}
	if v := fields["error_code"].GetStringValue(); v != string(apperrors.CodeDeadlinePassed) {
		t.Fatalf("error_code = %q, want %q", v, apperrors.CodeDeadlinePassed)
	}
	logs := fields["logs"].GetListValue().GetValues()
	if len(logs) != 1 || logs[0].GetStringValue() != "Program log: Instruction: Contribute" {
		t.Fatalf("logs = %v, want one contribute line", logs)
	}
	if v := fields["created_at"].GetStringValue(); v != "2026-03-01T12:00:00Z" {
		t.Fatalf("created_at = %q, want %q", v, "2026-03-01T12:00:00Z")
	}
}

func TestGetTransactionRejectsBadSignature(t *testing.T) {
	svc := NewLedgerService(fakeReader{})
	_, err := svc.GetTransaction(context.Background(), wrapperspb.String("0OIl"))
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeInvalidParameters {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeInvalidParameters)
	}
}
