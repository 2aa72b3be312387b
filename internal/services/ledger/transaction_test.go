package ledger

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/louisbranch/crowdfund/internal/services/program/domain/entrypoint"
)

func transferMessage(from, to solana.PublicKey) Message {
	return Message{
		Nonce: 7,
		Instructions: []entrypoint.Instruction{{
			ProgramID: solana.SystemProgramID,
			Accounts: []solana.AccountMeta{
				{PublicKey: from, IsSigner: true, IsWritable: true},
				{PublicKey: to, IsWritable: true},
			},
			Data: []byte{1, 2, 3},
		}},
	}
}

func TestTransactionVerify(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	to := solana.NewWallet().PublicKey()

	tx, err := NewTransaction(transferMessage(payer.PublicKey(), to), payer)
	if err != nil {
		t.Fatalf("new transaction: %v", err)
	}
	if err := tx.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if tx.ID() != tx.Signatures[0] {
		t.Fatalf("ID = %s, want first signature", tx.ID())
	}
}

func TestTransactionVerifyRejections(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	other := solana.NewWallet().PrivateKey
	to := solana.NewWallet().PublicKey()

	tests := []struct {
		name string
		tx   func(t *testing.T) Transaction
		want error
	}{
		{
			name: "no instructions",
			tx: func(t *testing.T) Transaction {
				tx, err := NewTransaction(Message{}, payer)
				if err != nil {
					t.Fatalf("new transaction: %v", err)
				}
				return tx
			},
			want: ErrEmptyTransaction,
		},
		{
			name: "unsigned",
			tx: func(t *testing.T) Transaction {
				return Transaction{Message: transferMessage(payer.PublicKey(), to)}
			},
			want: ErrMissingSignature,
		},
		{
			name: "signer account without signature",
			tx: func(t *testing.T) Transaction {
				tx, err := NewTransaction(transferMessage(payer.PublicKey(), to), other)
				if err != nil {
					t.Fatalf("new transaction: %v", err)
				}
				return tx
			},
			want: ErrMissingSignature,
		},
		{
			name: "tampered message",
			tx: func(t *testing.T) Transaction {
				tx, err := NewTransaction(transferMessage(payer.PublicKey(), to), payer)
				if err != nil {
					t.Fatalf("new transaction: %v", err)
				}
				tx.Message.Nonce++
				return tx
			},
			want: ErrInvalidSignature,
		},
		{
			name: "signature count mismatch",
			tx: func(t *testing.T) Transaction {
				tx, err := NewTransaction(transferMessage(payer.PublicKey(), to), payer)
				if err != nil {
					t.Fatalf("new transaction: %v", err)
				}
				tx.Signatures = nil
				return tx
			},
			want: ErrInvalidSignature,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.tx(t).Verify(); !errors.Is(err, tt.want) {
				t.Fatalf("Verify = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAccountKeysSortedAndUnique(t *testing.T) {
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()
	msg := transferMessage(a, b)
	msg.Instructions = append(msg.Instructions, transferMessage(b, a).Instructions...)

	keys := msg.AccountKeys()
	if len(keys) != 2 {
		t.Fatalf("keys = %d, want 2", len(keys))
	}
	if keys[0].String() == keys[1].String() {
		t.Fatal("expected unique keys")
	}
	if string(keys[0][:]) > string(keys[1][:]) {
		t.Fatalf("keys not sorted: %s, %s", keys[0], keys[1])
	}
}
