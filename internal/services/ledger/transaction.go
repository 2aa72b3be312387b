package ledger

import (
	"bytes"
	"fmt"
	"sort"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/entrypoint"
)

const (
	metaSigner   uint8 = 1 << 0
	metaWritable uint8 = 1 << 1
)

// Message is the signed body of a transaction.
type Message struct {
	// Nonce keeps otherwise identical messages distinct.
	Nonce        uint64
	Instructions []entrypoint.Instruction
}

// Transaction is a message plus one signature per signer, in order.
type Transaction struct {
	Signers    []solana.PublicKey
	Signatures []solana.Signature
	Message    Message
}

// NewTransaction signs msg with every key in signers.
func NewTransaction(msg Message, signers ...solana.PrivateKey) (Transaction, error) {
	tx := Transaction{Message: msg}
	for _, key := range signers {
		tx.Signers = append(tx.Signers, key.PublicKey())
	}
	payload, err := tx.SigningBytes()
	if err != nil {
		return Transaction{}, err
	}
	for _, key := range signers {
		sig, err := key.Sign(payload)
		if err != nil {
			return Transaction{}, fmt.Errorf("sign transaction: %w", err)
		}
		tx.Signatures = append(tx.Signatures, sig)
	}
	return tx, nil
}

// ID returns the first signature, which identifies the transaction.
func (t Transaction) ID() solana.Signature {
	if len(t.Signatures) == 0 {
		return solana.Signature{}
	}
	return t.Signatures[0]
}

// SigningBytes encodes the signer list and message for signing.
func (t Transaction) SigningBytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)
	if len(t.Signers) > 255 {
		return nil, apperrors.New(apperrors.CodeInvalidInstruction, "too many signers")
	}
	if err := enc.WriteUint8(uint8(len(t.Signers))); err != nil {
		return nil, err
	}
	for _, key := range t.Signers {
		if err := enc.WriteBytes(key.Bytes(), false); err != nil {
			return nil, err
		}
	}
	if err := enc.WriteUint64(t.Message.Nonce, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteUint32(uint32(len(t.Message.Instructions)), bin.LE); err != nil {
		return nil, err
	}
	for _, ix := range t.Message.Instructions {
		if err := enc.WriteBytes(ix.ProgramID.Bytes(), false); err != nil {
			return nil, err
		}
		if err := enc.WriteUint32(uint32(len(ix.Accounts)), bin.LE); err != nil {
			return nil, err
		}
		for _, meta := range ix.Accounts {
			var flags uint8
			if meta.IsSigner {
				flags |= metaSigner
			}
			if meta.IsWritable {
				flags |= metaWritable
			}
			if err := enc.WriteBytes(meta.PublicKey.Bytes(), false); err != nil {
				return nil, err
			}
			if err := enc.WriteUint8(flags); err != nil {
				return nil, err
			}
		}
		if err := enc.WriteUint32(uint32(len(ix.Data)), bin.LE); err != nil {
			return nil, err
		}
		if err := enc.WriteBytes(ix.Data, false); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Verify checks every signature and that each signer account was signed for.
func (t Transaction) Verify() error {
	if len(t.Message.Instructions) == 0 {
		return ErrEmptyTransaction
	}
	if len(t.Signers) == 0 {
		return ErrMissingSignature
	}
	if len(t.Signatures) != len(t.Signers) {
		return ErrInvalidSignature
	}
	payload, err := t.SigningBytes()
	if err != nil {
		return err
	}
	signed := make(map[solana.PublicKey]bool, len(t.Signers))
	for i, key := range t.Signers {
		if !t.Signatures[i].Verify(key, payload) {
			return apperrors.WithMetadata(apperrors.CodeInvalidSignature, ErrInvalidSignature.Message, map[string]string{
				"signer": key.String(),
			})
		}
		signed[key] = true
	}
	for _, ix := range t.Message.Instructions {
		for _, meta := range ix.Accounts {
			if meta.IsSigner && !signed[meta.PublicKey] {
				return apperrors.WithMetadata(apperrors.CodeMissingSignature, ErrMissingSignature.Message, map[string]string{
					"account": meta.PublicKey.String(),
				})
			}
		}
	}
	return nil
}

// AccountKeys returns every account the message references, sorted and
// without duplicates.
func (m Message) AccountKeys() []solana.PublicKey {
	seen := make(map[solana.PublicKey]struct{})
	var keys []solana.PublicKey
	for _, ix := range m.Instructions {
		for _, meta := range ix.Accounts {
			if _, ok := seen[meta.PublicKey]; ok {
				continue
			}
			seen[meta.PublicKey] = struct{}{}
			keys = append(keys, meta.PublicKey)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})
	return keys
}
