// Package instruction defines the wire format of the crowdfund program:
// discriminators, argument encoding, and the account order of each
// instruction.
package instruction

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"

	apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/campaign"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/layout"
)

// Kind names an instruction.
type Kind string

const (
	KindCreateCampaign    Kind = "create_campaign"
	KindContribute        Kind = "contribute"
	KindWithdraw          Kind = "withdraw"
	KindRefund            Kind = "refund"
	KindResolve           Kind = "resolve"
	KindCloseContribution Kind = "close_contribution"
	KindCloseCampaign     Kind = "close_campaign"
)

// Kinds lists every instruction in a stable order.
var Kinds = []Kind{
	KindCreateCampaign,
	KindContribute,
	KindWithdraw,
	KindRefund,
	KindResolve,
	KindCloseContribution,
	KindCloseCampaign,
}

var byDiscriminator = func() map[layout.Discriminator]Kind {
	m := make(map[layout.Discriminator]Kind, len(Kinds))
	for _, k := range Kinds {
		m[k.Discriminator()] = k
	}
	return m
}()

// ErrInvalidInstruction indicates undecodable instruction data.
var ErrInvalidInstruction = apperrors.New(apperrors.CodeInvalidInstruction, "invalid instruction data")

// Discriminator returns the 8-byte tag of k.
func (k Kind) Discriminator() layout.Discriminator {
	return layout.InstructionDiscriminator(string(k))
}

// Parse splits instruction data into its kind and argument bytes.
func Parse(data []byte) (Kind, []byte, error) {
	if len(data) < layout.DiscriminatorSize {
		return "", nil, ErrInvalidInstruction
	}
	var d layout.Discriminator
	copy(d[:], data[:layout.DiscriminatorSize])
	kind, ok := byDiscriminator[d]
	if !ok {
		return "", nil, apperrors.WithMetadata(apperrors.CodeInvalidInstruction, "unknown instruction", map[string]string{
			"discriminator": fmt.Sprintf("%x", d[:]),
		})
	}
	return kind, data[layout.DiscriminatorSize:], nil
}

// CreateCampaignArgs are the create_campaign arguments.
type CreateCampaignArgs struct {
	Nonce       uint64
	GoalAmount  uint64
	Deadline    int64
	Name        string
	Description string
}

// Params converts the wire arguments to domain creation parameters.
func (a CreateCampaignArgs) Params() campaign.CreateParams {
	return campaign.CreateParams{
		Nonce:       a.Nonce,
		GoalAmount:  a.GoalAmount,
		Deadline:    a.Deadline,
		Name:        a.Name,
		Description: a.Description,
	}
}

// ContributeArgs are the contribute arguments.
type ContributeArgs struct {
	Amount uint64
}

// EncodeCreateCampaign returns the full instruction data for create_campaign.
func EncodeCreateCampaign(a CreateCampaignArgs) ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)
	if err := enc.WriteBytes(KindCreateCampaign.Discriminator().Bytes(), false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(a.Nonce, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(a.GoalAmount, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteInt64(a.Deadline, bin.LE); err != nil {
		return nil, err
	}
	if err := writeString(enc, a.Name); err != nil {
		return nil, err
	}
	if err := writeString(enc, a.Description); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeCreateCampaign parses create_campaign argument bytes.
func DecodeCreateCampaign(args []byte) (CreateCampaignArgs, error) {
	dec := bin.NewBinDecoder(args)
	var (
		a   CreateCampaignArgs
		err error
	)
	if a.Nonce, err = dec.ReadUint64(bin.LE); err != nil {
		return CreateCampaignArgs{}, ErrInvalidInstruction
	}
	if a.GoalAmount, err = dec.ReadUint64(bin.LE); err != nil {
		return CreateCampaignArgs{}, ErrInvalidInstruction
	}
	if a.Deadline, err = dec.ReadInt64(bin.LE); err != nil {
		return CreateCampaignArgs{}, ErrInvalidInstruction
	}
	if a.Name, err = readString(dec, campaign.MaxNameLen); err != nil {
		return CreateCampaignArgs{}, err
	}
	if a.Description, err = readString(dec, campaign.MaxDescriptionLen); err != nil {
		return CreateCampaignArgs{}, err
	}
	if want := 8 + 8 + 8 + 4 + len(a.Name) + 4 + len(a.Description); len(args) != want {
		return CreateCampaignArgs{}, ErrInvalidInstruction
	}
	return a, nil
}

// EncodeContribute returns the full instruction data for contribute.
func EncodeContribute(a ContributeArgs) ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)
	if err := enc.WriteBytes(KindContribute.Discriminator().Bytes(), false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(a.Amount, bin.LE); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeContribute parses contribute argument bytes.
func DecodeContribute(args []byte) (ContributeArgs, error) {
	if len(args) != 8 {
		return ContributeArgs{}, ErrInvalidInstruction
	}
	amount, err := bin.NewBinDecoder(args).ReadUint64(bin.LE)
	if err != nil {
		return ContributeArgs{}, ErrInvalidInstruction
	}
	return ContributeArgs{Amount: amount}, nil
}

// EncodeEmpty returns the instruction data of an argument-less kind.
func EncodeEmpty(k Kind) []byte {
	return append([]byte(nil), k.Discriminator().Bytes()...)
}

// RequireEmpty rejects trailing argument bytes on argument-less kinds.
func RequireEmpty(args []byte) error {
	if len(args) != 0 {
		return ErrInvalidInstruction
	}
	return nil
}

func writeString(enc *bin.Encoder, s string) error {
	if err := enc.WriteUint32(uint32(len(s)), bin.LE); err != nil {
		return err
	}
	return enc.WriteBytes([]byte(s), false)
}

// readString reads a u32-prefixed string. Lengths over max are rejected as
// parameters, not wire errors, so the caller sees InvalidParameters.
func readString(dec *bin.Decoder, max int) (string, error) {
	n, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return "", ErrInvalidInstruction
	}
	if int64(n) > int64(max) {
		return "", campaign.ErrInvalidParameters
	}
	raw, err := dec.ReadBytes(int(n))
	if err != nil {
		return "", ErrInvalidInstruction
	}
	return string(raw), nil
}
