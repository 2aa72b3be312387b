package campaign

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/layout"
)

// Discriminator tags Campaign records.
var Discriminator = layout.AccountDiscriminator("Campaign")

// Size is the fixed encoded size of a Campaign record.
var Size = layout.DiscriminatorSize +
	32 + // owner
	8 + // nonce
	8 + // goal_amount
	8 + // deadline
	8 + // total_raised
	8 + // total_refunded
	4 + // contributor_count
	1 + // status
	1 + // bump
	1 + // escrow_bump
	8 + // created_slot
	layout.StringSize(MaxNameLen) +
	layout.StringSize(MaxDescriptionLen)

// Encode serializes s into a Size-byte record.
func Encode(s State) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, Size))
	enc := bin.NewBinEncoder(buf)

	steps := []func() error{
		func() error { return enc.WriteBytes(Discriminator.Bytes(), false) },
		func() error { return enc.WriteBytes(s.Owner.Bytes(), false) },
		func() error { return enc.WriteUint64(s.Nonce, bin.LE) },
		func() error { return enc.WriteUint64(s.GoalAmount, bin.LE) },
		func() error { return enc.WriteInt64(s.Deadline, bin.LE) },
		func() error { return enc.WriteUint64(s.TotalRaised, bin.LE) },
		func() error { return enc.WriteUint64(s.TotalRefunded, bin.LE) },
		func() error { return enc.WriteUint32(s.ContributorCount, bin.LE) },
		func() error { return enc.WriteUint8(uint8(s.Status)) },
		func() error { return enc.WriteUint8(s.Bump) },
		func() error { return enc.WriteUint8(s.EscrowBump) },
		func() error { return enc.WriteUint64(s.CreatedSlot, bin.LE) },
		func() error { return layout.WriteString(enc, s.Name, MaxNameLen) },
		func() error { return layout.WriteString(enc, s.Description, MaxDescriptionLen) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInvalidParameters, "encode campaign", err)
		}
	}
	return buf.Bytes(), nil
}

// Decode parses a Campaign record.
func Decode(data []byte) (State, error) {
	if len(data) != Size || !bytes.HasPrefix(data, Discriminator.Bytes()) {
		return State{}, ErrInvalidRecord
	}
	dec := bin.NewBinDecoder(data[layout.DiscriminatorSize:])

	var s State
	owner, err := dec.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return State{}, decodeErr(err)
	}
	s.Owner = solana.PublicKeyFromBytes(owner)
	if s.Nonce, err = dec.ReadUint64(bin.LE); err != nil {
		return State{}, decodeErr(err)
	}
	if s.GoalAmount, err = dec.ReadUint64(bin.LE); err != nil {
		return State{}, decodeErr(err)
	}
	if s.Deadline, err = dec.ReadInt64(bin.LE); err != nil {
		return State{}, decodeErr(err)
	}
	if s.TotalRaised, err = dec.ReadUint64(bin.LE); err != nil {
		return State{}, decodeErr(err)
	}
	if s.TotalRefunded, err = dec.ReadUint64(bin.LE); err != nil {
		return State{}, decodeErr(err)
	}
	if s.ContributorCount, err = dec.ReadUint32(bin.LE); err != nil {
		return State{}, decodeErr(err)
	}
	status, err := dec.ReadUint8()
	if err != nil {
		return State{}, decodeErr(err)
	}
	s.Status = Status(status)
	if !s.Status.Valid() {
		return State{}, ErrInvalidRecord
	}
	if s.Bump, err = dec.ReadUint8(); err != nil {
		return State{}, decodeErr(err)
	}
	if s.EscrowBump, err = dec.ReadUint8(); err != nil {
		return State{}, decodeErr(err)
	}
	if s.CreatedSlot, err = dec.ReadUint64(bin.LE); err != nil {
		return State{}, decodeErr(err)
	}
	if s.Name, err = layout.ReadString(dec, MaxNameLen); err != nil {
		return State{}, decodeErr(err)
	}
	if s.Description, err = layout.ReadString(dec, MaxDescriptionLen); err != nil {
		return State{}, decodeErr(err)
	}
	return s, nil
}

func decodeErr(err error) error {
	return apperrors.Wrap(apperrors.CodeInvalidAccount, "decode campaign", err)
}
