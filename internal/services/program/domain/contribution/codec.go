package contribution

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"
	"github.com/louisbranch/crowdfund/internal/services/program/domain/layout"
)

// Discriminator tags Contribution records.
var Discriminator = layout.AccountDiscriminator("Contribution")

// Size is the fixed encoded size of a Contribution record.
const Size = layout.DiscriminatorSize + 32 + 32 + 8 + 1 + 1 + 8 + 1

// Encode serializes s into a Size-byte record.
func Encode(s State) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, Size))
	enc := bin.NewBinEncoder(buf)

	var err error
	write := func(fn func() error) {
		if err == nil {
			err = fn()
		}
	}
	write(func() error { return enc.WriteBytes(Discriminator.Bytes(), false) })
	write(func() error { return enc.WriteBytes(s.Campaign.Bytes(), false) })
	write(func() error { return enc.WriteBytes(s.Contributor.Bytes(), false) })
	write(func() error { return enc.WriteUint64(s.Amount, bin.LE) })
	write(func() error { return layout.WriteBool(enc, s.Refunded) })
	write(func() error { return layout.WriteBool(enc, s.Claimed) })
	write(func() error { return enc.WriteUint64(s.CampaignSlot, bin.LE) })
	write(func() error { return enc.WriteUint8(s.Bump) })
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidParameters, "encode contribution", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a Contribution record.
func Decode(data []byte) (State, error) {
	if len(data) != Size || !bytes.HasPrefix(data, Discriminator.Bytes()) {
		return State{}, ErrInvalidRecord
	}
	dec := bin.NewBinDecoder(data[layout.DiscriminatorSize:])

	var s State
	campaignKey, err := dec.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return State{}, decodeErr(err)
	}
	s.Campaign = solana.PublicKeyFromBytes(campaignKey)
	contributorKey, err := dec.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return State{}, decodeErr(err)
	}
	s.Contributor = solana.PublicKeyFromBytes(contributorKey)
	if s.Amount, err = dec.ReadUint64(bin.LE); err != nil {
		return State{}, decodeErr(err)
	}
	if s.Refunded, err = layout.ReadBool(dec); err != nil {
		return State{}, decodeErr(err)
	}
	if s.Claimed, err = layout.ReadBool(dec); err != nil {
		return State{}, decodeErr(err)
	}
	if s.CampaignSlot, err = dec.ReadUint64(bin.LE); err != nil {
		return State{}, decodeErr(err)
	}
	if s.Bump, err = dec.ReadUint8(); err != nil {
		return State{}, decodeErr(err)
	}
	return s, nil
}

func decodeErr(err error) error {
	return apperrors.Wrap(apperrors.CodeInvalidAccount, "decode contribution", err)
}
