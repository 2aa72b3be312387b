// Package layout holds the fixed-size record conventions shared by every
// program account and instruction: 8-byte discriminators and padded strings.
package layout

import (
	"crypto/sha256"
	"fmt"
	"unicode/utf8"

	bin "github.com/gagliardetto/binary"
)

// DiscriminatorSize is the length of every record and instruction tag.
const DiscriminatorSize = 8

// Discriminator tags the start of a record or instruction payload.
type Discriminator [DiscriminatorSize]byte

// AccountDiscriminator returns the tag of the account record type name.
func AccountDiscriminator(name string) Discriminator {
	return hashTag("account:" + name)
}

// InstructionDiscriminator returns the tag of the instruction name.
func InstructionDiscriminator(name string) Discriminator {
	return hashTag("global:" + name)
}

func hashTag(preimage string) Discriminator {
	sum := sha256.Sum256([]byte(preimage))
	var d Discriminator
	copy(d[:], sum[:DiscriminatorSize])
	return d
}

// Bytes returns the tag as a slice.
func (d Discriminator) Bytes() []byte {
	return d[:]
}

// StringSize returns the encoded size of a string padded to max bytes.
func StringSize(max int) int {
	return 4 + max
}

// WriteString writes s as a u32 length followed by its bytes padded with
// zeros to max.
func WriteString(enc *bin.Encoder, s string, max int) error {
	if len(s) > max {
		return fmt.Errorf("string length %d exceeds %d", len(s), max)
	}
	if err := enc.WriteUint32(uint32(len(s)), bin.LE); err != nil {
		return err
	}
	padded := make([]byte, max)
	copy(padded, s)
	return enc.WriteBytes(padded, false)
}

// ReadString reads a string written by WriteString.
func ReadString(dec *bin.Decoder, max int) (string, error) {
	n, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return "", err
	}
	padded, err := dec.ReadBytes(max)
	if err != nil {
		return "", err
	}
	if int(n) > max {
		return "", fmt.Errorf("string length %d exceeds %d", n, max)
	}
	if !utf8.Valid(padded[:n]) {
		return "", fmt.Errorf("string is not valid utf-8")
	}
	return string(padded[:n]), nil
}

// ReadBool reads a single byte that must be 0 or 1.
func ReadBool(dec *bin.Decoder) (bool, error) {
	b, err := dec.ReadUint8()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("invalid bool byte %d", b)
	}
}

// WriteBool writes b as a single 0 or 1 byte.
func WriteBool(enc *bin.Encoder, b bool) error {
	if b {
		return enc.WriteUint8(1)
	}
	return enc.WriteUint8(0)
}
