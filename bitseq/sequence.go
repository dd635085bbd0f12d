// Package bitseq defines the bit-packed sequence container that every
// downstream codec, extractor, and hash table operates on.
package bitseq

import (
	"encoding/binary"

	"github.com/grailbio/base/errors"
)

// Sequence is a caller-owned, immutable-by-convention bit-packed byte
// buffer plus an exact bit length. Bit 0 is the most-significant bit of
// Data[0]. Trailing unused bits of the last byte must be zero.
type Sequence struct {
	Data      []byte
	BitLength int
}

// NBytes returns the number of bytes needed to hold BitLength bits.
func (s Sequence) NBytes() int {
	return (s.BitLength + 7) >> 3
}

// Validate checks the structural invariant from : Data is large
// enough for BitLength, and any trailing unused bits of the last byte are
// zero.
func (s Sequence) Validate() error {
	if s.BitLength < 0 {
		return errors.E(errors.Invalid, errors.Errorf("bitseq: negative bit length %d", s.BitLength))
	}
	want := s.NBytes()
	if len(s.Data) < want {
		return errors.E(errors.Invalid, errors.Errorf("bitseq: data too short: have %d bytes, need %d for %d bits", len(s.Data), want, s.BitLength))
	}
	if rem := s.BitLength & 7; rem != 0 && want > 0 {
		mask := byte(0xff) >> uint(rem)
		if s.Data[want-1]&mask != 0 {
			return errors.E(errors.Invalid, errors.Errorf("bitseq: nonzero trailing bits in last byte"))
		}
	}
	return nil
}

// Bit returns the bit at position pos (0 = most significant bit of Data[0]).
// It does not bounds-check pos against BitLength; callers performing direct
// bit extraction (the k-mer extractor) are expected to bound their own loops.
func (s Sequence) Bit(pos int) byte {
	b := s.Data[pos>>3]
	shift := 7 - uint(pos&7)
	return (b >> shift) & 1
}

// wireHeaderLen is the size, in bytes, of the bit-length header that
// prefixes a sequence on the wire.
const wireHeaderLen = 4

// MarshalWire encodes s in the external wire format: a 4-byte big-endian
// bit-length header followed by ⌈BitLength/8⌉ payload bytes, MSB-first
// within each byte. This is consumed as-is from the host database's
// bit-string representation.
func MarshalWire(s Sequence) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	n := s.NBytes()
	out := make([]byte, wireHeaderLen+n)
	binary.BigEndian.PutUint32(out[:wireHeaderLen], uint32(s.BitLength))
	copy(out[wireHeaderLen:], s.Data[:n])
	return out, nil
}

// UnmarshalWire decodes the external wire format produced by MarshalWire.
func UnmarshalWire(wire []byte) (Sequence, error) {
	if len(wire) < wireHeaderLen {
		return Sequence{}, errors.E(errors.Invalid, errors.Errorf("bitseq: wire payload shorter than header (%d bytes)", len(wire)))
	}
	bitLength := int(binary.BigEndian.Uint32(wire[:wireHeaderLen]))
	s := Sequence{Data: wire[wireHeaderLen:], BitLength: bitLength}
	if err := s.Validate(); err != nil {
		return Sequence{}, err
	}
	return Sequence{Data: append([]byte(nil), s.Data[:s.NBytes()]...), BitLength: bitLength}, nil
}
