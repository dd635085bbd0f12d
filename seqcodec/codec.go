// Package seqcodec implements the bidirectional DNA<->bit-packed codec:
// DNA2 (2 bits/base, A/C/G/T) and DNA4 (4 bits/base, IUPAC
// degenerate codes). Each operation is dispatched across scalar and
// word-batched tiers the way biosimd dispatches across scalar/SSE2/AVX2;
// see cpudispatch and DESIGN.md for why the upper tiers here are portable
// Go rather than hand-written assembly.
package seqcodec

import (
	"github.com/grailbio/base/errors"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/kmersearch/bitseq"
	"github.com/grailbio/kmersearch/cpudispatch"
)

// EncodeDNA2 maps an ASCII A/C/G/T string (case-insensitive) to a bit-packed
// DNA2 sequence (2 bits/base, 4 bases/byte, big-endian within byte). Any
// other byte is an InvalidInput error.
func EncodeDNA2(ascii []byte) (bitseq.Sequence, error) {
	n := len(ascii)
	data := make([]byte, (n+3)/4)
	tier := cpudispatch.Select(cpudispatch.OpEncodeDNA2, n)
	var ok bool
	switch tier {
	case cpudispatch.Scalar:
		ok = encodeDNA2Scalar(data, ascii)
	default:
		ok = encodeDNA2Wide(data, ascii)
	}
	if !ok {
		return bitseq.Sequence{}, invalidBaseError(ascii, dna2Valid)
	}
	return bitseq.Sequence{Data: data, BitLength: 2 * n}, nil
}

// DecodeDNA2 is the inverse of EncodeDNA2. It panics-free-errors if
// s.BitLength is not divisible by 2.
func DecodeDNA2(s bitseq.Sequence) ([]byte, error) {
	if s.BitLength%2 != 0 {
		return nil, errors.E(errors.Invalid, errors.Errorf("seqcodec: DNA2 bit length %d not divisible by 2", s.BitLength))
	}
	n := s.BitLength / 2
	out := make([]byte, n)
	tier := cpudispatch.Select(cpudispatch.OpDecodeDNA2, n)
	switch tier {
	case cpudispatch.Scalar:
		decodeDNA2Scalar(out, s.Data, n)
	default:
		decodeDNA2Wide(out, s.Data, n)
	}
	return out, nil
}

// EncodeDNA4 maps an ASCII IUPAC string to a bit-packed DNA4 sequence (4
// bits/base, high nibble first, 2 bases/byte).
func EncodeDNA4(ascii []byte) (bitseq.Sequence, error) {
	n := len(ascii)
	data := make([]byte, (n+1)/2)
	tier := cpudispatch.Select(cpudispatch.OpEncodeDNA4, n)
	var ok bool
	switch tier {
	case cpudispatch.Scalar:
		ok = encodeDNA4Scalar(data, ascii)
	default:
		ok = encodeDNA4Wide(data, ascii)
	}
	if !ok {
		return bitseq.Sequence{}, invalidBaseError(ascii, dna4Valid)
	}
	return bitseq.Sequence{Data: data, BitLength: 4 * n}, nil
}

// DecodeDNA4 is the inverse of EncodeDNA4. Bitmap 0 (no base set) is an
// InvalidInput error, as is a bit length not divisible by 4.
func DecodeDNA4(s bitseq.Sequence) ([]byte, error) {
	if s.BitLength%4 != 0 {
		return nil, errors.E(errors.Invalid, errors.Errorf("seqcodec: DNA4 bit length %d not divisible by 4", s.BitLength))
	}
	n := s.BitLength / 4
	out := make([]byte, n)
	tier := cpudispatch.Select(cpudispatch.OpDecodeDNA4, n)
	var err error
	switch tier {
	case cpudispatch.Scalar:
		err = decodeDNA4Scalar(out, s.Data, n)
	default:
		err = decodeDNA4Wide(out, s.Data, n)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeDNA2String is DecodeDNA2 with a zero-copy string view of the result,
// for callers (e.g. logging, the kmerizer-style consumers in package kmer)
// that only read the bytes.
func DecodeDNA2String(s bitseq.Sequence) (string, error) {
	b, err := DecodeDNA2(s)
	if err != nil {
		return "", err
	}
	return gunsafe.BytesToString(b), nil
}

// DecodeDNA4String is the DNA4 analogue of DecodeDNA2String.
func DecodeDNA4String(s bitseq.Sequence) (string, error) {
	b, err := DecodeDNA4(s)
	if err != nil {
		return "", err
	}
	return gunsafe.BytesToString(b), nil
}

func invalidBaseError(ascii []byte, valid [256]bool) error {
	for i, ch := range ascii {
		if !valid[ch] {
			return errors.E(errors.Invalid, errors.Errorf("seqcodec: invalid base %q at position %d", ch, i))
		}
	}
	return errors.E(errors.Invalid, errors.New("seqcodec: invalid base"))
}
