// Package kmer implements the bit-level k-mer extractor: direct extraction of k-mer integers from a bit-packed DNA2 or DNA4
// sequence, with no intermediate bit-packed k-mer object constructed, and
// DNA4 IUPAC degenerate-code expansion. It is grounded on fusion/kmer.go's
// kmerizer rolling-integer technique, generalized from ASCII input to
// bitseq.Sequence input and from "one running k-mer" to "a sized output
// array".
package kmer

import "github.com/grailbio/base/errors"

// Width is the integer width used to hold a k-mer or an inverted-index key,
// selected by k.
type Width int

const (
	Width16 Width = 16
	Width32 Width = 32
	Width64 Width = 64
)

// MinK and MaxK bound the supported k-mer length.
const (
	MinK = 4
	MaxK = 32
)

// ValidateK rejects any k outside [MinK, MaxK].
func ValidateK(k int) error {
	if k < MinK || k > MaxK {
		return errors.E(errors.Invalid, errors.Errorf("kmer: k=%d outside supported range [%d, %d]", k, MinK, MaxK))
	}
	return nil
}

// WidthForBits returns the narrowest Width that can hold totalBits.
func WidthForBits(totalBits int) Width {
	switch {
	case totalBits <= 16:
		return Width16
	case totalBits <= 32:
		return Width32
	default:
		return Width64
	}
}

// WidthForK returns the k-mer integer width for a bare k-mer (no occurrence
// bits), i.e. WidthForBits(2*k).
func WidthForK(k int) Width {
	return WidthForBits(2 * k)
}

// KeyWidth returns the width needed for an inverted-index key combining a
// k-mer of length k with occurrenceBitlen occurrence bits: total_bits = 2k + occurrence_bitlen.
func KeyWidth(k, occurrenceBitlen int) Width {
	return WidthForBits(2*k + occurrenceBitlen)
}
