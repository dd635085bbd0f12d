package kmer

import "github.com/grailbio/kmersearch/bitseq"

// ExtractDNA2Kmers reads seq (a DNA2 bit-packed sequence) and returns every
// k-mer of length k as an integer in an Array of width WidthForK(k), in
// strictly left-to-right start-position order. count = max(0,
// baseCount-k+1); the returned Array always has Len() == count (never
// larger), and exactly one allocation is made for it.
//
// The algorithm maintains a rolling integer: for each successive position,
// shift left by 2, OR in the new 2-bit base read directly from seq.Data,
// mask to 2k bits. No intermediate bit-packed k-mer object is constructed.
// This is the direct generalization of
// fusion/kmer.go's kmerizer.Scan() fast path
// (`cur.forward = ((cur.forward<<2)|bits) & mask`) from ASCII input to
// direct bitseq.Sequence bit extraction.
func ExtractDNA2Kmers(seq bitseq.Sequence, k int) (Array, error) {
	if err := ValidateK(k); err != nil {
		return Array{}, err
	}
	baseCount := seq.BitLength / 2
	count := baseCount - k + 1
	if count <= 0 {
		return Array{}, nil
	}
	out := newArray(WidthForK(k), count)
	mask := uint64(1)<<(uint(k)*2) - 1

	var rolling uint64
	// Prime the rolling integer with the first k-1 bases.
	for i := 0; i < k-1; i++ {
		rolling = (rolling << 2) | dna2BasesAt(seq, i)
	}
	for start := 0; start < count; start++ {
		rolling = ((rolling << 2) | dna2BasesAt(seq, start+k-1)) & mask
		out.set(start, rolling)
	}
	return out, nil
}

// dna2BasesAt reads the 2-bit base code at base position pos directly from
// the bit-packed DNA2 payload, bit 0 being the MSB of Data[0].
func dna2BasesAt(seq bitseq.Sequence, pos int) uint64 {
	bitPos := pos * 2
	b := seq.Data[bitPos>>3]
	shift := 6 - uint(bitPos&7)
	return uint64(b>>shift) & 3
}
