package kmer

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/kmersearch/bitseq"
	"github.com/grailbio/kmersearch/seqcodec"
)

// DefaultMaxWindowExpansions is the window-expansion ceiling chosen here:
// the full 4^4 reading of "conservative allocation" for a k-mer window
// with every position fully degenerate, not a small literal cap.
const DefaultMaxWindowExpansions = 256

// DNA4Config controls ExtractDNA4KmersExpanded's overflow policy.
type DNA4Config struct {
	// MaxWindowExpansions bounds the Cartesian-product size of a single
	// k-mer window; a window whose expansion count exceeds this is skipped
	// entirely, not truncated.
	MaxWindowExpansions int
}

// DefaultDNA4Config is DNA4Config{MaxWindowExpansions: DefaultMaxWindowExpansions}.
var DefaultDNA4Config = DNA4Config{MaxWindowExpansions: DefaultMaxWindowExpansions}

// SkippedWindows counts, per extraction call, how many windows were dropped
// for exceeding MaxWindowExpansions: non-fatal, recorded rather than
// surfaced as an error.
type SkippedWindows struct {
	Count int
}

// ExtractDNA4KmersExpanded reads seq (a DNA4 bit-packed sequence) and
// returns every concrete {A,C,G,T} k-mer consistent with each window's
// IUPAC codes, via the Cartesian product over the window's per-position
// base sets. Emission order: positions vary outermost (leftmost position
// slowest), and within a position the base order is A,C,G,T. Windows are
// processed left to right; a window's own expansions are contiguous in
// the output.
//
// Grounded on fusion/kmer.go's kmerizer window-scan structure, generalized
// from a single rolling k-mer to a per-window cross-product buffer that
// regrows (via a reused scratch slice, the same discipline kmerizer.Scan()
// uses for its tmpSeq buffer) as the window's expansion count varies.
func ExtractDNA4KmersExpanded(seq bitseq.Sequence, k int, cfg DNA4Config) (Array, SkippedWindows, error) {
	if err := ValidateK(k); err != nil {
		return Array{}, SkippedWindows{}, err
	}
	if cfg.MaxWindowExpansions <= 0 {
		cfg.MaxWindowExpansions = DefaultMaxWindowExpansions
	}
	baseCount := seq.BitLength / 4
	nWindows := baseCount - k + 1
	if nWindows <= 0 {
		return Array{}, SkippedWindows{}, nil
	}

	width := WidthForK(k)
	// Pass 1: determine per-window expansion sets and total output size, so
	// the final array can be allocated exactly once.
	windowBases := make([][]uint8, nWindows) // windowBases[w][p] = bitmap at position p of window w
	for w := 0; w < nWindows; w++ {
		bitmaps := make([]uint8, k)
		for p := 0; p < k; p++ {
			bitmaps[p] = dna4BitmapAt(seq, w+p)
		}
		windowBases[w] = bitmaps
	}

	total := 0
	skipped := 0
	windowCounts := make([]int, nWindows)
	for w, bitmaps := range windowBases {
		product := 1
		overflowed := false
		for _, bm := range bitmaps {
			n := len(seqcodec.BaseExpansions(bm))
			if n == 0 {
				overflowed = true // bitmap 0 is invalid; treat as unexpandable
				break
			}
			product *= n
			if product > cfg.MaxWindowExpansions {
				overflowed = true
				break
			}
		}
		if overflowed {
			windowCounts[w] = -1
			skipped++
			continue
		}
		windowCounts[w] = product
		total += product
	}

	out := newArray(width, total)
	if skipped > 0 {
		log.Debug.Printf("kmer: skipped %d/%d DNA4 windows exceeding MaxWindowExpansions=%d", skipped, nWindows, cfg.MaxWindowExpansions)
	}

	// Pass 2: fill, one window at a time, via iterative cross-product. The
	// two scratch buffers are allocated once per call, sized to
	// MaxWindowExpansions, and swapped between positions (filled via
	// append, never reallocated per k-mer or per window).
	prefixes := make([]uint64, 0, cfg.MaxWindowExpansions)
	next := make([]uint64, 0, cfg.MaxWindowExpansions)
	outIdx := 0
	for w, bitmaps := range windowBases {
		if windowCounts[w] < 0 {
			continue
		}
		prefixes = append(prefixes[:0], 0)
		for _, bm := range bitmaps {
			bases := seqcodec.BaseExpansions(bm)
			next = next[:0]
			for _, prefix := range prefixes {
				for _, b := range bases {
					next = append(next, (prefix<<2)|uint64(b))
				}
			}
			prefixes, next = next, prefixes
		}
		for _, v := range prefixes {
			out.set(outIdx, v)
			outIdx++
		}
	}
	return out, SkippedWindows{Count: skipped}, nil
}

func dna4BitmapAt(seq bitseq.Sequence, pos int) uint8 {
	bitPos := pos * 4
	b := seq.Data[bitPos>>3]
	if bitPos&7 == 0 {
		return b >> 4
	}
	return b & 0xf
}
