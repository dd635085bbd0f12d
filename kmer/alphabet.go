package kmer

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/kmersearch/bitseq"
)

// Alphabet identifies which bit-packed encoding a column holds, so that
// shared callers (the analysis engine, the index-key extractor) can pick
// the right extractor without duplicating the dispatch.
type Alphabet int

const (
	DNA2 Alphabet = iota
	DNA4
)

func (a Alphabet) String() string {
	switch a {
	case DNA2:
		return "DNA2"
	case DNA4:
		return "DNA4"
	default:
		return "unknown"
	}
}

// Extract dispatches to ExtractDNA2Kmers or ExtractDNA4KmersExpanded
// depending on alphabet, presenting both under one signature for callers
// that are alphabet-agnostic (highfreq scan workers, indexkey). dna4Cfg is
// ignored for DNA2.
func Extract(seq bitseq.Sequence, k int, alphabet Alphabet, dna4Cfg DNA4Config) (Array, SkippedWindows, error) {
	switch alphabet {
	case DNA2:
		out, err := ExtractDNA2Kmers(seq, k)
		return out, SkippedWindows{}, err
	case DNA4:
		return ExtractDNA4KmersExpanded(seq, k, dna4Cfg)
	default:
		return Array{}, SkippedWindows{}, errors.E(errors.Invalid, errors.Errorf("kmer: unknown alphabet %d", alphabet))
	}
}
