// Package indexkey implements the index key extractor: for
// a row's bit-packed column value, it produces a deduplicated list of
// inverted-index keys with saturating occurrence counters, excluding
// high-frequency k-mers found in the supplied cache.
//
// Grounded structurally on fusion/fusion.go's inferGeneRangeInfo
// per-kmer iterate-and-lookup shape ("extract, probe, accumulate");
// grailbio/bio has no inverted-index key concept of its own, so no
// single file there matches the whole operation.
package indexkey

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/kmersearch/bitseq"
	"github.com/grailbio/kmersearch/cache"
	"github.com/grailbio/kmersearch/kmer"
)

// Config mirrors highfreq.Config's style: one struct validated once at
// Extract's entry point, instead of scattering range checks across
// callers.
type Config struct {
	// K is the k-mer length ([4, 32]).
	K int
	// OccurrenceBitlen sizes the occurrence field in emitted keys ([0, 8]).
	OccurrenceBitlen int
	// Alphabet selects DNA2 or DNA4 extraction.
	Alphabet kmer.Alphabet
	// DNA4 overrides the DNA4 window-expansion ceiling; zero value falls
	// back to kmer.DefaultDNA4Config.
	DNA4 kmer.DNA4Config
	// PrecludeHighFreqKmer is preclude_highfreq_kmer: when false, cache
	// probing is skipped entirely.
	PrecludeHighFreqKmer bool
	// ForceUseParallelCache is force_use_parallel_highfreq_kmer_cache:
	// required true when PrecludeHighFreqKmer is true in a parallel index
	// build, checked by ValidateForParallelBuild, not by Validate.
	ForceUseParallelCache bool
}

// Validate rejects a Config outside the ranges this type documents.
func (cfg Config) Validate() error {
	if err := kmer.ValidateK(cfg.K); err != nil {
		return err
	}
	if cfg.OccurrenceBitlen < 0 || cfg.OccurrenceBitlen > 8 {
		return errors.E(errors.Invalid, errors.Errorf("indexkey: occurrence_bitlen=%d outside [0, 8]", cfg.OccurrenceBitlen))
	}
	if cfg.Alphabet != kmer.DNA2 && cfg.Alphabet != kmer.DNA4 {
		return errors.E(errors.Invalid, errors.Errorf("indexkey: target column must be DNA2 or DNA4"))
	}
	return nil
}

// ValidateForParallelBuild additionally rejects the ConfigConflict case:
// preclude_highfreq_kmer enabled without force_use_parallel_
// highfreq_kmer_cache, in a parallel build.
func (cfg Config) ValidateForParallelBuild() error {
	if cfg.PrecludeHighFreqKmer && !cfg.ForceUseParallelCache {
		return errors.E(errors.Precondition, errors.Errorf(
			"indexkey: preclude_highfreq_kmer requires force_use_parallel_highfreq_kmer_cache in parallel builds"))
	}
	return nil
}

// Extract extracts every k-mer of the
// row, filter against hf (when cfg.PrecludeHighFreqKmer), accumulate a
// per-row saturating occurrence count per surviving k-mer, and emit one
// inverted-index key per occurrence ordinal. hf may be nil iff
// cfg.PrecludeHighFreqKmer is false. The returned slice's order is
// unspecified (see kmer.OccurrenceCounter.Keys); callers needing
// determinism should sort it.
func Extract(cfg Config, seq bitseq.Sequence, hf cache.Cache) ([]uint64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.PrecludeHighFreqKmer && hf == nil {
		return nil, errors.E(errors.Precondition, errors.Errorf("indexkey: preclude_highfreq_kmer=true but no cache supplied"))
	}

	arr, skipped, err := kmer.Extract(seq, cfg.K, cfg.Alphabet, cfg.DNA4)
	if err != nil {
		return nil, err
	}
	if skipped.Count > 0 {
		log.Debug.Printf("indexkey: row skipped %d DNA4 windows over expansion ceiling", skipped.Count)
	}

	counter := kmer.NewOccurrenceCounter(cfg.OccurrenceBitlen)
	for i := 0; i < arr.Len(); i++ {
		kmerInt := arr.At(i)
		if cfg.PrecludeHighFreqKmer && hf.Contains(kmerInt) {
			continue
		}
		counter.Add(kmerInt)
	}

	byKmer := counter.Keys()
	out := make([]uint64, 0, len(byKmer))
	for _, keys := range byKmer {
		out = append(out, keys...)
	}
	return out, nil
}
