// Package highfreq implements the high-frequency k-mer analysis engine:
// a parallel scan of a relation's DNA column, a per-worker in-memory
// batch aggregator flushed into per-worker on-disk shards (package
// hashfile), a pairwise parallel merge tree, and a threshold filter
// producing the final high-frequency k-mer set.
//
// Grounded on markduplicates.Mark's fixed-size worker pool
// (mark_duplicates.go's shardChannel/sync.WaitGroup) and
// fusion/gene_db.go's registerKmer sharded-aggregation pattern, combined
// with an atomic fetch-add cursor (cursor.go) in place of a pre-filled
// channel.
package highfreq

import (
	"math"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/kmersearch/bitseq"
	"github.com/grailbio/kmersearch/kmer"
)

// Config mirrors fusion.Opts/DefaultOpts's pattern: a plain
// struct plus a package-level default, validated once at Analyze's entry
// point. Every field corresponds to a configuration knob.
type Config struct {
	// KmerSize is k (integer in [4, 32]).
	KmerSize int
	// OccurrenceBitlen sizes the reserved occurrence field so that analysis
	// and index-key extraction agree on key width. Occurrence bits are always zero during analysis.
	OccurrenceBitlen int
	// Alphabet selects DNA2 or DNA4 extraction for the target column.
	Alphabet kmer.Alphabet
	// DNA4 overrides the window-expansion ceiling for DNA4 columns; the
	// zero value falls back to kmer.DefaultDNA4Config.
	DNA4 kmer.DNA4Config

	// HighFreqMaxRate is max_rate: float in (0, 1].
	HighFreqMaxRate float64
	// HighFreqMaxNrow is max_nrow: non-negative integer.
	HighFreqMaxNrow uint64
	// BatchSize bounds the in-memory per-worker aggregate by distinct-key
	// count before it is flushed to the worker's shard.
	BatchSize int
	// HashTableSizeHint sizes the chained hashfile variants' bucket
	// directory.
	HashTableSizeHint int
	// WorkerCount is analysis_worker_count: 0 means coordinator-only (a
	// single synchronous worker).
	WorkerCount int
	// MergeWorkerCount bounds how many merge workers run concurrently
	// during the pairwise merge phase; 0 defaults to WorkerCount (or 1 if
	// that is also 0), reusing the scan workers post-scan.
	MergeWorkerCount int
	// TempDir is the temp-tablespace directory shards are created in.
	TempDir string

	// RelationID and Column identify the scanned relation/column for the
	// persistent High-Frequency Set key.
	RelationID string
	Column     string
}

// DefaultConfig sets conservative defaults for every knob except the
// relation/column identity and temp directory, which callers must supply.
var DefaultConfig = Config{
	KmerSize:          16,
	OccurrenceBitlen:  2,
	Alphabet:          kmer.DNA2,
	HighFreqMaxRate:   0.01,
	HighFreqMaxNrow:   1_000_000,
	BatchSize:         1 << 16,
	HashTableSizeHint: 1 << 20,
	WorkerCount:       4,
	MergeWorkerCount:  0,
}

// Validate rejects a Config outside the ranges this type documents.
// ConfigConflict errors here are detected at Analyze's entry point.
func (c Config) Validate() error {
	if err := kmer.ValidateK(c.KmerSize); err != nil {
		return err
	}
	if c.OccurrenceBitlen < 0 || c.OccurrenceBitlen > 8 {
		return errors.E(errors.Invalid, errors.Errorf("highfreq: occurrence_bitlen=%d outside [0, 8]", c.OccurrenceBitlen))
	}
	if c.HighFreqMaxRate <= 0 || c.HighFreqMaxRate > 1 {
		return errors.E(errors.Invalid, errors.Errorf("highfreq: highfreq_max_rate=%v outside (0, 1]", c.HighFreqMaxRate))
	}
	if c.BatchSize <= 0 {
		return errors.E(errors.Invalid, errors.Errorf("highfreq: highfreq_analysis_batch_size must be positive, got %d", c.BatchSize))
	}
	if c.HashTableSizeHint <= 0 {
		return errors.E(errors.Invalid, errors.Errorf("highfreq: highfreq_analysis_hashtable_size must be positive, got %d", c.HashTableSizeHint))
	}
	if c.WorkerCount < 0 {
		return errors.E(errors.Invalid, errors.Errorf("highfreq: analysis_worker_count must be non-negative, got %d", c.WorkerCount))
	}
	if c.Alphabet != kmer.DNA2 && c.Alphabet != kmer.DNA4 {
		return errors.E(errors.Invalid, errors.Errorf("highfreq: target column must be DNA2 or DNA4"))
	}
	return nil
}

// keyWidth returns the key width analysis and index-build agree on, per
// "key width policy": total_bits = 2k + occurrence_bitlen.
func (c Config) keyWidth() kmer.Width {
	return kmer.KeyWidth(c.KmerSize, c.OccurrenceBitlen)
}

// Threshold returns the appearance-count threshold for a relation with
// totalRows rows: min(max_nrow, ceil(total_rows * max_rate)).
func (c Config) Threshold(totalRows int) uint64 {
	byRate := uint64(math.Ceil(float64(totalRows) * c.HighFreqMaxRate))
	if c.HighFreqMaxNrow < byRate {
		return c.HighFreqMaxNrow
	}
	return byRate
}

// Entry is one row of the persistent High-Frequency Set:
// a kmer integer whose appearance_nrow exceeded the run's threshold.
type Entry struct {
	KmerInt        uint64
	AppearanceNrow uint64
	Reason         string
}

// RelationScanner is the narrow interface standing in for the host
// database's heap-scan/SPI machinery. A real Postgres-extension binding implements this
// against the storage manager; this module supplies only in-memory
// reference implementations (memstore.go) for tests.
type RelationScanner interface {
	// BlockCount returns the number of independently-assignable blocks.
	BlockCount() int
	// TotalRows returns the relation's total row count, used for the
	// rate-based threshold.
	TotalRows() int
	// ScanBlock returns the DNA column's bit-packed value for every row of
	// the given block. Exactly one worker calls this for any given
	// blockID.
	ScanBlock(blockID int) ([]Row, error)
}

// Row is one relation row's DNA column value, as delivered by ScanBlock.
type Row struct {
	Sequence bitseq.Sequence
}

// HighFreqStore is the narrow interface standing in for the persistent
// High-Frequency Set table. Replace is called exactly once, at the end of
// a successful run, with the complete entry set, updated transactionally
// by the coordinator; partial results are never exposed.
type HighFreqStore interface {
	Replace(relationID, column string, k int, entries []Entry) error
}
