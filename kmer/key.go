package kmer

// PackIndexKey bit-packs a k-mer integer and an occurrence ordinal into a
// single inverted-index key ("ngram key"); its bit layout,
// MSB-first, is the 2k k-mer bits followed by occurrence_bitlen occurrence
// bits — i.e. `(kmerInt << occurrenceBitlen) | occurrenceOrdinal`. When
// occurrenceBitlen is 0, the key is the bare k-mer. occurrenceOrdinal must
// already be saturated by the caller (see OccurrenceCounter); PackIndexKey
// does not re-clamp it.
func PackIndexKey(kmerInt uint64, occurrenceOrdinal uint8, occurrenceBitlen int) uint64 {
	return (kmerInt << uint(occurrenceBitlen)) | uint64(occurrenceOrdinal)
}

// MaxOccurrenceOrdinal returns the saturation ceiling (2^occurrenceBitlen - 1)
// for a given occurrence field width.
func MaxOccurrenceOrdinal(occurrenceBitlen int) uint8 {
	if occurrenceBitlen <= 0 {
		return 0
	}
	return uint8(1<<uint(occurrenceBitlen) - 1)
}

// OccurrenceCounter tracks, per distinct k-mer within a single row, how many
// times it has been seen, saturating the stored count at 1<<occurrenceBitlen
// (the number of representable ordinals) rather than at MaxOccurrenceOrdinal
// — one short of it would drop the top ordinal entirely. It is scoped to one
// row's worth of k-mers and is not safe for concurrent use.
type OccurrenceCounter struct {
	bitlen int
	cap    uint16
	counts map[uint64]uint16
}

// NewOccurrenceCounter returns a counter for the given occurrence field width.
func NewOccurrenceCounter(occurrenceBitlen int) *OccurrenceCounter {
	return &OccurrenceCounter{
		bitlen: occurrenceBitlen,
		cap:    uint16(1) << uint(occurrenceBitlen),
		counts: make(map[uint64]uint16),
	}
}

// Add records one more occurrence of kmerInt and returns the occurrence
// ordinal just assigned to it (0-based), saturating at cap-1 once the
// field width's representable ordinals are exhausted.
func (c *OccurrenceCounter) Add(kmerInt uint64) uint8 {
	n := c.counts[kmerInt]
	if n < c.cap {
		n++
		c.counts[kmerInt] = n
	}
	return uint8(n - 1)
}

// Keys returns, for every distinct k-mer observed, the index keys for
// occurrence ordinals 0..count-1. Iteration order over distinct k-mers
// is unspecified; callers requiring determinism should sort by kmer integer.
func (c *OccurrenceCounter) Keys() map[uint64][]uint64 {
	out := make(map[uint64][]uint64, len(c.counts))
	for kmerInt, count := range c.counts {
		keys := make([]uint64, 0, count)
		for ord := uint16(0); ord < count; ord++ {
			keys = append(keys, PackIndexKey(kmerInt, uint8(ord), c.bitlen))
		}
		out[kmerInt] = keys
	}
	return out
}
