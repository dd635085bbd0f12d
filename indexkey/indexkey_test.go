package indexkey

import (
	"testing"

	"github.com/grailbio/kmersearch/cache"
	"github.com/grailbio/kmersearch/kmer"
	"github.com/grailbio/kmersearch/seqcodec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 5: cache contains X; a row containing {X, Y, Y}
// with occurrence_bitlen=2 emits keys only for Y, with occurrence
// ordinals {0, 1}.
func TestExtractFiltersHighFrequencyKmer(t *testing.T) {
	// "ACACAC", k=4 -> windows [Y=17, X=68, Y=17].
	seq, err := seqcodec.EncodeDNA2([]byte("ACACAC"))
	require.NoError(t, err)

	hf := cache.NewMapCache([]uint64{68}) // X=68 is high-frequency.
	cfg := Config{K: 4, OccurrenceBitlen: 2, Alphabet: kmer.DNA2, PrecludeHighFreqKmer: true}

	keys, err := Extract(cfg, seq, hf)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{
		kmer.PackIndexKey(17, 0, 2),
		kmer.PackIndexKey(17, 1, 2),
	}, keys)
}

func TestExtractWithoutPrecludeSkipsCacheEntirely(t *testing.T) {
	seq, err := seqcodec.EncodeDNA2([]byte("AAAAAA")) // k=4 -> 3 identical windows, all 0.
	require.NoError(t, err)

	cfg := Config{K: 4, OccurrenceBitlen: 2, Alphabet: kmer.DNA2, PrecludeHighFreqKmer: false}
	keys, err := Extract(cfg, seq, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{
		kmer.PackIndexKey(0, 0, 2),
		kmer.PackIndexKey(0, 1, 2),
		kmer.PackIndexKey(0, 2, 2),
	}, keys)
}

func TestExtractRequiresCacheWhenPrecludeTrue(t *testing.T) {
	seq, err := seqcodec.EncodeDNA2([]byte("AAAAAA"))
	require.NoError(t, err)
	cfg := Config{K: 4, OccurrenceBitlen: 2, Alphabet: kmer.DNA2, PrecludeHighFreqKmer: true}
	_, err = Extract(cfg, seq, nil)
	require.Error(t, err)
}

// Saturating occurrence: a k-mer appearing n times emits
// exactly min(n, 2^occurrence_bitlen) keys, ordinals 0..min(n-1, max-1).
func TestExtractSaturatesOccurrence(t *testing.T) {
	// "AAAAAAAAA" (9 bases), k=4 -> 6 identical windows of "AAAA"=0.
	seq, err := seqcodec.EncodeDNA2([]byte("AAAAAAAAA"))
	require.NoError(t, err)
	cfg := Config{K: 4, OccurrenceBitlen: 2, Alphabet: kmer.DNA2} // max ordinal = 3 (2^2-1).
	keys, err := Extract(cfg, seq, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{
		kmer.PackIndexKey(0, 0, 2),
		kmer.PackIndexKey(0, 1, 2),
		kmer.PackIndexKey(0, 2, 2),
		kmer.PackIndexKey(0, 3, 2),
	}, keys)
}

func TestExtractZeroOccurrenceBitlenEmitsBareKmer(t *testing.T) {
	seq, err := seqcodec.EncodeDNA2([]byte("ACGT"))
	require.NoError(t, err)
	cfg := Config{K: 4, OccurrenceBitlen: 0, Alphabet: kmer.DNA2}
	keys, err := Extract(cfg, seq, nil)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, uint64(0b00011011), keys[0]) // bare k-mer, no occurrence field.
}

func TestValidateForParallelBuildRejectsConflict(t *testing.T) {
	cfg := Config{K: 4, Alphabet: kmer.DNA2, PrecludeHighFreqKmer: true, ForceUseParallelCache: false}
	require.Error(t, cfg.ValidateForParallelBuild())
	cfg.ForceUseParallelCache = true
	require.NoError(t, cfg.ValidateForParallelBuild())
}
