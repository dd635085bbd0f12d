package highfreq

import (
	"testing"

	"github.com/grailbio/kmersearch/bitseq"
	"github.com/grailbio/kmersearch/kmer"
	"github.com/grailbio/kmersearch/seqcodec"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeAll(t *testing.T, strs ...string) []bitseq.Sequence {
	t.Helper()
	out := make([]bitseq.Sequence, 0, len(strs))
	for _, s := range strs {
		seq, err := seqcodec.EncodeDNA2([]byte(s))
		require.NoError(t, err)
		out = append(out, seq)
	}
	return out
}

// Scenario 4: a k-mer appearing in 3 of 4 rows crosses a
// threshold of 2; a k-mer unique to one row does not.
func TestAnalyzeEmitsOverThreshold(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	rel := &MemRelation{
		BlockSize: 1,
		Rows:      encodeAll(t, "AAAA", "AAAA", "AAAA", "CCCC"),
	}

	cfg := DefaultConfig
	cfg.KmerSize = 4
	cfg.OccurrenceBitlen = 0
	cfg.Alphabet = kmer.DNA2
	cfg.HighFreqMaxRate = 1.0
	cfg.HighFreqMaxNrow = 2
	cfg.BatchSize = 1
	cfg.WorkerCount = 2
	cfg.TempDir = dir
	cfg.RelationID = "rel1"
	cfg.Column = "seq"

	store := NewMemStore()
	require.NoError(t, Analyze(cfg, rel, store))

	entries := store.Entries[memKey("rel1", "seq")]
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(0), entries[0].KmerInt) // "AAAA" packs to 0.
	assert.Equal(t, uint64(3), entries[0].AppearanceNrow)
	assert.NotEmpty(t, entries[0].Reason)
}

func TestAnalyzeRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig
	cfg.KmerSize = 2 // below kmer.MinK
	rel := &MemRelation{}
	store := NewMemStore()
	require.Error(t, Analyze(cfg, rel, store))
}

func TestAnalyzeEmptyRelation(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	cfg := DefaultConfig
	cfg.TempDir = dir
	cfg.WorkerCount = 2
	cfg.RelationID = "empty"
	cfg.Column = "seq"
	rel := &MemRelation{BlockSize: 1}
	store := NewMemStore()
	require.NoError(t, Analyze(cfg, rel, store))
	assert.Empty(t, store.Entries[memKey("empty", "seq")])
}

// Aggregation correctness: appearance_nrow is independent of
// worker count and batch size.
func TestAnalyzeAggregationIndependentOfWorkersAndBatch(t *testing.T) {
	dir1, cleanup1 := testutil.TempDir(t, "", "")
	defer cleanup1()
	dir2, cleanup2 := testutil.TempDir(t, "", "")
	defer cleanup2()

	rows := encodeAll(t, "ACGT", "ACGT", "TTTT", "ACGT", "GGGG", "TTTT")

	run := func(dir string, workers, batch int) map[uint64]uint64 {
		rel := &MemRelation{BlockSize: 1, Rows: append([]bitseq.Sequence(nil), rows...)}
		cfg := DefaultConfig
		cfg.KmerSize = 4
		cfg.HighFreqMaxRate = 0.0001
		cfg.HighFreqMaxNrow = 0 // threshold floors to 0: every k-mer with appearance_nrow > 0 is emitted.
		cfg.BatchSize = batch
		cfg.WorkerCount = workers
		cfg.TempDir = dir
		cfg.RelationID = "r"
		cfg.Column = "c"
		store := NewMemStore()
		require.NoError(t, Analyze(cfg, rel, store))
		out := map[uint64]uint64{}
		for _, e := range store.Entries[memKey("r", "c")] {
			out[e.KmerInt] = e.AppearanceNrow
		}
		return out
	}

	got1 := run(dir1, 1, 1000)
	got4 := run(dir2, 4, 1)
	assert.Equal(t, got1, got4)
	assert.Equal(t, uint64(3), got1[27]) // "ACGT" = 0b00011011 = 27; appears in 3 rows.
}
