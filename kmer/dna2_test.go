package kmer

import (
	"testing"

	"github.com/grailbio/kmersearch/seqcodec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Bit-layout property (spec §8): DNA2 extraction of "ACGTAC", k=4 (the
// smallest valid k) -> windows ACGT, CGTA, GTAC, each the concatenation of
// their bases' 2-bit codes with the leftmost base highest:
// ACGT=0b00011011=27, CGTA=0b01101100=108, GTAC=0b10110001=177.
func TestExtractDNA2KmersBitLayout(t *testing.T) {
	seq, err := seqcodec.EncodeDNA2([]byte("ACGTAC"))
	require.NoError(t, err)

	out, err := ExtractDNA2Kmers(seq, 4)
	require.NoError(t, err)
	require.Equal(t, 3, out.Len())
	got := make([]uint64, out.Len())
	for i := range got {
		got[i] = out.At(i)
	}
	assert.Equal(t, []uint64{27, 108, 177}, got)
}

func TestExtractDNA2KmersEmptyWhenTooShort(t *testing.T) {
	seq, err := seqcodec.EncodeDNA2([]byte("AC"))
	require.NoError(t, err)
	out, err := ExtractDNA2Kmers(seq, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
}

func TestExtractDNA2KmersRejectsBadK(t *testing.T) {
	seq, _ := seqcodec.EncodeDNA2([]byte("ACGT"))
	_, err := ExtractDNA2Kmers(seq, 2)
	require.Error(t, err)
	_, err = ExtractDNA2Kmers(seq, 33)
	require.Error(t, err)
}

func TestExtractDNA2KmersWidthSelection(t *testing.T) {
	// k=4 -> 8 bits -> Width16; k=9 -> 18 bits -> Width32; k=17 -> 34 bits -> Width64.
	for _, tc := range []struct {
		k int
		w Width
	}{{4, Width16}, {9, Width32}, {17, Width64}} {
		buf := make([]byte, tc.k+5)
		for i := range buf {
			buf[i] = "ACGT"[i%4]
		}
		seq, err := seqcodec.EncodeDNA2(buf)
		require.NoError(t, err)
		out, err := ExtractDNA2Kmers(seq, tc.k)
		require.NoError(t, err)
		assert.Equal(t, tc.w, out.Width)
	}
}

func TestExtractDNA2KmersSingleAllocation(t *testing.T) {
	seq, err := seqcodec.EncodeDNA2([]byte("ACGTACGTACGT"))
	require.NoError(t, err)
	out, err := ExtractDNA2Kmers(seq, 4)
	require.NoError(t, err)
	assert.Equal(t, 9, out.Len())
	assert.NotNil(t, out.U16)
	assert.Nil(t, out.U32)
	assert.Nil(t, out.U64)
}
