package seqcodec

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/grailbio/kmersearch/bitseq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 1: DNA2 encode of "ACGT" -> 1-byte payload 0x1B.
func TestEncodeDNA2Scenario1(t *testing.T) {
	s, err := EncodeDNA2([]byte("ACGT"))
	require.NoError(t, err)
	assert.Equal(t, 8, s.BitLength)
	assert.Equal(t, []byte{0x1B}, s.Data)

	back, err := DecodeDNA2(s)
	require.NoError(t, err)
	assert.Equal(t, "ACGT", string(back))
}

func TestEncodeDNA2Lowercase(t *testing.T) {
	s, err := EncodeDNA2([]byte("acgt"))
	require.NoError(t, err)
	back, err := DecodeDNA2(s)
	require.NoError(t, err)
	assert.Equal(t, "ACGT", string(back), "decode always produces uppercase")
}

func TestEncodeDNA2InvalidBase(t *testing.T) {
	_, err := EncodeDNA2([]byte("ACGN"))
	require.Error(t, err)
}

func TestDecodeDNA2BadBitLength(t *testing.T) {
	_, err := DecodeDNA2(mkSeq([]byte{0xff}, 7))
	require.Error(t, err)
}

func TestDNA2RoundTripRandom(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	alphabet := "ACGTacgt"
	for trial := 0; trial < 200; trial++ {
		n := r.Intn(2000)
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = alphabet[r.Intn(len(alphabet))]
		}
		s, err := EncodeDNA2(buf)
		require.NoError(t, err)
		back, err := DecodeDNA2(s)
		require.NoError(t, err)
		assert.Equal(t, strings.ToUpper(string(buf)), string(back))

		// encode(decode(b)) == b
		reenc, err := EncodeDNA2(back)
		require.NoError(t, err)
		assert.Equal(t, s, reenc)
	}
}

// DNA2 scalar/wide tiers must be byte-identical.
func TestDNA2ScalarVsWideDifferential(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	alphabet := "ACGT"
	for _, n := range []int{0, 1, 3, 4, 7, 8, 15, 16, 31, 32, 100, 2000} {
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = alphabet[r.Intn(len(alphabet))]
		}
		scalarDst := make([]byte, (n+3)/4)
		wideDst := make([]byte, (n+3)/4)
		okS := encodeDNA2Scalar(scalarDst, buf)
		okW := encodeDNA2Wide(wideDst, buf)
		require.True(t, okS)
		require.True(t, okW)
		assert.True(t, bytes.Equal(scalarDst, wideDst), "n=%d", n)

		declareS := make([]byte, n)
		declareW := make([]byte, n)
		decodeDNA2Scalar(declareS, scalarDst, n)
		decodeDNA2Wide(declareW, wideDst, n)
		assert.True(t, bytes.Equal(declareS, declareW), "decode n=%d", n)
	}
}

func TestEncodeDNA4IUPAC(t *testing.T) {
	s, err := EncodeDNA4([]byte("ACGTMRWSYKVHDBN"))
	require.NoError(t, err)
	back, err := DecodeDNA4(s)
	require.NoError(t, err)
	assert.Equal(t, "ACGTMRWSYKVHDBN", string(back))
}

func TestDecodeDNA4ZeroBitmapIsError(t *testing.T) {
	_, err := DecodeDNA4(mkSeq([]byte{0x00}, 8))
	require.Error(t, err)
}

func TestDNA4ScalarVsWideDifferential(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	alphabet := "ACGTMRWSYKVHDBN"
	for _, n := range []int{0, 1, 3, 8, 9, 17, 64, 513} {
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = alphabet[r.Intn(len(alphabet))]
		}
		scalarDst := make([]byte, (n+1)/2)
		wideDst := make([]byte, (n+1)/2)
		require.True(t, encodeDNA4Scalar(scalarDst, buf))
		require.True(t, encodeDNA4Wide(wideDst, buf))
		assert.True(t, bytes.Equal(scalarDst, wideDst), "n=%d", n)
	}
}

func mkSeq(data []byte, bitLength int) bitseq.Sequence {
	return bitseq.Sequence{Data: data, BitLength: bitLength}
}
