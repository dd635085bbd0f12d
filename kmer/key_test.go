package kmer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackIndexKeyBareWhenZeroBitlen(t *testing.T) {
	assert.Equal(t, uint64(42), PackIndexKey(42, 0, 0))
}

func TestPackIndexKeyLayout(t *testing.T) {
	// kmer=0b101 (k=... irrelevant here), occurrence_bitlen=2, ordinal=0b11.
	got := PackIndexKey(0b101, 0b11, 2)
	assert.Equal(t, uint64(0b10111), got)
}

func TestMaxOccurrenceOrdinal(t *testing.T) {
	assert.Equal(t, uint8(0), MaxOccurrenceOrdinal(0))
	assert.Equal(t, uint8(3), MaxOccurrenceOrdinal(2))
	assert.Equal(t, uint8(255), MaxOccurrenceOrdinal(8))
}

// Scenario 5: cache contains X; row has {X, Y, Y},
// occurrence_bitlen=2 -> keys only for Y, ordinals {0, 1}.
func TestOccurrenceCounterSaturatingScenario5(t *testing.T) {
	const x, y = uint64(100), uint64(200)
	c := NewOccurrenceCounter(2)
	// Simulates the extractor: X is cache-filtered before reaching the
	// counter, so only Y's two occurrences are recorded here.
	assert.Equal(t, uint8(0), c.Add(y))
	assert.Equal(t, uint8(1), c.Add(y))

	keys := c.Keys()
	_, hasX := keys[x]
	assert.False(t, hasX)
	assert.Equal(t, []uint64{
		PackIndexKey(y, 0, 2),
		PackIndexKey(y, 1, 2),
	}, keys[y])
}

func TestOccurrenceCounterSaturates(t *testing.T) {
	c := NewOccurrenceCounter(2) // max ordinal 3, so at most 4 occurrences counted
	const k = uint64(7)
	var last uint8
	for i := 0; i < 10; i++ {
		last = c.Add(k)
	}
	assert.Equal(t, uint8(3), last)
	assert.Len(t, c.Keys()[k], 4)
}
