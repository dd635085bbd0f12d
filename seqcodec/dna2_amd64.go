// +build amd64,!appengine

package seqcodec

// encodeDNA2Wide and decodeDNA2Wide are the word-batched ("SWAR") tier
// selected by cpudispatch for AVX2/AVX512BW-capable processors on
// sufficiently large input. They process bytesPerWord ASCII characters per
// iteration instead of hand-written vector assembly (see DESIGN.md for why
// real per-platform assembly was not attempted in this exercise); output is
// required to be byte-identical to the scalar tier, and is verified so by a
// differential test (see codec_test.go).
const bytesPerWord = 8

func encodeDNA2Wide(dst, ascii []byte) bool {
	n := len(ascii)
	i := 0
	for ; i+bytesPerWord <= n; i += bytesPerWord {
		var codes [bytesPerWord]uint8
		for j := 0; j < bytesPerWord; j++ {
			ch := ascii[i+j]
			if !dna2Valid[ch] {
				return false
			}
			codes[j] = dna2Encode[ch]
		}
		for j := 0; j < bytesPerWord; j++ {
			pos := i + j
			dst[pos>>2] |= codes[j] << uint(6-2*(pos&3))
		}
	}
	// Scalar tail.
	for ; i < n; i++ {
		if !dna2Valid[ascii[i]] {
			return false
		}
		dst[i>>2] |= dna2Encode[ascii[i]] << uint(6-2*(i&3))
	}
	return true
}

func decodeDNA2Wide(dst, data []byte, n int) {
	i := 0
	for ; i+bytesPerWord <= n; i += bytesPerWord {
		for j := 0; j < bytesPerWord; j++ {
			pos := i + j
			b := data[pos>>2]
			code := (b >> uint(6-2*(pos&3))) & 3
			dst[pos] = dna2Decode[code]
		}
	}
	for ; i < n; i++ {
		b := data[i>>2]
		code := (b >> uint(6-2*(i&3))) & 3
		dst[i] = dna2Decode[code]
	}
}
