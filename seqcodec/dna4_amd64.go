// +build amd64,!appengine

package seqcodec

import "github.com/grailbio/base/errors"

// encodeDNA4Wide is the word-batched tier for DNA4 encoding; see
// dna2_amd64.go for the rationale.
func encodeDNA4Wide(dst, ascii []byte) bool {
	n := len(ascii)
	i := 0
	for ; i+bytesPerWord <= n; i += bytesPerWord {
		var bitmaps [bytesPerWord]uint8
		for j := 0; j < bytesPerWord; j++ {
			ch := ascii[i+j]
			if !dna4Valid[ch] {
				return false
			}
			bitmaps[j] = dna4Encode[ch]
		}
		for j := 0; j < bytesPerWord; j++ {
			pos := i + j
			if pos&1 == 0 {
				dst[pos>>1] |= bitmaps[j] << 4
			} else {
				dst[pos>>1] |= bitmaps[j]
			}
		}
	}
	for ; i < n; i++ {
		ch := ascii[i]
		if !dna4Valid[ch] {
			return false
		}
		bitmap := dna4Encode[ch]
		if i&1 == 0 {
			dst[i>>1] |= bitmap << 4
		} else {
			dst[i>>1] |= bitmap
		}
	}
	return true
}

func decodeDNA4Wide(dst, data []byte, n int) error {
	i := 0
	for ; i+bytesPerWord <= n; i += bytesPerWord {
		for j := 0; j < bytesPerWord; j++ {
			pos := i + j
			b := data[pos>>1]
			var bitmap uint8
			if pos&1 == 0 {
				bitmap = b >> 4
			} else {
				bitmap = b & 0xf
			}
			if bitmap == 0 {
				return errors.E(errors.Invalid, errors.Errorf("seqcodec: zero DNA4 bitmap at position %d", pos))
			}
			dst[pos] = dna4Decode[bitmap]
		}
	}
	for ; i < n; i++ {
		b := data[i>>1]
		var bitmap uint8
		if i&1 == 0 {
			bitmap = b >> 4
		} else {
			bitmap = b & 0xf
		}
		if bitmap == 0 {
			return errors.E(errors.Invalid, errors.Errorf("seqcodec: zero DNA4 bitmap at position %d", i))
		}
		dst[i] = dna4Decode[bitmap]
	}
	return nil
}
