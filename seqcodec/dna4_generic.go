package seqcodec

import "github.com/grailbio/base/errors"

func encodeDNA4Scalar(dst, ascii []byte) bool {
	n := len(ascii)
	for i := 0; i < n; i++ {
		if !dna4Valid[ascii[i]] {
			return false
		}
		bitmap := dna4Encode[ascii[i]]
		if i&1 == 0 {
			dst[i>>1] |= bitmap << 4
		} else {
			dst[i>>1] |= bitmap
		}
	}
	return true
}

func decodeDNA4Scalar(dst, data []byte, n int) error {
	for i := 0; i < n; i++ {
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
