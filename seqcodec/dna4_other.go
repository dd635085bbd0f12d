// +build !amd64 appengine

package seqcodec

// See dna2_other.go: these delegate to the scalar tier, and are selected
// only on arm64 with NEON/SVE.
func encodeDNA4Wide(dst, ascii []byte) bool { return encodeDNA4Scalar(dst, ascii) }

func decodeDNA4Wide(dst, data []byte, n int) error { return decodeDNA4Scalar(dst, data, n) }
