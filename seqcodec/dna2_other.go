// +build !amd64 appengine

package seqcodec

// Architectures other than amd64 have no word-batched tier of their own:
// these delegate to the scalar tier. On arm64, cpudispatch can report NEON
// or SVE, so they are selected for large inputs there; on other
// architectures cpudispatch never reports a capability above Scalar (see
// cpudispatch_generic.go) and they are never selected.
func encodeDNA2Wide(dst, ascii []byte) bool { return encodeDNA2Scalar(dst, ascii) }

func decodeDNA2Wide(dst, data []byte, n int) { decodeDNA2Scalar(dst, data, n) }
