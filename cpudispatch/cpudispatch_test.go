package cpudispatch

import "testing"

func TestSelectScalarFallback(t *testing.T) {
	var none capabilities
	if got := selectWith(none, OpEncodeDNA2, 1<<20); got != Scalar {
		t.Fatalf("expected Scalar with no capabilities, got %v", got)
	}
}

func TestSelectRespectsThreshold(t *testing.T) {
	c := capabilities{avx2: true}
	if got := selectWith(c, OpEncodeDNA2, 10); got != Scalar {
		t.Fatalf("small input should stay scalar, got %v", got)
	}
	if got := selectWith(c, OpEncodeDNA2, 1024); got != AVX2 {
		t.Fatalf("large input with AVX2 capability should select AVX2, got %v", got)
	}
}

func TestSelectPicksHighestQualifyingTier(t *testing.T) {
	c := capabilities{avx2: true, avx512bw: true}
	if got := selectWith(c, OpEncodeDNA2, 2000); got != AVX512BW {
		t.Fatalf("expected AVX512BW to win over AVX2, got %v", got)
	}
	if got := selectWith(c, OpEncodeDNA2, 600); got != AVX2 {
		t.Fatalf("below the AVX512BW threshold should fall back to AVX2, got %v", got)
	}
}

func TestSelectUnknownOpIsScalar(t *testing.T) {
	c := capabilities{avx512bw: true}
	if got := selectWith(c, Op(9999), 1<<20); got != Scalar {
		t.Fatalf("unknown op should always be scalar, got %v", got)
	}
}
