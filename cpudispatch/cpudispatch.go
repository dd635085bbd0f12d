// Package cpudispatch provides the runtime CPU-capability detection and
// per-operation size thresholds used to select between scalar and
// vectorized implementations, the same architectural split
// biosimd makes between its "*_amd64.go" and "*_generic.go" files, but
// exposed as an explicit, testable dispatch table rather than a single
// package-level init() capability check.
package cpudispatch

// Tier identifies a CPU capability level.
type Tier int

const (
	// Scalar is the universal fallback; it must always be present.
	Scalar Tier = iota
	SSE2
	AVX2
	AVX512BW
	NEON
	SVE
)

func (t Tier) String() string {
	switch t {
	case Scalar:
		return "scalar"
	case SSE2:
		return "sse2"
	case AVX2:
		return "avx2"
	case AVX512BW:
		return "avx512bw"
	case NEON:
		return "neon"
	case SVE:
		return "sve"
	default:
		return "unknown"
	}
}

// Op identifies a dispatchable operation. Each has its own minimum-data-size
// thresholds per tier.
type Op int

const (
	OpEncodeDNA2 Op = iota
	OpDecodeDNA2
	OpEncodeDNA4
	OpDecodeDNA4
)

// thresholds[op][tier] is the minimum input length (in bases) required to
// use that tier. A tier whose threshold is 0 is always eligible once the
// capability is present. Values are concrete, e.g. 512/1024 input bases
// for encode.
var thresholds = map[Op]map[Tier]int{
	OpEncodeDNA2: {AVX2: 512, AVX512BW: 1024, NEON: 512, SVE: 1024},
	OpDecodeDNA2: {AVX2: 512, AVX512BW: 1024, NEON: 512, SVE: 1024},
	OpEncodeDNA4: {AVX2: 256, AVX512BW: 512, NEON: 256, SVE: 512},
	OpDecodeDNA4: {AVX2: 256, AVX512BW: 512, NEON: 256, SVE: 512},
}

// caps is computed once at process start (see cpudispatch_amd64.go and
// cpudispatch_arm64.go) and never mutated afterward.
var caps capabilities

type capabilities struct {
	sse2     bool
	avx2     bool
	avx512bw bool
	neon     bool
	sve      bool
}

// orderedTiers lists tiers from strongest to weakest for dispatch purposes.
// Selecting the "highest qualifying tier" means walking this list in order.
var orderedTiers = []Tier{AVX512BW, SVE, AVX2, NEON, SSE2}

func (c capabilities) has(t Tier) bool {
	switch t {
	case SSE2:
		return c.sse2
	case AVX2:
		return c.avx2
	case AVX512BW:
		return c.avx512bw
	case NEON:
		return c.neon
	case SVE:
		return c.sve
	}
	return false
}

// Select inspects both the process's detected capabilities and the input
// size n, and returns the highest tier that qualifies for op. Scalar is
// always a valid result.
func Select(op Op, n int) Tier {
	return selectWith(caps, op, n)
}

func selectWith(c capabilities, op Op, n int) Tier {
	opThresholds, ok := thresholds[op]
	if !ok {
		return Scalar
	}
	for _, t := range orderedTiers {
		if !c.has(t) {
			continue
		}
		min, ok := opThresholds[t]
		if !ok {
			continue
		}
		if n >= min {
			return t
		}
	}
	return Scalar
}
