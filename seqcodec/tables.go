package seqcodec

// DNA2 base <-> 2-bit code tables. A/a->00, C/c->01, G/g->10, T/t->11.
var (
	dna2Encode [256]uint8
	dna2Valid  [256]bool
	dna2Decode = [4]byte{'A', 'C', 'G', 'T'}
)

// DNA4 IUPAC bitmap: bit0=A, bit1=C, bit2=G, bit3=T.
//
//	A=0001 C=0010 G=0100 T=1000
//	M=0011 R=0101 W=1001 S=0110 Y=1010 K=1100
//	V=0111 H=1011 D=1101 B=1110
//	N=1111
var (
	dna4Encode [256]uint8
	dna4Valid  [256]bool
	dna4Decode [16]byte
)

func setDNA4(ch byte, bitmap uint8) {
	dna4Encode[ch] = bitmap
	dna4Valid[ch] = true
	dna4Encode[ch+32] = bitmap // lowercase, valid for A-Z ASCII letters only
	dna4Valid[ch+32] = true
}

func init() {
	dna2Encode['A'], dna2Valid['A'] = 0, true
	dna2Encode['a'], dna2Valid['a'] = 0, true
	dna2Encode['C'], dna2Valid['C'] = 1, true
	dna2Encode['c'], dna2Valid['c'] = 1, true
	dna2Encode['G'], dna2Valid['G'] = 2, true
	dna2Encode['g'], dna2Valid['g'] = 2, true
	dna2Encode['T'], dna2Valid['T'] = 3, true
	dna2Encode['t'], dna2Valid['t'] = 3, true

	setDNA4('A', 0x1)
	setDNA4('C', 0x2)
	setDNA4('G', 0x4)
	setDNA4('T', 0x8)
	setDNA4('M', 0x3) // A,C
	setDNA4('R', 0x5) // A,G
	setDNA4('W', 0x9) // A,T
	setDNA4('S', 0x6) // C,G
	setDNA4('Y', 0xa) // C,T
	setDNA4('K', 0xc) // G,T
	setDNA4('V', 0x7) // A,C,G
	setDNA4('H', 0xb) // A,C,T
	setDNA4('D', 0xd) // A,G,T
	setDNA4('B', 0xe) // C,G,T
	setDNA4('N', 0xf) // A,C,G,T

	for bitmap := uint8(0); bitmap < 16; bitmap++ {
		dna4Decode[bitmap] = 0
	}
	// Build the canonical (uppercase) decode table by inverting dna4Encode
	// over the uppercase letters only.
	for ch := byte('A'); ch <= 'Z'; ch++ {
		if dna4Valid[ch] {
			dna4Decode[dna4Encode[ch]] = ch
		}
	}
}

// BaseExpansions returns, for a DNA4 bitmap, the ordered set of concrete
// {A,C,G,T} 2-bit codes it represents, in A,C,G,T order.
func BaseExpansions(bitmap uint8) []uint8 {
	var out []uint8
	if bitmap&0x1 != 0 {
		out = append(out, 0) // A
	}
	if bitmap&0x2 != 0 {
		out = append(out, 1) // C
	}
	if bitmap&0x4 != 0 {
		out = append(out, 2) // G
	}
	if bitmap&0x8 != 0 {
		out = append(out, 3) // T
	}
	return out
}
