// +build amd64,!appengine

package cpudispatch

import "golang.org/x/sys/cpu"

func init() {
	caps = capabilities{
		sse2:     cpu.X86.HasSSE2,
		avx2:     cpu.X86.HasAVX2,
		avx512bw: cpu.X86.HasAVX512BW,
	}
}
