// +build arm64

package cpudispatch

import "golang.org/x/sys/cpu"

func init() {
	caps = capabilities{
		neon: cpu.ARM64.HasASIMD,
		sve:  cpu.ARM64.HasSVE,
	}
}
