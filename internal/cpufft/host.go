package cpufft

import (
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sys/cpu"
)

// HostInfo describes the CPU the host path runs on.
type HostInfo struct {
	Arch     string
	CPUs     int
	Features []string
}

// String renders e.g. "amd64, 16 cpus, avx2+fma".
func (h HostInfo) String() string {
	features := "generic"
	if len(h.Features) > 0 {
		features = strings.Join(h.Features, "+")
	}
	return h.Arch + ", " + strconv.Itoa(h.CPUs) + " cpus, " + features
}

// Host reports the current machine.
func Host() HostInfo {
	info := HostInfo{Arch: runtime.GOARCH, CPUs: runtime.NumCPU()}
	switch runtime.GOARCH {
	case "amd64", "386":
		add := func(ok bool, name string) {
			if ok {
				info.Features = append(info.Features, name)
			}
		}
		add(cpu.X86.HasSSE3, "sse3")
		add(cpu.X86.HasAVX, "avx")
		add(cpu.X86.HasAVX2, "avx2")
		add(cpu.X86.HasFMA, "fma")
		add(cpu.X86.HasAVX512F, "avx512f")
	case "arm64":
		if cpu.ARM64.HasASIMD {
			info.Features = append(info.Features, "asimd")
		}
	}
	return info
}
