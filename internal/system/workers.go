package system

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// workingSetFrames is roughly how many full-resolution RGBA buffers one
// render worker holds at once (output frame, blend temporaries, scratch).
const workingSetFrames = 4

// RenderWorkers picks a worker count for the offline driver: bounded by
// logical CPUs and by how many per-worker frame working sets fit in
// available memory. Always at least 1.
func RenderWorkers(width, height int) int {
	n := runtime.NumCPU()
	if counts, err := cpu.Counts(true); err == nil && counts > 0 {
		n = counts
	}

	frameBytes := uint64(width) * uint64(height) * 4 * workingSetFrames
	if frameBytes > 0 {
		if vm, err := mem.VirtualMemory(); err == nil && vm.Available > 0 {
			byMem := int(vm.Available / frameBytes)
			if byMem < n {
				n = byMem
			}
		}
	}

	if n < 1 {
		n = 1
	}
	return n
}
