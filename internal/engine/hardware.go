package engine

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
)

// detectCPU returns the CPU brand string for the report preamble and
// the logical core count used to size the load generator's thread pool.
func detectCPU() (string, int) {
	name := "unknown"
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		name = infos[0].ModelName
	}

	logical, err := cpu.Counts(true)
	if err != nil || logical <= 0 {
		logical = runtime.NumCPU()
	}
	return name, logical
}
