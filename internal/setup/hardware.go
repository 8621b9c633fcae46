package setup

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// HardwareReport summarizes the capture host's CPU/memory headroom, used to
// warn the operator before recording onto undersized hardware rather than
// failing mid-capture.
type HardwareReport struct {
	Cores              int
	LoadPercent1Min    float64
	TotalMemoryMB      float64
	AvailableMemoryMB  float64
	Sufficient         bool
	Warning            string
}

// minCores/minAvailableMemoryMB are conservative floors below which OBS
// recording plus ffmpeg re-encoding is likely to drop frames.
const (
	minCores             = 2
	minAvailableMemoryMB = 2048
)

// HardwareChecker reports the host's current CPU/memory headroom.
type HardwareChecker interface {
	Check(ctx context.Context) (HardwareReport, error)
}

type gopsutilHardwareChecker struct{}

// NewHardwareChecker builds a HardwareChecker backed by gopsutil.
func NewHardwareChecker() HardwareChecker { return gopsutilHardwareChecker{} }

func (gopsutilHardwareChecker) Check(ctx context.Context) (HardwareReport, error) {
	report := HardwareReport{Cores: runtime.NumCPU(), Sufficient: true}

	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		report.LoadPercent1Min = percents[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm != nil {
		report.TotalMemoryMB = float64(vm.Total) / 1024 / 1024
		report.AvailableMemoryMB = float64(vm.Available) / 1024 / 1024
	}

	if report.Cores < minCores {
		report.Sufficient = false
		report.Warning = "CPU コア数が推奨値を下回っています"
	} else if report.AvailableMemoryMB > 0 && report.AvailableMemoryMB < minAvailableMemoryMB {
		report.Sufficient = false
		report.Warning = "利用可能なメモリが推奨値を下回っています"
	}

	return report, nil
}
