package health

import (
	"context"
	"fmt"
	"math"
	"os"
	"runtime"
)

// DefaultResourceThreshold is the usage percentage above which the system
// probe reports Warning.
const DefaultResourceThreshold = 90.0

// MemoryStats is host memory in bytes.
type MemoryStats struct {
	Total        uint64
	Used         uint64
	Free         uint64
	UsagePercent float64
}

// CPUStats describes host CPU usage.
type CPUStats struct {
	Count        int
	UsagePercent float64
}

// ResourceSample is a single reading of host resources.
type ResourceSample struct {
	Memory MemoryStats
	CPU    CPUStats
	// Load holds the 1, 5 and 15 minute load averages.
	Load          [3]float64
	UptimeSeconds float64
}

// ResourceSampler reads host resources.
type ResourceSampler interface {
	Sample(ctx context.Context) (ResourceSample, error)
}

// SystemProbe reports host resource usage.
type SystemProbe struct {
	sampler         ResourceSampler
	memoryThreshold float64
	cpuThreshold    float64
}

// NewSystemProbe creates a SystemProbe. Non-positive thresholds fall back to
// DefaultResourceThreshold.
func NewSystemProbe(sampler ResourceSampler, memoryThreshold, cpuThreshold float64) *SystemProbe {
	if memoryThreshold <= 0 {
		memoryThreshold = DefaultResourceThreshold
	}
	if cpuThreshold <= 0 {
		cpuThreshold = DefaultResourceThreshold
	}
	return &SystemProbe{
		sampler:         sampler,
		memoryThreshold: memoryThreshold,
		cpuThreshold:    cpuThreshold,
	}
}

func (p *SystemProbe) Name() string        { return "system" }
func (p *SystemProbe) DisplayName() string { return "System Resources" }
func (p *SystemProbe) Description() string {
	return "Checks system resources including CPU, memory, and load averages"
}
func (p *SystemProbe) Tags() []string { return []string{"core", "system", "resources"} }

// Check samples the host and compares usage against the thresholds.
func (p *SystemProbe) Check(ctx context.Context) (Outcome, error) {
	s, err := p.sampler.Sample(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("sample system resources: %w", err)
	}

	out := Outcome{Status: StatusHealthy, Metrics: systemMetrics(s)}
	if s.Memory.UsagePercent > p.memoryThreshold || s.CPU.UsagePercent > p.cpuThreshold {
		out.Status = StatusWarning
		out.Message = "High resource usage detected"
	}
	return out, nil
}

func systemMetrics(s ResourceSample) map[string]any {
	load := []float64{s.Load[0], s.Load[1], s.Load[2]}
	hostname, _ := os.Hostname()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return map[string]any{
		"memory": map[string]any{
			"total":        s.Memory.Total,
			"used":         s.Memory.Used,
			"free":         s.Memory.Free,
			"usagePercent": round2(s.Memory.UsagePercent),
		},
		"cpu": map[string]any{
			"count":        s.CPU.Count,
			"usagePercent": round2(s.CPU.UsagePercent),
			"load":         load,
		},
		"load":   load,
		"uptime": s.UptimeSeconds,
		"platform": map[string]any{
			"platform": runtime.GOOS,
			"arch":     runtime.GOARCH,
			"hostname": hostname,
		},
		"runtime": map[string]any{
			"goVersion":      runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"gomaxprocs":     runtime.GOMAXPROCS(0),
			"heapAllocBytes": ms.HeapAlloc,
			"heapInuseBytes": ms.HeapInuse,
			"numGC":          ms.NumGC,
		},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
