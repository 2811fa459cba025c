package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/procfs"
)

// DefaultCPUSampleInterval is the wait between the two /proc/stat readings
// taken when no previous reading exists.
const DefaultCPUSampleInterval = 200 * time.Millisecond

const kibibyte = 1024

var errNoMemTotal = errors.New("meminfo: MemTotal missing")

// ProcfsSampler reads host resources from /proc. CPU usage is the busy share
// of CPU time since the previous sample.
type ProcfsSampler struct {
	fs       procfs.FS
	interval time.Duration

	mu   sync.Mutex
	prev *cpuTimes
}

type cpuTimes struct {
	idle  float64
	total float64
}

// NewProcfsSampler opens the default /proc mount.
func NewProcfsSampler(interval time.Duration) (*ProcfsSampler, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, fmt.Errorf("open procfs: %w", err)
	}
	if interval <= 0 {
		interval = DefaultCPUSampleInterval
	}
	return &ProcfsSampler{fs: fs, interval: interval}, nil
}

// Sample implements ResourceSampler.
func (s *ProcfsSampler) Sample(ctx context.Context) (ResourceSample, error) {
	var out ResourceSample

	mem, err := s.memory()
	if err != nil {
		return out, err
	}
	out.Memory = mem

	cpu, err := s.cpu(ctx)
	if err != nil {
		return out, err
	}
	out.CPU = cpu

	avg, err := s.fs.LoadAvg()
	if err != nil {
		return out, fmt.Errorf("read loadavg: %w", err)
	}
	out.Load = [3]float64{avg.Load1, avg.Load5, avg.Load15}

	stat, err := s.fs.Stat()
	if err != nil {
		return out, fmt.Errorf("read stat: %w", err)
	}
	out.UptimeSeconds = time.Since(time.Unix(int64(stat.BootTime), 0)).Seconds()

	return out, nil
}

func (s *ProcfsSampler) memory() (MemoryStats, error) {
	info, err := s.fs.Meminfo()
	if err != nil {
		return MemoryStats{}, fmt.Errorf("read meminfo: %w", err)
	}
	if info.MemTotal == nil || *info.MemTotal == 0 {
		return MemoryStats{}, errNoMemTotal
	}

	total := *info.MemTotal * kibibyte
	var free uint64
	switch {
	case info.MemAvailable != nil:
		free = *info.MemAvailable * kibibyte
	case info.MemFree != nil:
		free = *info.MemFree * kibibyte
	}
	free = min(free, total)
	used := total - free

	return MemoryStats{
		Total:        total,
		Used:         used,
		Free:         free,
		UsagePercent: float64(used) / float64(total) * 100,
	}, nil
}

func (s *ProcfsSampler) cpu(ctx context.Context) (CPUStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stat, err := s.fs.Stat()
	if err != nil {
		return CPUStats{}, fmt.Errorf("read stat: %w", err)
	}
	current := toCPUTimes(stat.CPUTotal)

	prev := s.prev
	if prev == nil {
		prev = &current

		select {
		case <-ctx.Done():
			return CPUStats{}, ctx.Err()
		case <-time.After(s.interval):
		}

		if stat, err = s.fs.Stat(); err != nil {
			return CPUStats{}, fmt.Errorf("read stat: %w", err)
		}
		current = toCPUTimes(stat.CPUTotal)
	}
	s.prev = &current

	return CPUStats{
		Count:        len(stat.CPU),
		UsagePercent: busyPercent(*prev, current),
	}, nil
}

func toCPUTimes(c procfs.CPUStat) cpuTimes {
	idle := c.Idle + c.Iowait
	total := idle + c.User + c.Nice + c.System + c.IRQ + c.SoftIRQ + c.Steal
	return cpuTimes{idle: idle, total: total}
}

// busyPercent is the non-idle share of CPU time between two readings.
func busyPercent(prev, cur cpuTimes) float64 {
	dTotal := cur.total - prev.total
	if dTotal <= 0 {
		return 0
	}
	dIdle := cur.idle - prev.idle
	busy := (1 - dIdle/dTotal) * 100
	return max(0, min(100, busy))
}
