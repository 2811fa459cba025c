package profiling

import (
	"fmt"
	"os"
	"runtime"

	"github.com/grafana/pyroscope-go"

	"github.com/Mod5ied/eagle-server/infrastructure/logger"
)

// PyroscopeProfiler wraps a running Pyroscope profiler.
type PyroscopeProfiler struct {
	profiler *pyroscope.Profiler
}

// StartPyroscope starts continuous profiling when enabled. A nil profiler and
// nil error mean profiling is off.
func StartPyroscope(cfg Config, serviceName, environment, version string, log logger.Logger) (*PyroscopeProfiler, error) {
	if !cfg.ContinuousEnabled {
		return nil, nil
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	pcfg := pyroscope.Config{
		ApplicationName: serviceName,
		ServerAddress:   cfg.PyroscopeURL,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
		Tags: map[string]string{
			"environment": environment,
			"version":     version,
			"hostname":    hostname,
			"go_version":  runtime.Version(),
		},
	}

	profiler, err := pyroscope.Start(pcfg)
	if err != nil {
		return nil, fmt.Errorf("start pyroscope profiler: %w", err)
	}

	log.Info("Pyroscope continuous profiling started",
		logger.String("application", pcfg.ApplicationName),
		logger.String("server", cfg.PyroscopeURL),
	)

	return &PyroscopeProfiler{profiler: profiler}, nil
}

// Stop flushes and stops the profiler. Safe on nil.
func (p *PyroscopeProfiler) Stop() error {
	if p == nil || p.profiler == nil {
		return nil
	}
	return p.profiler.Stop()
}
