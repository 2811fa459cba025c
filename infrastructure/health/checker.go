package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Mod5ied/eagle-server/infrastructure/logger"
)

// Report is the aggregated service health.
type Report struct {
	Status Status            `json:"status"`
	Checks map[string]Result `json:"checks"`
}

// Recorder receives every probe result, typically to export metrics.
type Recorder interface {
	ObserveProbe(name, status string, responseTime time.Duration)
}

// Checker runs a fixed, ordered list of probes concurrently.
type Checker struct {
	mu       sync.RWMutex
	probes   []Probe
	log      logger.Logger
	recorder Recorder
}

// Option configures a Checker.
type Option func(*Checker)

// WithRecorder attaches a result recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Checker) { c.recorder = r }
}

// NewChecker creates a Checker over probes.
func NewChecker(log logger.Logger, probes []Probe, opts ...Option) *Checker {
	c := &Checker{
		probes: append([]Probe(nil), probes...),
		log:    log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register appends a probe.
func (c *Checker) Register(p Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes = append(c.probes, p)
}

// Probes returns the registered probes in order.
func (c *Checker) Probes() []Probe {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Probe(nil), c.probes...)
}

// Check runs every probe in parallel and derives the overall status.
func (c *Checker) Check(ctx context.Context) Report {
	probes := c.Probes()
	results := make([]Result, len(probes))

	var g errgroup.Group
	for i, p := range probes {
		g.Go(func() error {
			results[i] = Run(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Checks: make(map[string]Result, len(results))}
	statuses := make([]Status, 0, len(results))
	for _, r := range results {
		report.Checks[r.Name] = r
		statuses = append(statuses, r.Status)
		if c.recorder != nil {
			c.recorder.ObserveProbe(r.Name, string(r.Status), time.Duration(r.ResponseTime)*time.Millisecond)
		}
	}
	report.Status = Worst(statuses...)

	c.log.Info("health_check", logger.String("overall_status", string(report.Status)))
	for _, r := range results {
		if r.Status != StatusHealthy {
			c.log.Warn("health probe degraded",
				logger.String("probe", r.Name),
				logger.String("status", string(r.Status)),
				logger.String("reason", r.Error),
			)
		}
	}

	return report
}
