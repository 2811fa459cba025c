package bootstrap

import (
	"context"
	"fmt"

	infrahealth "github.com/Mod5ied/eagle-server/infrastructure/health"
	infralogger "github.com/Mod5ied/eagle-server/infrastructure/logger"
	"github.com/Mod5ied/eagle-server/internal/config"
	"github.com/Mod5ied/eagle-server/internal/health"
	"github.com/Mod5ied/eagle-server/internal/store"
)

// SetupHealth registers the system and store probes. recorder may be nil.
// Without a readable /proc the system probe reports Unhealthy instead of
// failing start-up.
func SetupHealth(
	cfg *config.Config,
	products store.Collection,
	driver string,
	recorder infrahealth.Recorder,
	log infralogger.Logger,
) *infrahealth.Checker {
	var sampler infrahealth.ResourceSampler
	procfsSampler, err := infrahealth.NewProcfsSampler(cfg.Health.CPUSampleInterval)
	if err != nil {
		log.Warn("System resource sampling unavailable", infralogger.Error(err))
		sampler = unavailableSampler{err: err}
	} else {
		sampler = procfsSampler
	}

	probes := []infrahealth.Probe{
		infrahealth.NewSystemProbe(sampler, cfg.Health.MemoryThreshold, cfg.Health.CPUThreshold),
		health.NewStoreProbe(products, driver),
	}

	var opts []infrahealth.Option
	if recorder != nil {
		opts = append(opts, infrahealth.WithRecorder(recorder))
	}
	return infrahealth.NewChecker(log, probes, opts...)
}

type unavailableSampler struct {
	err error
}

func (s unavailableSampler) Sample(context.Context) (infrahealth.ResourceSample, error) {
	return infrahealth.ResourceSample{}, fmt.Errorf("system sampler: %w", s.err)
}
