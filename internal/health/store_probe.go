// Package health holds the probes specific to this service. The probe
// framework itself lives in infrastructure/health.
package health

import (
	"context"
	"fmt"
	"strings"
	"time"

	infrahealth "github.com/Mod5ied/eagle-server/infrastructure/health"
	"github.com/Mod5ied/eagle-server/internal/store"
)

// StoreProbe checks that the document store answers a one-document read.
type StoreProbe struct {
	coll   store.Collection
	driver string
}

func NewStoreProbe(coll store.Collection, driver string) *StoreProbe {
	return &StoreProbe{coll: coll, driver: driver}
}

func (p *StoreProbe) Name() string { return "store" }

func (p *StoreProbe) DisplayName() string {
	if p.driver == "" {
		return "Store Connectivity"
	}
	return strings.ToUpper(p.driver[:1]) + p.driver[1:] + " Connectivity"
}

func (p *StoreProbe) Description() string {
	return fmt.Sprintf("Verifies %s read access and latency", p.driver)
}

func (p *StoreProbe) Tags() []string {
	return []string{"core", "database", p.driver}
}

func (p *StoreProbe) Check(ctx context.Context) (infrahealth.Outcome, error) {
	start := time.Now()
	docs, err := p.coll.Find(ctx, store.Query{Limit: 1})
	if err != nil {
		return infrahealth.Outcome{}, fmt.Errorf("read %s: %w", p.coll.Name(), err)
	}

	return infrahealth.Outcome{
		Status: infrahealth.StatusHealthy,
		Metrics: map[string]any{
			"latencyMs":      time.Since(start).Milliseconds(),
			"timestamp":      time.Now().UTC().Format(time.RFC3339Nano),
			"reachable":      true,
			"docCountSample": len(docs),
		},
	}, nil
}
