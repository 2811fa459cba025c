package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	infrahealth "github.com/Mod5ied/eagle-server/infrastructure/health"
	infralogger "github.com/Mod5ied/eagle-server/infrastructure/logger"
)

const healthcheckTimeout = 10 * time.Second

// RunHealthcheck builds the probes from configuration, runs one aggregation
// and writes the report to out as JSON. Logs go to stderr so out stays
// machine readable.
func RunHealthcheck(ctx context.Context, configPath, version string, out io.Writer) (infrahealth.Report, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return infrahealth.Report{}, err
	}

	log, err := CreateLogger(cfg, version, []string{"stderr"})
	if err != nil {
		return infrahealth.Report{}, err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(ctx, healthcheckTimeout)
	defer cancel()

	st, err := SetupStore(ctx, cfg, log)
	if err != nil {
		return infrahealth.Report{}, fmt.Errorf("failed to set up store: %w", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			log.Warn("Failed to close store", infralogger.Error(closeErr))
		}
	}()

	checker := SetupHealth(cfg, st.Collection(cfg.Store.Collection), st.Driver(), nil, log)
	report := checker.Check(ctx)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err = enc.Encode(report); err != nil {
		return report, fmt.Errorf("write report: %w", err)
	}
	return report, nil
}
