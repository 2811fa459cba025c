// Package bootstrap handles application initialization and lifecycle
// management for eagle-server.
package bootstrap

import (
	"context"
	"fmt"

	infralogger "github.com/Mod5ied/eagle-server/infrastructure/logger"
	"github.com/Mod5ied/eagle-server/infrastructure/metrics"
	"github.com/Mod5ied/eagle-server/infrastructure/profiling"
	"github.com/Mod5ied/eagle-server/internal/auth"
	"github.com/Mod5ied/eagle-server/internal/repository"
)

// BuildInfo is injected at link time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Start initializes the service and serves until ctx is cancelled or a
// termination signal arrives.
func Start(ctx context.Context, configPath string, info BuildInfo) error {
	// Phase 1: config and logger
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	log, err := CreateLogger(cfg, info.Version, nil)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// Phase 2: profiling
	if pprofSrv := profiling.StartPprofServer(cfg.Profiling, log); pprofSrv != nil {
		defer func() { _ = pprofSrv.Close() }()
	}
	pyroscope, err := profiling.StartPyroscope(cfg.Profiling, serviceName, cfg.Environment, info.Version, log)
	if err != nil {
		log.Warn("Continuous profiling disabled", infralogger.Error(err))
	}
	defer func() { _ = pyroscope.Stop() }()

	// Phase 3: document store
	st, err := SetupStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to set up store: %w", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			log.Error("Failed to close store", infralogger.Error(closeErr))
		}
	}()
	products := st.Collection(cfg.Store.Collection)

	// Phase 4: services
	m := metrics.New()
	checker := SetupHealth(cfg, products, st.Driver(), m, log)

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, auth.ParseExpiry(cfg.Auth.TokenExpiry))
	credentials := auth.NewCredentialValidator(cfg.Auth.DemoEmail, cfg.Auth.DemoPassword)
	repo := repository.NewProductRepository(products, log)

	// Phase 5: HTTP server
	server := SetupHTTPServer(cfg, repo, tokens, credentials, checker, m, info.Version, log)

	log.Info("Service ready",
		infralogger.String("environment", cfg.Environment),
		infralogger.String("store_driver", st.Driver()),
		infralogger.Duration("token_ttl", tokens.TTL()),
	)

	if runErr := server.RunWithGracefulShutdown(ctx); runErr != nil {
		log.Error("Server error", infralogger.Error(runErr))
		return fmt.Errorf("server error: %w", runErr)
	}

	log.Info("Server exited")
	return nil
}
