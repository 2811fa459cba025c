package bootstrap

import (
	infragin "github.com/Mod5ied/eagle-server/infrastructure/gin"
	infrahealth "github.com/Mod5ied/eagle-server/infrastructure/health"
	infralogger "github.com/Mod5ied/eagle-server/infrastructure/logger"
	"github.com/Mod5ied/eagle-server/infrastructure/metrics"
	"github.com/Mod5ied/eagle-server/internal/api"
	"github.com/Mod5ied/eagle-server/internal/auth"
	"github.com/Mod5ied/eagle-server/internal/config"
	"github.com/Mod5ied/eagle-server/internal/repository"
)

// SetupHTTPServer creates and configures the HTTP server.
func SetupHTTPServer(
	cfg *config.Config,
	repo *repository.ProductRepository,
	tokens *auth.TokenService,
	credentials *auth.CredentialValidator,
	checker *infrahealth.Checker,
	m *metrics.Metrics,
	version string,
	log infralogger.Logger,
) *infragin.Server {
	return api.NewServer(api.Dependencies{
		Config:      cfg,
		Logger:      log,
		Products:    repo,
		Tokens:      tokens,
		Credentials: credentials,
		Health:      checker,
		Metrics:     m,
		Version:     version,
	})
}
