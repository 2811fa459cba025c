package bootstrap

import (
	"fmt"

	infralogger "github.com/Mod5ied/eagle-server/infrastructure/logger"
	"github.com/Mod5ied/eagle-server/internal/config"
)

const serviceName = "eagle-server"

// LoadConfig loads and validates configuration. An empty path falls back to
// CONFIG_PATH, then config.yml.
func LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// CreateLogger creates the service logger. outputPaths overrides the default
// of stdout.
func CreateLogger(cfg *config.Config, version string, outputPaths []string) (infralogger.Logger, error) {
	log, err := infralogger.New(infralogger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Environment == config.EnvDevelopment,
		OutputPaths: outputPaths,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log.With(
		infralogger.String("service", serviceName),
		infralogger.String("version", version),
	), nil
}
