package config

import (
	"fmt"
	"time"

	infraconfig "github.com/Mod5ied/eagle-server/infrastructure/config"
	"github.com/Mod5ied/eagle-server/infrastructure/elasticsearch"
	"github.com/Mod5ied/eagle-server/infrastructure/profiling"
	infraredis "github.com/Mod5ied/eagle-server/infrastructure/redis"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	DriverMemory        = "memory"
	DriverElasticsearch = "elasticsearch"
	DriverRedis         = "redis"

	defaultConfigPath        = "config.yml"
	defaultTokenExpiry       = "1h"
	defaultCollection        = "products"
	defaultIndexPrefix       = "eagle-"
	defaultRedisPrefix       = "eagle:"
	defaultCPUSampleInterval = 200 * time.Millisecond
)

type Config struct {
	Environment string `env:"APP_ENV" validate:"oneof=development test production" yaml:"environment"`

	Server    infraconfig.ServerConfig  `yaml:"server"`
	Logging   infraconfig.LoggingConfig `yaml:"logging"`
	Auth      AuthConfig                `yaml:"auth"`
	CORS      CORSConfig                `yaml:"cors"`
	Store     StoreConfig               `yaml:"store"`
	Health    HealthConfig              `yaml:"health"`
	Profiling profiling.Config          `yaml:"profiling"`
}

type AuthConfig struct {
	JWTSecret    string `env:"JWT_SECRET"    validate:"required,min=10"    yaml:"jwt_secret"`
	TokenExpiry  string `env:"TOKEN_EXPIRY"  yaml:"token_expiry"`
	DemoEmail    string `env:"DEMO_EMAIL"    validate:"required,email"     yaml:"demo_email"`
	DemoPassword string `env:"DEMO_PASSWORD" validate:"required,min=8"     yaml:"demo_password"`
}

type CORSConfig struct {
	// FrontendOrigins accepts a comma-separated FRONTEND_ORIGIN.
	FrontendOrigins []string `env:"FRONTEND_ORIGIN" validate:"required,min=1" yaml:"frontend_origins"`
}

// StoreConfig selects and configures the document store backend.
type StoreConfig struct {
	Driver        string           `env:"STORE_DRIVER"     validate:"oneof=memory elasticsearch redis" yaml:"driver"`
	Collection    string           `env:"STORE_COLLECTION" validate:"required"                         yaml:"collection"`
	Elasticsearch StoreESConfig    `yaml:"elasticsearch"`
	Redis         StoreRedisConfig `yaml:"redis"`
}

type StoreESConfig struct {
	elasticsearch.Config `yaml:",inline"`
	IndexPrefix          string `env:"ELASTICSEARCH_INDEX_PREFIX" yaml:"index_prefix"`
}

type StoreRedisConfig struct {
	infraredis.Config `yaml:",inline"`
	KeyPrefix         string `env:"REDIS_KEY_PREFIX" yaml:"key_prefix"`
}

// HealthConfig tunes the system probe. Thresholds are usage percentages.
type HealthConfig struct {
	MemoryThreshold   float64       `env:"HEALTH_MEMORY_THRESHOLD"    validate:"gte=0,lte=100" yaml:"memory_threshold"`
	CPUThreshold      float64       `env:"HEALTH_CPU_THRESHOLD"       validate:"gte=0,lte=100" yaml:"cpu_threshold"`
	CPUSampleInterval time.Duration `env:"HEALTH_CPU_SAMPLE_INTERVAL" yaml:"cpu_sample_interval"`
}

// IsProduction reports whether session cookies must be Secure.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Validate checks tags first, then the rules tags cannot express.
func (c *Config) Validate() error {
	if err := infraconfig.ValidateStruct(c); err != nil {
		return err
	}
	if err := infraconfig.ValidatePort("server.port", c.Server.Port); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if c.Store.Driver == DriverRedis && c.Store.Redis.Address == "" {
		return &infraconfig.ValidationError{Field: "store.redis.address", Message: "is required for the redis driver"}
	}
	if c.Store.Driver == DriverElasticsearch && c.Store.Elasticsearch.URL == "" {
		return &infraconfig.ValidationError{Field: "store.elasticsearch.url", Message: "is required for the elasticsearch driver"}
	}
	return nil
}

// Load reads path (a missing file is fine), the environment and .env files.
func Load(path string) (*Config, error) {
	if path == "" {
		path = infraconfig.GetConfigPath(defaultConfigPath)
	}

	cfg, err := infraconfig.LoadWithDefaults(path, setDefaults)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = EnvDevelopment
	}

	cfg.Server.SetDefaults()
	if cfg.Environment == EnvDevelopment && cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	cfg.Logging.SetDefaults()
	cfg.Profiling.SetDefaults()

	if cfg.Auth.TokenExpiry == "" {
		cfg.Auth.TokenExpiry = defaultTokenExpiry
	}

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverMemory
	}
	if cfg.Store.Collection == "" {
		cfg.Store.Collection = defaultCollection
	}
	if cfg.Store.Elasticsearch.IndexPrefix == "" {
		cfg.Store.Elasticsearch.IndexPrefix = defaultIndexPrefix
	}
	if cfg.Store.Redis.KeyPrefix == "" {
		cfg.Store.Redis.KeyPrefix = defaultRedisPrefix
	}
	if cfg.Store.Driver == DriverElasticsearch {
		cfg.Store.Elasticsearch.SetDefaults()
	}

	if cfg.Health.MemoryThreshold == 0 {
		cfg.Health.MemoryThreshold = 90
	}
	if cfg.Health.CPUThreshold == 0 {
		cfg.Health.CPUThreshold = 90
	}
	if cfg.Health.CPUSampleInterval == 0 {
		cfg.Health.CPUSampleInterval = defaultCPUSampleInterval
	}
}
