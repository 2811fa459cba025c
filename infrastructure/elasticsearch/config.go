package elasticsearch

import (
	"net/http"
	"time"

	"github.com/Mod5ied/eagle-server/infrastructure/retry"
)

// Config holds Elasticsearch client settings.
type Config struct {
	URL      string `env:"ELASTICSEARCH_URL"      yaml:"url"`
	Username string `env:"ELASTICSEARCH_USERNAME" yaml:"username"`
	Password string `env:"ELASTICSEARCH_PASSWORD" yaml:"password"`
	APIKey   string `env:"ELASTICSEARCH_API_KEY"  yaml:"api_key"`

	TLS *TLSConfig `yaml:"tls"`

	// MaxRetries applies to individual requests.
	MaxRetries  int           `yaml:"max_retries"`
	PingTimeout time.Duration `yaml:"ping_timeout"`

	// RetryConfig drives the start-up connection check.
	RetryConfig *retry.Config `yaml:"-"`

	// Transport replaces the HTTP transport. Used by tests.
	Transport http.RoundTripper `yaml:"-"`
}

// TLSConfig holds TLS settings.
type TLSConfig struct {
	Enabled            bool   `env:"ELASTICSEARCH_TLS_ENABLED"      yaml:"enabled"`
	InsecureSkipVerify bool   `env:"ELASTICSEARCH_TLS_INSECURE"     yaml:"insecure_skip_verify"`
	CertFile           string `env:"ELASTICSEARCH_TLS_CERT_FILE"    yaml:"cert_file"`
	KeyFile            string `env:"ELASTICSEARCH_TLS_KEY_FILE"     yaml:"key_file"`
	CAFile             string `env:"ELASTICSEARCH_TLS_CA_FILE"      yaml:"ca_file"`
}

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:9200"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = 5 * time.Second
	}
	if c.RetryConfig == nil {
		c.RetryConfig = &retry.Config{
			MaxAttempts:  5,
			InitialDelay: 2 * time.Second,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		}
	}
}
