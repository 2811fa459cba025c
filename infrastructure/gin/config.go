// Package gin provides the HTTP server, middleware chain and lifecycle
// management for the service.
package gin

import (
	"time"
)

// Defaults for Config.
const (
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultCORSMaxAge      = 12 * time.Hour
	// DefaultBodyLimit caps request bodies at 100 KiB.
	DefaultBodyLimit int64 = 100 << 10
)

// Config holds HTTP server settings.
type Config struct {
	Host  string
	Port  int
	Debug bool

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// BodyLimit is the maximum request body size in bytes.
	BodyLimit int64

	CORS CORSConfig

	ServiceName    string
	ServiceVersion string
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	// AllowedOrigins lists exact origins; "*" allows any origin.
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.BodyLimit == 0 {
		c.BodyLimit = DefaultBodyLimit
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "dev"
	}
	c.CORS.SetDefaults()
}

// SetDefaults fills empty fields.
func (c *CORSConfig) SetDefaults() {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	}
	if c.MaxAge == 0 {
		c.MaxAge = DefaultCORSMaxAge
	}
}
