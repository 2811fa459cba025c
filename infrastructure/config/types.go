package config

import (
	"net"
	"strconv"
	"time"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host         string        `env:"HOST"          yaml:"host"`
	Port         int           `env:"PORT"          yaml:"port"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT"  yaml:"read_timeout"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// Address returns host:port.
func (c *ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SetDefaults fills empty fields.
func (c *ServerConfig) SetDefaults() {
	if c.Port == 0 {
		c.Port = 4000
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// SetDefaults fills empty fields.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}
