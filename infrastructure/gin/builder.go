package gin

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Mod5ied/eagle-server/infrastructure/logger"
)

// ServerBuilder provides a fluent API for building HTTP servers.
type ServerBuilder struct {
	config      *Config
	logger      logger.Logger
	setupRoutes func(*gin.Engine)
	middleware  []gin.HandlerFunc
}

// NewServerBuilder creates a builder for serviceName listening on port.
func NewServerBuilder(serviceName string, port int) *ServerBuilder {
	return &ServerBuilder{
		config: &Config{ServiceName: serviceName, Port: port},
	}
}

// WithConfig replaces the whole configuration.
func (b *ServerBuilder) WithConfig(cfg *Config) *ServerBuilder {
	b.config = cfg
	return b
}

// WithLogger sets the logger.
func (b *ServerBuilder) WithLogger(log logger.Logger) *ServerBuilder {
	b.logger = log
	return b
}

// WithHost sets the listen host; empty listens on all interfaces.
func (b *ServerBuilder) WithHost(host string) *ServerBuilder {
	b.config.Host = host
	return b
}

// WithDebug enables or disables gin debug mode.
func (b *ServerBuilder) WithDebug(debug bool) *ServerBuilder {
	b.config.Debug = debug
	return b
}

// WithVersion sets the service version.
func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.config.ServiceVersion = version
	return b
}

// WithCORS configures CORS settings.
func (b *ServerBuilder) WithCORS(cfg CORSConfig) *ServerBuilder {
	b.config.CORS = cfg
	return b
}

// WithCORSOrigins sets allowed CORS origins.
func (b *ServerBuilder) WithCORSOrigins(origins []string) *ServerBuilder {
	b.config.CORS.AllowedOrigins = origins
	return b
}

// WithTimeouts sets the read, write and idle timeouts. Zero keeps the default.
func (b *ServerBuilder) WithTimeouts(read, write, idle time.Duration) *ServerBuilder {
	b.config.ReadTimeout = read
	b.config.WriteTimeout = write
	b.config.IdleTimeout = idle
	return b
}

// WithBodyLimit caps request bodies at limit bytes.
func (b *ServerBuilder) WithBodyLimit(limit int64) *ServerBuilder {
	b.config.BodyLimit = limit
	return b
}

// WithMiddleware appends middleware that runs after request logging and
// before CORS.
func (b *ServerBuilder) WithMiddleware(mw ...gin.HandlerFunc) *ServerBuilder {
	b.middleware = append(b.middleware, mw...)
	return b
}

// WithRoutes sets the route setup function.
func (b *ServerBuilder) WithRoutes(setupRoutes func(*gin.Engine)) *ServerBuilder {
	b.setupRoutes = setupRoutes
	return b
}

// Build creates the server with all configured options.
func (b *ServerBuilder) Build() *Server {
	if b.logger == nil {
		log, err := logger.New(logger.Config{Level: "info", Development: b.config.Debug})
		if err != nil {
			log = logger.NewNop()
		}
		b.logger = log
	}

	return NewServer(b.config, b.logger, b.setupRoutes, b.middleware...)
}

// ProtectedGroup creates a router group behind guard. A nil guard leaves the
// group public.
func ProtectedGroup(router gin.IRouter, path string, guard gin.HandlerFunc) *gin.RouterGroup {
	group := router.Group(path)
	if guard != nil {
		group.Use(guard)
	}
	return group
}

// PublicGroup creates a router group without authentication.
func PublicGroup(router gin.IRouter, path string) *gin.RouterGroup {
	return router.Group(path)
}
