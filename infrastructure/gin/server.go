package gin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/Mod5ied/eagle-server/infrastructure/logger"
)

// Server is an HTTP server with lifecycle management.
type Server struct {
	router *gin.Engine
	server *http.Server
	logger logger.Logger
	config *Config
}

// NewServer builds the router with the standard middleware chain, then calls
// setupRoutes. extra middleware runs after request logging and before CORS.
//
// Chain: recovery, request id, request logging, extra, CORS, error
// rendering, body limit.
func NewServer(cfg *Config, log logger.Logger, setupRoutes func(*gin.Engine), extra ...gin.HandlerFunc) *Server {
	cfg.SetDefaults()

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		RecoveryMiddleware(log),
		RequestIDLoggerMiddleware(log),
		LoggerMiddleware(log),
	)
	router.Use(extra...)
	router.Use(
		CORSMiddleware(cfg.CORS),
		ErrorHandlerMiddleware(log),
		BodyLimitMiddleware(cfg.BodyLimit),
	)
	router.NoRoute(NotFoundHandler())

	if setupRoutes != nil {
		setupRoutes(router)
	}

	return &Server{
		router: router,
		server: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: log,
		config: cfg,
	}
}

// Router returns the gin engine.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start blocks serving requests until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		logger.String("address", s.server.Addr),
		logger.String("service", s.config.ServiceName),
		logger.String("version", s.config.ServiceVersion),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// StartAsync runs Start in a goroutine. The channel yields at most one error
// and is closed when the server stops.
func (s *Server) StartAsync() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown drains connections within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server", logger.Duration("timeout", s.config.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

// RunWithGracefulShutdown serves until SIGINT, SIGTERM, ctx cancellation or
// a server error, then shuts down.
func (s *Server) RunWithGracefulShutdown(ctx context.Context) error {
	errCh := s.StartAsync()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case sig := <-sigCh:
		s.logger.Info("Shutdown signal received", logger.String("signal", sig.String()))
	case <-ctx.Done():
		s.logger.Info("Context cancelled, shutting down")
	}

	//nolint:contextcheck // ctx may already be cancelled; shutdown needs its own deadline
	return s.Shutdown(context.Background())
}
