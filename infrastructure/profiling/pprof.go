// Package profiling starts optional pprof and Pyroscope profilers.
package profiling

import (
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/Mod5ied/eagle-server/infrastructure/logger"
)

// Config controls both profilers.
type Config struct {
	Enabled   bool   `env:"ENABLE_PROFILING" yaml:"enabled"`
	PprofPort string `env:"PPROF_PORT"       yaml:"pprof_port"`

	ContinuousEnabled bool   `env:"ENABLE_CONTINUOUS_PROFILING" yaml:"continuous_enabled"`
	PyroscopeURL      string `env:"PYROSCOPE_SERVER_URL"        yaml:"pyroscope_url"`
}

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	if c.PprofPort == "" {
		c.PprofPort = "6060"
	}
	if c.PyroscopeURL == "" {
		c.PyroscopeURL = "http://pyroscope:4040"
	}
}

// StartPprofServer serves /debug/pprof on localhost when enabled. It returns
// the server so callers can shut it down, or nil when disabled.
func StartPprofServer(cfg Config, log logger.Logger) *http.Server {
	if !cfg.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	srv := &http.Server{
		Addr:              net.JoinHostPort("localhost", cfg.PprofPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("Starting pprof server", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("pprof server error", logger.Error(err))
		}
	}()

	return srv
}
