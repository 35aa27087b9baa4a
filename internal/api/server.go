// Package api provides the HTTP surface of the bridge: the OAuth
// authorize and token endpoints the assistant platform links through,
// and the smart-home endpoints for discovery, state queries and
// commands.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/khawasu/cloud-bridge/internal/auth"
	"github.com/khawasu/cloud-bridge/internal/infrastructure/config"
	"github.com/khawasu/cloud-bridge/internal/infrastructure/logging"
	"github.com/khawasu/cloud-bridge/internal/translate"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	OAuth      config.OAuthConfig
	Logger     *logging.Logger
	Auth       *auth.Service
	Directory  *translate.Directory
	Translator *translate.Translator
	Version    string
}

// Server is the HTTP server of the bridge.
type Server struct {
	cfg        config.APIConfig
	oauth      config.OAuthConfig
	logger     *logging.Logger
	auth       *auth.Service
	directory  *translate.Directory
	translator *translate.Translator
	version    string
	server     *http.Server
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("auth service is required")
	}
	if deps.Directory == nil || deps.Translator == nil {
		return nil, fmt.Errorf("device directory and translator are required")
	}

	return &Server{
		cfg:        deps.Config,
		oauth:      deps.OAuth,
		logger:     deps.Logger,
		auth:       deps.Auth,
		directory:  deps.Directory,
		translator: deps.Translator,
		version:    deps.Version,
	}, nil
}

// Start begins listening for HTTP connections in a background
// goroutine. The server is stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server, waiting for in-flight
// requests to complete.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
