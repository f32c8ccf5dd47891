package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// ServerConfig holds configuration for the HTTP server
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns sensible defaults for server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "",
		Port:            8080,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second, // fire may wait on a match lock and a bot's reply
		ShutdownTimeout: 30 * time.Second,
	}
}

// Background is work that lives as long as the server: scheduled sweeps
// and the storage connection behind the handlers.
type Background interface {
	Start()
	Close() error
}

// Server runs the HTTP API together with its background work
type Server struct {
	server     *http.Server
	background Background
	logger     *slog.Logger
	config     ServerConfig
}

// NewServer creates a new API server. background may be nil.
func NewServer(handler http.Handler, background Background, config ServerConfig, logger *slog.Logger) *Server {
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
		},
		background: background,
		logger:     logger,
		config:     config,
	}
}

// Run serves until ctx is cancelled or the listener fails, then drains
// in-flight requests and closes the background work. Background work only
// starts once the address is bound, but is closed on every return.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		err = fmt.Errorf("listen on %s: %w", s.server.Addr, err)
		if s.background != nil {
			err = errors.Join(err, s.background.Close())
		}
		return err
	}

	if s.background != nil {
		s.background.Start()
	}
	s.logger.Info("starting HTTP server", slog.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(ln)
	}()

	var errs []error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, fmt.Errorf("server error: %w", err))
		}
	case <-ctx.Done():
		errs = append(errs, s.shutdown())
	}

	if s.background != nil {
		if err := s.background.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close background: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (s *Server) shutdown() error {
	s.logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.server.Addr
}
