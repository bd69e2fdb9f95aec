package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"checkered/cartgate/pkg/config"
	"checkered/cartgate/pkg/telemetry/health"
)

// ShutdownHook runs after the HTTP server has stopped accepting requests.
type ShutdownHook func(ctx context.Context) error

// Server is the cartgate HTTP server.
type Server struct {
	config     *config.ServerConfig
	handler    http.Handler
	checker    *health.Checker
	logger     *slog.Logger
	hooks      []ShutdownHook
	httpServer *http.Server

	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
	addr         net.Addr
	ready        chan struct{}
	readyOnce    sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithHealth marks the checker as draining when shutdown begins so that
// readiness fails before connections close.
func WithHealth(checker *health.Checker) Option {
	return func(s *Server) {
		s.checker = checker
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// OnShutdown registers a hook. Hooks run in registration order.
func OnShutdown(hook ShutdownHook) Option {
	return func(s *Server) {
		if hook != nil {
			s.hooks = append(s.hooks, hook)
		}
	}
}

// New creates a server for handler.
func New(cfg *config.ServerConfig, handler http.Handler, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server config cannot be nil")
	}
	if handler == nil {
		return nil, errors.New("handler cannot be nil")
	}

	s := &Server{
		config:  cfg,
		handler: handler,
		logger:  slog.Default(),
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start listens on the configured address and serves until ctx is
// cancelled or the listener fails. Cancellation triggers a graceful
// shutdown bounded by the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	var tlsConfig *tls.Config
	if s.config.TLS.Enabled {
		var err error
		tlsConfig, err = configureTLS(&s.config.TLS)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to configure TLS: %w", err)
		}
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	s.httpServer = &http.Server{
		Handler:        s.handler,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
		TLSConfig:      tlsConfig,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.addr = ln.Addr()
	s.isRunning = true
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting cartgate server",
			"address", ln.Addr().String(),
			"tls_enabled", tlsConfig != nil,
		)

		var err error
		if tlsConfig != nil {
			// Certificates come from TLSConfig.
			err = s.httpServer.ServeTLS(ln, "", "")
		} else {
			err = s.httpServer.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.WithoutCancel(ctx))
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully shuts down the server and then runs the shutdown
// hooks. It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.isRunning
		s.mu.RUnlock()
		if !running {
			return
		}

		if s.checker != nil {
			s.checker.SetDraining(true)
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}

		for _, hook := range s.hooks {
			if err := hook(shutdownCtx); err != nil {
				s.logger.Error("shutdown hook failed", "error", err)
				errs = append(errs, err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		shutdownErr = errors.Join(errs...)
		s.logger.Info("cartgate server stopped")
	})

	return shutdownErr
}

// configureTLS loads the key pair and builds the server TLS settings.
func configureTLS(cfg *config.TLSConfig) (*tls.Config, error) {
	if cfg.CertFile == "" {
		return nil, fmt.Errorf("TLS cert file not specified")
	}
	if cfg.KeyFile == "" {
		return nil, fmt.Errorf("TLS key file not specified")
	}

	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load key pair: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if cfg.MinVersion == "1.3" {
		tlsConfig.MinVersion = tls.VersionTLS13
	}
	return tlsConfig, nil
}

// Ready is closed once the server is listening.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the served handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}
