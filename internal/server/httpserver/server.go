package httpserver

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"
)

// Server wraps http.Server with context-driven shutdown.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration

	mu       sync.Mutex
	listener net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithTLS serves HTTPS with cfg.
func WithTLS(cfg *tls.Config) Option {
	return func(s *Server) { s.httpServer.TLSConfig = cfg }
}

// WithShutdownTimeout bounds graceful shutdown in Serve.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// New creates a server for handler on addr.
func New(addr string, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listen binds the address. Serve calls it when needed; calling it first
// lets callers learn the bound address of ":0".
func (s *Server) Listen() (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr(), nil
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, err
	}
	if s.httpServer.TLSConfig != nil {
		ln = tls.NewListener(ln, s.httpServer.TLSConfig)
	}
	s.listener = ln
	return ln.Addr(), nil
}

// Serve runs until ctx is done, then shuts down gracefully. A clean
// shutdown returns nil.
func (s *Server) Serve(ctx context.Context) error {
	if _, err := s.Listen(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(s.listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
