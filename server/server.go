// Package server implements the accept loop and per-connection session
// state machine described in spec.md §4.5: handshake, then a loop of
// request/response RPCs with per-operation timeouts, cancellation on
// timeout, graceful disconnect, and a strict error surface.
package server

import (
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"protorpc/registry"
	"protorpc/rpcservice"
)

// DefaultSessionTimeout is the per-operation deadline applied to every
// session I/O except the idle AwaitMethodIndex wait (spec §4.5).
const DefaultSessionTimeout = 5 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithTimeout overrides DefaultSessionTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// WithLogger overrides the default production zap.Logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMiddleware appends dispatch middleware, applied in the given order
// (the first middleware listed runs outermost, wrapping every other
// middleware and the handler itself).
func WithMiddleware(mw ...Middleware) Option {
	return func(s *Server) { s.middlewares = append(s.middlewares, mw...) }
}

// WithRegistry registers the hosted service under advertiseAddr with reg
// for the lifetime of the server, deregistering on Shutdown. This is
// ambient service-discovery wiring, not part of the wire protocol itself.
func WithRegistry(reg registry.Registry, advertiseAddr string, ttl int64) Option {
	return func(s *Server) {
		s.registry = reg
		s.advertiseAddr = advertiseAddr
		s.registryTTL = ttl
	}
}

// Server owns a TCP acceptor and the single service it hosts — the spec's
// handshake compares a connecting client's service descriptor against
// exactly one server-side descriptor, so a Server is scoped to one
// service rather than a name-keyed map of many.
type Server struct {
	svc         rpcservice.Service
	timeout     time.Duration
	logger      *zap.Logger
	middlewares []Middleware

	registry      registry.Registry
	advertiseAddr string
	registryTTL   int64

	listener net.Listener
}

// New builds a Server hosting svc.
func New(svc rpcservice.Service, opts ...Option) *Server {
	s := &Server{
		svc:     svc,
		timeout: DefaultSessionTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger, _ = zap.NewProduction()
	}
	return s
}

// ListenAndServe binds address (e.g. ":12345") and runs the accept loop
// until the listener is closed.
func (s *Server) ListenAndServe(address string) error {
	listener, err := net.Listen("tcp4", address)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	return s.Serve(listener)
}

// Serve runs the accept loop over an already-bound listener. On each
// accepted connection it starts a new session on its own goroutine and
// immediately re-accepts (spec §4.5 Acceptor); accept errors are logged
// and the loop continues, except after Shutdown has closed the listener.
func (s *Server) Serve(listener net.Listener) error {
	s.listener = listener
	s.logger.Info("server started", zap.String("addr", listener.Addr().String()))

	if s.registry != nil {
		if err := s.registry.Register(s.svc.Descriptor().Name, registry.ServiceInstance{Addr: s.advertiseAddr}, s.registryTTL); err != nil {
			s.logger.Warn("failed to register service", zap.Error(err))
		}
	}

	chain := Chain(s.middlewares...)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn("error accepting connection", zap.Error(err))
			continue
		}
		sess := newSession(conn, s.svc, s.timeout, chain, s.logger)
		go sess.run()
	}
}

// Shutdown deregisters the hosted service (if registered) and closes the
// listener, causing Serve to return nil.
func (s *Server) Shutdown() error {
	if s.registry != nil {
		if err := s.registry.Deregister(s.svc.Descriptor().Name, s.advertiseAddr); err != nil {
			s.logger.Warn("failed to deregister service", zap.Error(err))
		}
	}
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}
