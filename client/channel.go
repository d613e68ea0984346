// Package client implements the RPC client: a Channel owns one connection,
// performs the handshake once, and serializes RPCs over it with the
// per-operation timeout/cancellation discipline described in spec.md §4.6.
package client

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"protorpc/framing"
	"protorpc/idl"
	"protorpc/rpcctl"
	"protorpc/rpcservice"
)

// DefaultTimeout is the per-operation deadline applied to connect, every
// write, and every read (spec §4.6).
const DefaultTimeout = 5 * time.Second

// Option configures a Channel.
type Option func(*Channel)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Channel) { c.timeout = d }
}

// WithLogger overrides the default production zap.Logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Channel) { c.logger = logger }
}

// WithResolver overrides the default Static resolver built from address,
// letting the channel pick a fresh endpoint (e.g. via service discovery)
// on every reconnect.
func WithResolver(r Resolver) Option {
	return func(c *Channel) { c.resolver = r }
}

// Channel owns one TCP connection to a single service and serializes RPC
// calls over it. At most one call is in flight at a time: Call holds an
// internal mutex for its whole duration, so concurrent callers are
// serialized (spec §5 "at most one call in flight per channel").
type Channel struct {
	descriptor *rpcservice.ServiceDescriptor
	resolver   Resolver
	timeout    time.Duration
	logger     *zap.Logger

	mu         sync.Mutex
	conn       net.Conn
	reader     *framing.Reader
	writer     *framing.Writer
	handshaked bool
}

// New builds a Channel for calling methods of descriptor against address
// (a "host:port" string), unless overridden by WithResolver.
func New(descriptor *rpcservice.ServiceDescriptor, address string, opts ...Option) *Channel {
	c := &Channel{
		descriptor: descriptor,
		resolver:   Static(address),
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger, _ = zap.NewProduction()
	}
	return c
}

func (c *Channel) deadline() time.Time { return time.Now().Add(c.timeout) }

// Call implements spec §4.6's seven-step call sequence. ctrl and done may
// be nil, in which case the runtime fabricates a throwaway Controller and
// a no-op Done respectively. done is always invoked exactly once.
func (c *Channel) Call(method *rpcservice.MethodDescriptor, ctrl *rpcctl.Controller, request, response idl.Message, done rpcservice.Done) {
	if ctrl == nil {
		ctrl = rpcctl.New()
	}
	if done == nil {
		done = rpcservice.NoopDone
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if method == nil || request == nil || response == nil {
		ctrl.SetFailed("Null method, request, or response")
		done()
		return
	}
	if !request.IsInitialized() {
		ctrl.SetFailed("Uninitialized request")
		done()
		return
	}

	if c.conn == nil {
		if err := c.connectAndHandshake(); err != nil {
			ctrl.SetFailed(err.Error())
			done()
			return
		}
	}

	if err := c.writer.WriteMessage(methodIndexOf(method), c.deadline()); err != nil {
		c.closeLocked()
		ctrl.SetFailed(err.Error())
		done()
		return
	}
	if err := c.writer.WriteMessage(request, c.deadline()); err != nil {
		c.closeLocked()
		ctrl.SetFailed(err.Error())
		done()
		return
	}

	var info idl.FailureInfo
	if err := c.reader.ReadMessage(&info, c.deadline()); err != nil {
		c.closeLocked()
		ctrl.SetFailed(err.Error())
		done()
		return
	}
	if err := c.reader.ReadMessage(response, c.deadline()); err != nil {
		c.closeLocked()
		ctrl.SetFailed(err.Error())
		done()
		return
	}

	switch {
	case !info.IsInitialized():
		ctrl.SetFailed("Uninitialized failure info")
	case info.Failed:
		ctrl.SetFailed(info.ErrorText)
	case !response.IsInitialized():
		ctrl.SetFailed("Uninitialized response")
	}
	done()
}

// connectAndHandshake implements step 2 of spec §4.6: dial the resolved
// endpoint, send the service descriptor, and read back the match result.
func (c *Channel) connectAndHandshake() error {
	addr, err := c.resolver.Resolve()
	if err != nil {
		return fmt.Errorf("resolve endpoint: %w", err)
	}

	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return err
	}
	c.conn = conn
	c.reader = framing.NewReader(conn)
	c.writer = framing.NewWriter(conn)
	c.logger.Info("connected to server", zap.String("addr", addr))

	if err := c.writer.WriteMessage(c.descriptor.Proto(), c.deadline()); err != nil {
		c.closeLocked()
		return err
	}

	var info idl.FailureInfo
	if err := c.reader.ReadMessage(&info, c.deadline()); err != nil {
		c.closeLocked()
		return err
	}
	if !info.IsInitialized() {
		c.closeLocked()
		return errors.New("Uninitialized failure info")
	}
	if info.Failed {
		c.closeLocked()
		return errors.New(info.ErrorText)
	}

	c.handshaked = true
	return nil
}

// closeLocked closes the socket so the next Call reconnects and
// re-handshakes (spec §7: every NetworkError is fatal to the connection).
// Must be called with c.mu held.
func (c *Channel) closeLocked() {
	if c.conn != nil {
		c.conn.Close()
	}
	c.conn = nil
	c.reader = nil
	c.writer = nil
	c.handshaked = false
}

// Close closes the underlying connection, if any. The next Call will
// reconnect and re-handshake.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	return nil
}

func methodIndexOf(m *rpcservice.MethodDescriptor) *idl.MethodIndex {
	idx := &idl.MethodIndex{}
	idx.SetValue(m.Index)
	return idx
}
