package server

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"go.uber.org/zap"

	"protorpc/framing"
	"protorpc/idl"
	"protorpc/rpcctl"
	"protorpc/rpcservice"
)

// session is one accepted connection's state machine: a handshake
// followed by a loop of request/response pairs (spec §3, §4.5). It is
// driven linearly on its own goroutine rather than as a chain of
// callbacks — the spec's own redesign note prefers this for readability,
// and it is the idiomatic Go reading of "a session confined to one
// reactor thread."
type session struct {
	conn       net.Conn
	reader     *framing.Reader
	writer     *framing.Writer
	svc        rpcservice.Service
	descriptor *idl.ServiceDescriptor
	timeout    time.Duration
	handler    HandlerFunc
	logger     *zap.Logger
}

func newSession(conn net.Conn, svc rpcservice.Service, timeout time.Duration, chain Middleware, logger *zap.Logger) *session {
	s := &session{
		conn:       conn,
		reader:     framing.NewReader(conn),
		writer:     framing.NewWriter(conn),
		svc:        svc,
		descriptor: svc.Descriptor().Proto(),
		timeout:    timeout,
		logger:     logger,
	}
	s.handler = chain(s.baseDispatch)
	return s
}

// run executes the full session lifetime: handshake, then RPCs until the
// client disconnects or an unrecoverable error occurs.
func (s *session) run() {
	defer s.conn.Close()
	s.logger.Info("session started", zap.String("peer", s.conn.RemoteAddr().String()))

	if !s.handshake() {
		return
	}
	for {
		if !s.serveOneCall() {
			return
		}
	}
}

func (s *session) deadline() time.Time { return time.Now().Add(s.timeout) }

// handshake implements AwaitDescriptor and WriteAuthAck. It returns false
// if the session should terminate (any read/write error, or a staged
// handshake failure, which per spec is written back and then the
// connection is closed — there is no recovering a mismatched handshake).
func (s *session) handshake() bool {
	var clientDescriptor idl.ServiceDescriptor
	if err := s.reader.ReadMessage(&clientDescriptor, s.deadline()); err != nil {
		s.logger.Warn("error reading service descriptor", zap.Error(err))
		return false
	}

	ctrl := rpcctl.New()
	if s.svc == nil {
		ctrl.SetFailed("Null service on server")
	} else if !clientDescriptor.IsInitialized() {
		ctrl.SetFailed("Uninitialized service descriptor on server")
	} else if !idl.Equal(&clientDescriptor, s.descriptor) {
		ctrl.SetFailed("Service descriptor mismatch on server")
	}

	info := rpcctl.FailureInfoFrom(ctrl)
	if err := s.writer.WriteMessage(info, s.deadline()); err != nil {
		s.logger.Warn("error writing authorization result", zap.Error(err))
		return false
	}
	return !ctrl.Failed()
}

// serveOneCall implements AwaitMethodIndex through WriteResult for a
// single RPC. It returns false if the session should terminate.
func (s *session) serveOneCall() bool {
	var index idl.MethodIndex
	// No deadline: an idle, handshaken client is a legitimate resting state.
	if err := s.reader.ReadMessage(&index, time.Time{}); err != nil {
		if errors.Is(err, io.EOF) {
			return false
		}
		s.logger.Warn("error reading method index", zap.Error(err))
		return false
	}

	outcome := rpcctl.New()
	var method *rpcservice.MethodDescriptor
	switch {
	case !index.IsInitialized():
		outcome.SetFailed("Uninitialized method index on server")
	default:
		var ok bool
		method, ok = s.svc.Descriptor().MethodByIndex(index.Value)
		if !ok {
			outcome.SetFailed("Method not found on server")
		}
	}

	if outcome.Failed() {
		if err := s.consumeRequest(); err != nil {
			s.logger.Warn("error consuming request", zap.Error(err))
			return false
		}
		return s.writeResult(outcome, nil)
	}

	request := s.svc.RequestPrototype(method)
	if err := s.reader.ReadMessage(request, s.deadline()); err != nil {
		s.logger.Warn("error reading request", zap.Error(err))
		return false
	}
	if !request.IsInitialized() {
		outcome.SetFailed("Uninitialized request on server")
		return s.writeResult(outcome, nil)
	}

	response := s.dispatch(method, outcome, request)
	return s.writeResult(outcome, response)
}

// consumeRequest implements ConsumeRequest: discard whatever request bytes
// the client sent for a method index that turned out to be invalid.
func (s *session) consumeRequest() error {
	var placeholder idl.Placeholder
	return s.reader.ReadMessage(&placeholder, s.deadline())
}

// dispatch implements the Dispatch phase: allocate a response, run the
// (possibly middleware-wrapped) handler, and stage any failure onto
// outcome. It returns the response to write, which may be uninitialized —
// writeResult substitutes a Placeholder when outcome is failed.
func (s *session) dispatch(method *rpcservice.MethodDescriptor, outcome *rpcctl.Controller, request idl.Message) idl.Message {
	response := s.svc.ResponsePrototype(method)
	dispatchCtrl := rpcctl.New()

	s.handler(context.Background(), method, dispatchCtrl, request, response)

	if dispatchCtrl.Failed() {
		outcome.SetFailed(dispatchCtrl.ErrorText())
	} else if !response.IsInitialized() {
		outcome.SetFailed("Uninitialized response on server")
	}
	return response
}

// writeResult implements WriteResult: write the staged FailureInfo
// followed by the response (or a Placeholder if outcome failed or no
// response was produced), then decide whether to keep serving this
// session.
func (s *session) writeResult(outcome *rpcctl.Controller, response idl.Message) bool {
	// Invariant (spec §3): if failed, the response payload is always a
	// Placeholder, even if a partially-built response instance exists.
	if response == nil || outcome.Failed() {
		response = &idl.Placeholder{}
	}
	info := rpcctl.FailureInfoFrom(outcome)
	if err := framing.WriteMessages(s.writer, s.deadline(), info, response); err != nil {
		s.logger.Warn("error writing RPC result", zap.Error(err))
		return false
	}
	return true
}

// baseDispatch is the innermost HandlerFunc: it invokes the hosted
// service's Call and blocks until done fires, whether the implementation
// is synchronous or asynchronous (spec §4.4). Any configured middleware
// wraps this.
func (s *session) baseDispatch(ctx context.Context, method *rpcservice.MethodDescriptor, ctrl *rpcctl.Controller, request, response idl.Message) {
	doneCh := make(chan struct{})
	s.svc.Call(ctx, method, ctrl, request, response, func() { close(doneCh) })
	<-doneCh
}
