package server

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"protorpc/idl"
	"protorpc/rpcctl"
	"protorpc/rpcservice"
)

// HandlerFunc dispatches one already-validated RPC call. It must leave
// exactly the same failure/response contract as rpcservice.Service.Call:
// ctrl staged on failure, response filled and initialized on success.
type HandlerFunc func(ctx context.Context, method *rpcservice.MethodDescriptor, ctrl *rpcctl.Controller, request, response idl.Message)

// Middleware wraps a HandlerFunc around the Dispatch phase only — it never
// sees handshake or framing traffic. Adapted from the teacher's
// middleware.Chain, narrowed to the one phase of the session state machine
// where wrapping makes sense.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middlewares so that Chain(a, b, c)(h) runs a, then b, then
// c, then h, unwinding in reverse — identical ordering to the teacher's
// middleware.Chain.
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

// LoggingMiddleware logs each dispatched call's method name, duration, and
// failure text (if any) through logger, replacing the teacher's
// log.Printf-based middleware/logging_middleware.go.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, method *rpcservice.MethodDescriptor, ctrl *rpcctl.Controller, request, response idl.Message) {
			start := time.Now()
			next(ctx, method, ctrl, request, response)
			fields := []zap.Field{
				zap.String("method", method.Name),
				zap.Duration("duration", time.Since(start)),
			}
			if ctrl.Failed() {
				fields = append(fields, zap.String("error", ctrl.ErrorText()))
				logger.Warn("rpc call failed", fields...)
				return
			}
			logger.Debug("rpc call completed", fields...)
		}
	}
}

// RateLimitMiddleware rejects a call with a staged ApplicationError once
// the token bucket is exhausted, instead of forwarding it to the handler.
// Adapted from the teacher's middleware/rate_limit_middleware.go.
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, method *rpcservice.MethodDescriptor, ctrl *rpcctl.Controller, request, response idl.Message) {
			if !limiter.Allow() {
				ctrl.SetFailed("rate limit exceeded")
				return
			}
			next(ctx, method, ctrl, request, response)
		}
	}
}
