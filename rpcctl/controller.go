// Package rpcctl implements the per-call status object shared by client
// and server RPC paths.
package rpcctl

import "protorpc/idl"

// Controller carries failure state for one RPC. It is deliberately a
// plain value type, not tied to the wire FailureInfo message — see
// FailureInfoFrom for the conversion. Cancellation hooks exist to satisfy
// the contract but are always no-ops: this runtime has no user-initiated
// cancellation (spec Non-goals).
type Controller struct {
	failed    bool
	errorText string
}

// New returns a freshly reset Controller.
func New() *Controller {
	return &Controller{}
}

// Reset clears both failed and error text to their defaults.
func (c *Controller) Reset() {
	c.failed = false
	c.errorText = ""
}

// Failed reports whether the call has been marked as failed.
func (c *Controller) Failed() bool { return c.failed }

// ErrorText returns the accumulated failure reason, empty if not failed.
func (c *Controller) ErrorText() string { return c.errorText }

// SetFailed marks the call failed. A second call appends to the existing
// reason with "; " rather than overwriting it, so staged failures from
// different layers (e.g. a handler failure noticed after an earlier
// validation failure) are not silently dropped.
func (c *Controller) SetFailed(reason string) {
	c.failed = true
	if c.errorText == "" {
		c.errorText = reason
	} else {
		c.errorText = c.errorText + "; " + reason
	}
}

// StartCancel is part of the classic RpcController contract. Unsupported
// here: it is a no-op.
func (c *Controller) StartCancel() {}

// IsCanceled always returns false: there is no user-initiated cancellation.
func (c *Controller) IsCanceled() bool { return false }

// NotifyOnCancel is part of the classic RpcController contract. Unsupported
// here: the callback is never invoked.
func (c *Controller) NotifyOnCancel(cb func()) {}

// FailureInfoFrom projects a Controller onto its wire representation.
func FailureInfoFrom(c *Controller) *idl.FailureInfo {
	info := &idl.FailureInfo{}
	info.SetFailed(c.Failed())
	if c.Failed() {
		info.SetErrorText(c.ErrorText())
	}
	return info
}
