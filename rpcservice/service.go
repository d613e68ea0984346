// Package rpcservice defines the contract user code must satisfy to host
// RPC methods, and the descriptor types that identify a service and its
// methods across the wire.
package rpcservice

import (
	"context"

	"protorpc/idl"
	"protorpc/rpcctl"
)

// Done is invoked exactly once when a Call completes, whether the
// implementation is synchronous or asynchronous. For a synchronous
// implementation, Done fires before Call returns.
type Done func()

// NoopDone is a Done that does nothing, used where the caller does not
// need a completion signal (e.g. client.Channel.Call invoked with a nil
// done).
func NoopDone() {}

// MethodDescriptor identifies one method within a ServiceDescriptor by its
// stable, zero-based position in declaration order, plus factories for
// empty request/response instances.
type MethodDescriptor struct {
	Index       uint32
	Name        string
	NewRequest  func() idl.Message
	NewResponse func() idl.Message
}

// ServiceDescriptor identifies a service by its fully-qualified name and
// its ordered method list. It is immutable once built.
type ServiceDescriptor struct {
	Name    string
	Methods []MethodDescriptor
}

// MethodByIndex resolves a method by its wire index, returning ok=false if
// the index is out of range (spec §4.5 AwaitMethodIndex "Method not found").
func (d *ServiceDescriptor) MethodByIndex(index uint32) (*MethodDescriptor, bool) {
	if index >= uint32(len(d.Methods)) {
		return nil, false
	}
	return &d.Methods[index], true
}

// Proto converts the descriptor to its wire projection, used only for the
// handshake's canonical-bytes equality test.
func (d *ServiceDescriptor) Proto() *idl.ServiceDescriptor {
	proto := &idl.ServiceDescriptor{}
	proto.SetName(d.Name)
	methods := make([]idl.MethodDescriptorProto, len(d.Methods))
	for i, m := range d.Methods {
		methods[i] = idl.MethodDescriptorProto{Name: m.Name}
	}
	proto.SetMethods(methods)
	return proto
}

// Service is the contract the runtime requires from user code: a
// descriptor, prototype factories keyed by method, and a dispatcher.
type Service interface {
	// Descriptor returns this service's immutable descriptor.
	Descriptor() *ServiceDescriptor

	// RequestPrototype returns an empty Message of the type method expects
	// as a request, for the server to parse a call's request bytes into.
	RequestPrototype(method *MethodDescriptor) idl.Message

	// ResponsePrototype returns an empty Message of the type method
	// produces as a response, for the server to fill and serialize.
	ResponsePrototype(method *MethodDescriptor) idl.Message

	// Call dispatches method. done is invoked exactly once when the call
	// completes; the runtime always drives further steps from done, even
	// though a synchronous implementation may invoke it before Call
	// returns.
	Call(ctx context.Context, method *MethodDescriptor, ctrl *rpcctl.Controller, request, response idl.Message, done Done)
}

// Base implements RequestPrototype/ResponsePrototype in terms of a
// MethodDescriptor's own factories, so a Service implementation only needs
// to embed Base and supply Descriptor/Call.
type Base struct{}

func (Base) RequestPrototype(method *MethodDescriptor) idl.Message  { return method.NewRequest() }
func (Base) ResponsePrototype(method *MethodDescriptor) idl.Message { return method.NewResponse() }
