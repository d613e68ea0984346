package rpcservice

import (
	"context"
	"fmt"
	"reflect"

	"protorpc/idl"
	"protorpc/rpcctl"
)

// StructService builds a Service from a plain Go struct by scanning its
// exported methods via reflection, the way the teacher's server/service.go
// scans (receiver, *Args, *Reply) methods for its JSON-RPC dispatch. Here
// the required signature is
//
//	func (recv *T) Method(ctrl *rpcctl.Controller, req *ReqType, resp *RespType, done rpcservice.Done)
//
// where *ReqType and *RespType implement idl.Message. Methods are exposed
// in the order reflect.Type.Method enumerates them, which is alphabetical
// by name — callers that care about a specific wire method index should
// name methods accordingly or build a ServiceDescriptor by hand instead.
type StructService struct {
	Base
	name       string
	rcvr       reflect.Value
	descriptor *ServiceDescriptor
	methods    map[string]reflect.Method
}

var (
	controllerPtrType = reflect.TypeOf((*rpcctl.Controller)(nil))
	messageType       = reflect.TypeOf((*idl.Message)(nil)).Elem()
	doneType          = reflect.TypeOf((Done)(nil))
)

// NewStructService scans rcvr (which must be a pointer to a struct) for
// methods matching the required RPC signature and builds a Service whose
// descriptor name is the struct's type name.
func NewStructService(rcvr any) (*StructService, error) {
	typ := reflect.TypeOf(rcvr)
	if typ == nil || typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("rpcservice: rcvr must be a pointer to a struct, got %T", rcvr)
	}

	svc := &StructService{
		name:    typ.Elem().Name(),
		rcvr:    reflect.ValueOf(rcvr),
		methods: make(map[string]reflect.Method),
	}

	var methods []MethodDescriptor
	for i := 0; i < typ.NumMethod(); i++ {
		m := typ.Method(i)
		reqType, respType, ok := matchSignature(m.Type)
		if !ok {
			continue
		}
		svc.methods[m.Name] = m
		methods = append(methods, MethodDescriptor{
			Index:       uint32(len(methods)),
			Name:        m.Name,
			NewRequest:  newMessageFactory(reqType),
			NewResponse: newMessageFactory(respType),
		})
	}

	svc.descriptor = &ServiceDescriptor{Name: svc.name, Methods: methods}
	return svc, nil
}

// matchSignature reports whether t is func(*rpcctl.Controller, *Req, *Resp, Done)
// with *Req and *Resp implementing idl.Message, returning their element
// types on success. t is a method type, so the receiver is argument 0.
func matchSignature(t reflect.Type) (reqType, respType reflect.Type, ok bool) {
	if t.NumIn() != 5 || t.NumOut() != 0 {
		return nil, nil, false
	}
	if t.In(1) != controllerPtrType {
		return nil, nil, false
	}
	req, resp := t.In(2), t.In(3)
	if req.Kind() != reflect.Ptr || resp.Kind() != reflect.Ptr {
		return nil, nil, false
	}
	if !req.Implements(messageType) || !resp.Implements(messageType) {
		return nil, nil, false
	}
	if t.In(4) != doneType {
		return nil, nil, false
	}
	return req.Elem(), resp.Elem(), true
}

func newMessageFactory(elem reflect.Type) func() idl.Message {
	return func() idl.Message {
		return reflect.New(elem).Interface().(idl.Message)
	}
}

func (s *StructService) Descriptor() *ServiceDescriptor { return s.descriptor }

func (s *StructService) Call(ctx context.Context, method *MethodDescriptor, ctrl *rpcctl.Controller, request, response idl.Message, done Done) {
	m, ok := s.methods[method.Name]
	if !ok {
		ctrl.SetFailed(fmt.Sprintf("rpcservice: unknown method %q", method.Name))
		done()
		return
	}
	m.Func.Call([]reflect.Value{
		s.rcvr,
		reflect.ValueOf(ctrl),
		reflect.ValueOf(request),
		reflect.ValueOf(response),
		reflect.ValueOf(Done(done)),
	})
}
