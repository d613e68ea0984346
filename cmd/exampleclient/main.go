// Command exampleclient drives the valuestore example service through the
// same Get/Set/Get sequence as the original example_client.cpp, plus an
// Append call exercising the string buffer the distilled spec dropped.
package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"protorpc/client"
	"protorpc/examples/valuestore"
	"protorpc/rpcctl"
	"protorpc/rpcservice"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:12345", "server address")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	svc, err := rpcservice.NewStructService(valuestore.New())
	if err != nil {
		logger.Fatal("build service descriptor", zap.Error(err))
	}
	descriptor := svc.Descriptor()

	methodByName := func(name string) *rpcservice.MethodDescriptor {
		for i := range descriptor.Methods {
			if descriptor.Methods[i].Name == name {
				return &descriptor.Methods[i]
			}
		}
		logger.Fatal("no such method", zap.String("name", name))
		return nil
	}
	getMethod := methodByName("Get")
	setMethod := methodByName("Set")
	appendMethod := methodByName("Append")

	ch := client.New(descriptor, *addr, client.WithLogger(logger))
	defer ch.Close()

	{
		ctrl := rpcctl.New()
		request := &valuestore.Empty{}
		response := &valuestore.Double{}
		ch.Call(getMethod, ctrl, request, response, nil)
		if ctrl.Failed() {
			log.Printf("Get: NG (%s)", ctrl.ErrorText())
		} else {
			log.Printf("Get: OK (%v)", response.Value)
		}
	}

	{
		ctrl := rpcctl.New()
		request := &valuestore.Double{}
		request.SetValue(199.)
		response := &valuestore.Empty{}
		ch.Call(setMethod, ctrl, request, response, nil)
		if ctrl.Failed() {
			log.Printf("Set: NG (%s)", ctrl.ErrorText())
		} else {
			log.Printf("Set: OK")
		}
	}

	{
		ctrl := rpcctl.New()
		request := &valuestore.Empty{}
		response := &valuestore.Double{}
		ch.Call(getMethod, ctrl, request, response, nil)
		if ctrl.Failed() {
			log.Printf("Get: NG (%s)", ctrl.ErrorText())
		} else {
			log.Printf("Get: OK (%v)", response.Value)
		}
	}

	{
		ctrl := rpcctl.New()
		request := &valuestore.String{}
		request.SetData("hello, ")
		response := &valuestore.String{}
		ch.Call(appendMethod, ctrl, request, response, nil)
		if ctrl.Failed() {
			log.Printf("Append: NG (%s)", ctrl.ErrorText())
		} else {
			log.Printf("Append: OK (%q)", response.Data)
		}
	}
}
