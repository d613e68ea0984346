// Command exampleserver hosts the valuestore example service, mirroring
// the original example_server.cpp: one process, one service, one
// listening port.
package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"protorpc/examples/valuestore"
	"protorpc/rpcservice"
	"protorpc/server"
)

func main() {
	addr := flag.String("addr", ":12345", "address to listen on")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	svc, err := rpcservice.NewStructService(valuestore.New())
	if err != nil {
		logger.Fatal("build service", zap.Error(err))
	}

	srv := server.New(svc,
		server.WithLogger(logger),
		server.WithMiddleware(
			server.LoggingMiddleware(logger),
			server.RateLimitMiddleware(100, 20),
		),
	)

	logger.Info("listening", zap.String("addr", *addr))
	if err := srv.ListenAndServe(*addr); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}
